package auth

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

func newStore(t *testing.T) db.Store {
	t.Helper()
	s, err := db.OpenStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStore(t)
	require.NoError(t, Register(store, "Ilton", "s3cret"))

	at := time.UnixMilli(42000)
	s, err := Login(store, "ilton", "s3cret", at)
	require.NoError(t, err)
	assert.Equal(t, "Ilton", s.Username)
	assert.Equal(t, int64(42000), s.LoginTime)

	current, err := CurrentSession(store)
	require.NoError(t, err)
	assert.Equal(t, s, current)
}

func TestPasswordsAreHashed(t *testing.T) {
	store := newStore(t)
	require.NoError(t, Register(store, "pedro", "abc"))

	raw, err := store.Get([]byte(db.UsersKey))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"abc"`)
}

func TestRegisterRejectsDuplicatesAndEmpty(t *testing.T) {
	store := newStore(t)
	require.NoError(t, Register(store, "Maria", "x"))

	assert.ErrorIs(t, Register(store, "MARIA", "y"), ErrUserExists)
	assert.ErrorIs(t, Register(store, "  ", "y"), ErrEmptyCredentials)
	assert.ErrorIs(t, Register(store, "joao", ""), ErrEmptyCredentials)
}

func TestLoginFailures(t *testing.T) {
	store := newStore(t)
	require.NoError(t, Register(store, "maria", "right"))

	_, err := Login(store, "maria", "wrong", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Login(store, "ghost", "right", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := CurrentSession(store)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestLegacyPlaintextPassword(t *testing.T) {
	store := newStore(t)
	data, err := json.Marshal([]models.User{{Username: "old", Password: "plain"}})
	require.NoError(t, err)
	require.NoError(t, store.Set([]byte(db.UsersKey), data))

	_, err = Login(store, "OLD", "plain", time.Now())
	assert.NoError(t, err)

	_, err = Login(store, "old", "Plain", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	store := newStore(t)
	require.NoError(t, Register(store, "maria", "pw"))
	_, err := Login(store, "maria", "pw", time.Now())
	require.NoError(t, err)

	require.NoError(t, Logout(store))
	s, err := CurrentSession(store)
	require.NoError(t, err)
	assert.Nil(t, s)
}
