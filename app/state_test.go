package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/auth"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

func TestThemeToggle(t *testing.T) {
	store, err := db.OpenStore(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	s, err := New(store)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, s.Theme())

	theme, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)

	reopened, err := New(store)
	require.NoError(t, err)
	assert.True(t, reopened.Dark())
}

func TestSessionLifecycle(t *testing.T) {
	store, err := db.OpenStore(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, auth.Register(store, "maria", "pw"))

	s, err := New(store)
	require.NoError(t, err)
	assert.Nil(t, s.Session())

	_, err = s.Login("maria", "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Nil(t, s.Session())

	_, err = s.Login("Maria", "pw")
	require.NoError(t, err)
	require.NotNil(t, s.Session())

	reopened, err := New(store)
	require.NoError(t, err)
	assert.Equal(t, "maria", reopened.Session().Username)

	require.NoError(t, s.Logout())
	assert.Nil(t, s.Session())
}
