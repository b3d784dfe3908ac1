// ABOUTME: Tests for the charm-backed store
// ABOUTME: Runs report persistence and sync commands on an offline Badger client

package charm

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

var _ db.Store = (*Client)(nil)

func TestClientMissingKey(t *testing.T) {
	c := NewTestClient(t)

	v, err := c.Get([]byte("nope"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestClientSetGetDelete(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	v, err := c.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, c.Delete([]byte("k")))
	v, err = c.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReportsOnCharmStore(t *testing.T) {
	c := NewTestClient(t)

	r := models.NewReport(time.Now())
	r.OMNumber = "800100"
	require.NoError(t, db.SaveReport(c, r))

	got, err := db.GetReport(c, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "800100", got.OMNumber)
}

func TestSyncCommands(t *testing.T) {
	orig := ConfigPath
	path := filepath.Join(t.TempDir(), ConfigFileName)
	ConfigPath = func() (string, error) { return path, nil }
	t.Cleanup(func() { ConfigPath = orig })

	c := NewTestClient(t)
	require.NoError(t, c.Set([]byte(db.ThemeKey), []byte("dark")))

	var out bytes.Buffer
	require.NoError(t, SyncStatusCommand(c, &out, nil))
	assert.Contains(t, out.String(), "Not connected")
	assert.Contains(t, out.String(), "Keys:      1")

	out.Reset()
	require.NoError(t, SyncNowCommand(c, &out, nil))
	assert.Contains(t, out.String(), "✓ Synced")

	out.Reset()
	require.NoError(t, SyncAutoCommand(c, &out, []string{"--enable"}))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.AutoSync)

	assert.Error(t, SyncAutoCommand(c, &out, nil))

	out.Reset()
	require.NoError(t, SyncWipeCommand(c, &out, nil))
	assert.Contains(t, out.String(), "--confirm")
	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, SyncWipeCommand(c, &out, []string{"--confirm"}))
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
