// ABOUTME: Charm KV backed report store with optional cloud sync
// ABOUTME: Implements db.Store so every report operation runs unchanged on it

package charm

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
)

// backend is the subset of *kv.KV the client relies on.
type backend interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client stores report data in Charm KV.
type Client struct {
	kv     backend
	config *Config
	mu     sync.RWMutex
	// offline clients never talk to a charm server
	offline bool
}

// Open connects to Charm KV using the saved config.
func Open() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewClient(cfg)
}

// NewClient opens the KV database for cfg, pulling remote changes first when
// auto-sync is on.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, config: cfg}
	if cfg.AutoSync {
		if err := db.Sync(); err != nil {
			log.Warn("initial charm sync failed", "err", err)
		}
	}
	return c, nil
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm account id linked to this device.
func (c *Client) ID() (string, error) {
	if c.offline {
		return "", errors.New("offline client has no charm account")
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

// Get returns nil, nil for a missing key.
func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return v, err
}

func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Set(key, value); err != nil {
		return err
	}
	c.autoSync()
	return nil
}

func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Delete(key); err != nil {
		return err
	}
	c.autoSync()
	return nil
}

func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Keys()
}

// Reset wipes every key from the local database.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// Close is a no-op; charm/kv releases Badger on process exit.
func (c *Client) Close() error {
	return nil
}

// autoSync pushes after a write. Caller holds the write lock.
func (c *Client) autoSync() {
	if !c.config.AutoSync || c.offline {
		return
	}
	if err := c.kv.Sync(); err != nil {
		log.Warn("charm sync failed", "err", err)
	}
}
