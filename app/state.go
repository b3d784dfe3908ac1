// ABOUTME: Shared application state handed to the TUI, web server and MCP handlers
// ABOUTME: Owns the store plus the cached theme and login session
package app

import (
	"sync"
	"time"

	"github.com/harperreed/reportmaster/auth"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

type State struct {
	store db.Store

	mu      sync.RWMutex
	theme   string
	session *models.Session
	now     func() time.Time
}

// New loads the theme and session from store.
func New(store db.Store) (*State, error) {
	theme, err := db.GetTheme(store)
	if err != nil {
		return nil, err
	}
	session, err := auth.CurrentSession(store)
	if err != nil {
		return nil, err
	}
	return &State{store: store, theme: theme, session: session, now: time.Now}, nil
}

func (s *State) Store() db.Store {
	return s.store
}

// Now is the clock used for timestamps and report dates.
func (s *State) Now() time.Time {
	return s.now()
}

// SetClock replaces the clock, for tests.
func (s *State) SetClock(now func() time.Time) {
	s.now = now
}

func (s *State) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *State) Dark() bool {
	return s.Theme() == models.ThemeDark
}

func (s *State) SetTheme(theme string) error {
	if err := db.SetTheme(s.store, theme); err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *State) ToggleTheme() (string, error) {
	next := models.ThemeDark
	if s.Dark() {
		next = models.ThemeLight
	}
	return next, s.SetTheme(next)
}

// Session returns the logged-in user, or nil.
func (s *State) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *State) Login(username, password string) (*models.Session, error) {
	session, err := auth.Login(s.store, username, password, s.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return session, nil
}

func (s *State) Logout() error {
	if err := auth.Logout(s.store); err != nil {
		return err
	}
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	return nil
}
