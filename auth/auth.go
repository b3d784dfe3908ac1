// ABOUTME: Local user accounts and the single login session
// ABOUTME: Passwords are bcrypt hashed; older plaintext entries still verify
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyCredentials   = errors.New("username and password are required")
)

func loadUsers(store db.Store) ([]models.User, error) {
	data, err := store.Get([]byte(db.UsersKey))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		log.Warn("stored users are unreadable, ignoring", "err", err)
		return nil, nil
	}
	return users, nil
}

func saveUsers(store db.Store, users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	return store.Set([]byte(db.UsersKey), data)
}

// Register adds a user. Usernames are unique ignoring case.
func Register(store db.Store, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	users, err := loadUsers(store)
	if err != nil {
		return err
	}
	if findUser(users, username) != nil {
		return fmt.Errorf("%s: %w", username, ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	users = append(users, models.User{Username: username, Password: string(hash)})
	return saveUsers(store, users)
}

// Login checks the credentials and records the session.
func Login(store db.Store, username, password string, now time.Time) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	users, err := loadUsers(store)
	if err != nil {
		return nil, err
	}
	u := findUser(users, username)
	if u == nil || !checkPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{Username: u.Username, LoginTime: now.UnixMilli()}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := store.Set([]byte(db.SessionKey), data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

func Logout(store db.Store) error {
	return store.Delete([]byte(db.SessionKey))
}

// CurrentSession returns the stored session, or nil when logged out.
func CurrentSession(store db.Store) (*models.Session, error) {
	data, err := store.Get([]byte(db.SessionKey))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn("stored session is unreadable, treating as logged out", "err", err)
		return nil, nil
	}
	return &s, nil
}

func findUser(users []models.User, username string) *models.User {
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i]
		}
	}
	return nil
}

func checkPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}
