// ABOUTME: Local account CLI commands
// ABOUTME: register, login, logout and whoami against the stored user list
package cli

import (
	"flag"
	"fmt"
	"time"

	"github.com/harperreed/reportmaster/auth"
	"github.com/harperreed/reportmaster/db"
)

func credentials(name string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "Password (prompted when omitted)")
	_ = fs.Parse(args)

	if *username == "" {
		return "", "", fmt.Errorf("--username is required")
	}
	if *password != "" {
		return *username, *password, nil
	}
	pw, err := readPassword("Password: ")
	if err != nil {
		return "", "", err
	}
	return *username, pw, nil
}

func UserRegisterCommand(store db.Store, args []string) error {
	username, password, err := credentials("user register", args)
	if err != nil {
		return err
	}
	if err := auth.Register(store, username, password); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ User registered: %s\n", username)
	return nil
}

func UserLoginCommand(store db.Store, args []string) error {
	username, password, err := credentials("user login", args)
	if err != nil {
		return err
	}
	s, err := auth.Login(store, username, password, now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Logged in as %s\n", s.Username)
	return nil
}

func UserLogoutCommand(store db.Store, args []string) error {
	if err := auth.Logout(store); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "✓ Logged out")
	return nil
}

func UserWhoamiCommand(store db.Store, args []string) error {
	s, err := auth.CurrentSession(store)
	if err != nil {
		return err
	}
	if s == nil {
		_, _ = fmt.Fprintln(out, "Not logged in")
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s (since %s)\n", s.Username, time.UnixMilli(s.LoginTime).Format("2006-01-02 15:04"))
	return nil
}
