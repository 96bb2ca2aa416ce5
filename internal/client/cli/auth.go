package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/paperswipe/internal/client/feed"
	"github.com/dmitrijs2005/paperswipe/internal/common"
)

var (
	ErrNotLoggedIn      = errors.New("not logged in (use 'login')")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Register prompts for a user name and a password, entered twice, and
// creates an account.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	repeated, err := getPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeated)

	if !bytes.Equal(password, repeated) {
		return ErrPasswordMismatch
	}

	if err := a.auth.Register(ctx, userName, password); err != nil {
		return err
	}

	a.println("Success! You can now 'login'.")
	return nil
}

// Login prompts for credentials. On success the kept collection is replaced
// by the server copy in the background.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, userName, password); err != nil {
		return err
	}

	a.println("Logged in as", userName)
	return nil
}

// Logout forgets the session. Kept papers stay on this device.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out. Saved papers stay on this device.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	connectivity := a.currentMode()
	if connectivity == "" {
		connectivity = "unknown"
	}
	a.printf("Server:   %s\n", connectivity)

	if s := a.auth.Session(); s.Authenticated() {
		a.printf("Account:  %s\n", s.UserName)
	} else {
		a.printf("Account:  not logged in (saved papers are kept locally only)\n")
	}

	mode, keyword := a.feed.Mode()
	desc := mode.String()
	if keyword != "" {
		desc += fmt.Sprintf(" %q", keyword)
	}
	if since := a.feed.DateFilter(); since != nil {
		desc += " since " + since.Format("2006-01-02")
	}
	state, ferr := a.feed.State()
	a.printf("Feed:     %s, %d queued, %s\n", desc, a.feed.Remaining(), state)
	if state == feed.StateError && ferr != nil {
		a.printf("          last error: %v\n", ferr)
	}

	a.printf("Seen:     %d\n", a.prefs.SeenCount())
	a.printf("Saved:    %d\n", len(a.kept.Items()))
	if msg := a.kept.SyncError(); msg != "" {
		a.printf("Sync:     %s\n", msg)
	}
	return nil
}
