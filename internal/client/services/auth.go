// Package services contains application services for the PaperSwipe CLI.
// This file defines the authentication service: register, login, logout,
// session resume and the liveness probe.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/paperswipe/internal/client/client"
	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/client/storage"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

// SessionListener is told about authentication transitions. The kept-item
// engine implements it.
type SessionListener interface {
	OnLogin(ctx context.Context)
	OnLogout()
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Resume: restore a persisted session at start-up.
//   - Register: create a new user on the server.
//   - Login: authenticate, persist the session and notify the listener.
//   - Logout: forget the session locally. Kept items stay.
//   - Ping: check server liveness.
type AuthService interface {
	Resume(ctx context.Context) (bool, error)
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	Session() models.Session
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	store    storage.Store
	listener SessionListener
	logger   logging.Logger

	mu      sync.Mutex
	session models.Session
}

// NewAuthService constructs an AuthService bound to the given API client and
// snapshot store. Refreshed tokens are written back to the store.
func NewAuthService(c client.Client, store storage.Store, listener SessionListener, logger logging.Logger) AuthService {
	a := &authService{
		client:   c,
		store:    store,
		listener: listener,
		logger:   logger.With("module", "auth"),
	}
	c.OnTokensRefreshed(a.tokensRefreshed)
	return a
}

// Resume loads the persisted session. It returns false when there is none.
func (a *authService) Resume(ctx context.Context) (bool, error) {
	data, err := a.store.Get(ctx, storage.KeySession)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return false, nil
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return false, fmt.Errorf("decode session: %w", err)
	}
	if !s.Authenticated() {
		return false, nil
	}

	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	a.client.SetTokens(client.Tokens{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken})
	a.listener.OnLogin(ctx)

	a.logger.Info(ctx, "session resumed", "user", s.UserName)
	return true, nil
}

func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if err := a.client.Register(ctx, username, string(password)); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := validateCredentials(username, password); err != nil {
		return err
	}

	tokens, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	s := models.Session{UserName: username, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}
	if err := a.saveSession(ctx, s); err != nil {
		a.client.SetTokens(client.Tokens{})
		return fmt.Errorf("session saving error: %w", err)
	}

	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	a.listener.OnLogin(ctx)
	a.logger.Info(ctx, "logged in", "user", username)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens(client.Tokens{})

	a.mu.Lock()
	a.session = models.Session{}
	a.mu.Unlock()

	a.listener.OnLogout()

	if err := a.store.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (a *authService) Session() models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

func (a *authService) tokensRefreshed(t client.Tokens) {
	ctx := context.Background()

	a.mu.Lock()
	if !a.session.Authenticated() {
		a.mu.Unlock()
		return
	}
	a.session.AccessToken, a.session.RefreshToken = t.AccessToken, t.RefreshToken
	s := a.session
	a.mu.Unlock()

	if err := a.saveSession(ctx, s); err != nil {
		a.logger.Warn(ctx, "refreshed session not saved", "error", err)
	}
}

func (a *authService) saveSession(ctx context.Context, s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, storage.KeySession, data)
}

func validateCredentials(username string, password []byte) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: empty username", common.ErrInvalidArgument)
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: empty password", common.ErrInvalidArgument)
	}
	return nil
}
