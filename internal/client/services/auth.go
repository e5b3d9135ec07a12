// Package services contains application services for the DraftKeeper
// client. This file defines the authentication service: register, login,
// liveness probe and the record of who is logged in.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/draftkeeper/internal/client/client"
	"github.com/dmitrijs2005/draftkeeper/internal/shared"
)

var ErrEmptyCredentials = errors.New("login and password are required")

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	Register(ctx context.Context, login string, password []byte) error
	Login(ctx context.Context, login string, password []byte) error
	Ping(ctx context.Context) error
	// CurrentLogin returns the login of the authenticated user, or "".
	CurrentLogin() string
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client

	mu    sync.Mutex
	login string
}

func NewAuthService(c client.Client) AuthService {
	return &authService{client: c}
}

func (a *authService) Register(ctx context.Context, login string, password []byte) error {
	defer shared.WipeByteArray(password)
	login = strings.TrimSpace(login)
	if login == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}
	if err := a.client.Register(ctx, login, string(password)); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login authenticates against the server. The transport keeps the
// credentials so it can log in again when the token expires.
func (a *authService) Login(ctx context.Context, login string, password []byte) error {
	defer shared.WipeByteArray(password)
	login = strings.TrimSpace(login)
	if login == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}
	if err := a.client.Login(ctx, login, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	a.mu.Lock()
	a.login = login
	a.mu.Unlock()
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) CurrentLogin() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.login
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
