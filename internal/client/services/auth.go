// Package services contains the application services of the filevault CLI.
// This file covers sign-up, sign-in, sign-out and the remembered session.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/client/repositories/session"
	"github.com/dmitrijs2005/filevault/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Register and Login remember the session locally; Logout revokes the token
// on the server and forgets it. Restore brings back a remembered session if
// the server still accepts its token.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	Restore(ctx context.Context) (*models.Session, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client    client.Client
	sessions  session.Repository
	serverURL string
	now       func() time.Time
}

// NewAuthService binds the API client and local session store. serverURL
// scopes remembered sessions so switching servers does not reuse a token.
func NewAuthService(c client.Client, sessions session.Repository, serverURL string) AuthService {
	return &authService{client: c, sessions: sessions, serverURL: serverURL, now: time.Now}
}

func (a *authService) Register(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := a.client.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s, a.remember(ctx, s)
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s, a.remember(ctx, s)
}

// Logout always forgets the local session. A token the server already
// rejects counts as logged out.
func (a *authService) Logout(ctx context.Context, token string) error {
	err := a.client.Logout(ctx, token)
	if cerr := a.sessions.Clear(ctx); cerr != nil {
		return cerr
	}
	if err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}
	return nil
}

// Restore returns nil, nil when there is nothing usable to restore.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	saved, err := a.sessions.Load(ctx)
	if err != nil || saved == nil {
		return nil, err
	}
	if saved.ServerURL != a.serverURL {
		return nil, nil
	}

	user, err := a.client.Me(ctx, saved.AccessToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, a.sessions.Clear(ctx)
		}
		return nil, err
	}
	return &models.Session{AccessToken: saved.AccessToken, User: *user}, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) remember(ctx context.Context, s *models.Session) error {
	err := a.sessions.Save(ctx, &session.Saved{
		ServerURL:   a.serverURL,
		Email:       s.User.Email,
		UserID:      s.User.ID,
		AccessToken: s.AccessToken,
		SavedAt:     a.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("signed in, but the session was not saved: %w", err)
	}
	return nil
}
