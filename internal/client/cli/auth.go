package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// Register creates an account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	s, err := a.authService.Register(ctx, email, password)
	return a.signedIn(s, err)
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	s, err := a.authService.Login(ctx, email, password)
	return a.signedIn(s, err)
}

// signedIn keeps s even when only saving it locally failed.
func (a *App) signedIn(s *models.Session, err error) error {
	if s == nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return errors.New("invalid credentials")
		}
		return err
	}
	a.session = s
	a.printf("Signed in as %s\n", s.User.Email)
	return err
}

func (a *App) Logout(ctx context.Context) error {
	token := a.token()
	a.session = nil
	if err := a.authService.Logout(ctx, token); err != nil {
		return fmt.Errorf("logged out locally: %w", err)
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) Whoami(context.Context) error {
	a.printf("%s (id %s)\n", a.session.User.Email, a.session.User.ID)
	return nil
}
