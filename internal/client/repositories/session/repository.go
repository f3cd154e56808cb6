// Package session persists the signed-in user of the CLI between runs.
package session

import (
	"context"
	"time"
)

// Saved is the remembered login. There is at most one.
type Saved struct {
	ServerURL   string
	Email       string
	UserID      string
	AccessToken string
	SavedAt     time.Time
}

type Repository interface {
	// Load returns nil, nil when nothing is saved.
	Load(ctx context.Context) (*Saved, error)
	Save(ctx context.Context, s *Saved) error
	Clear(ctx context.Context) error
}
