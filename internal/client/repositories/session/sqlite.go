package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*Saved, error) {
	s := &Saved{}
	err := r.db.QueryRowContext(ctx, `
		SELECT server_url, email, user_id, access_token, saved_at
		FROM session WHERE id = 1
	`).Scan(&s.ServerURL, &s.Email, &s.UserID, &s.AccessToken, &s.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *Saved) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, server_url, email, user_id, access_token, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			server_url = excluded.server_url,
			email = excluded.email,
			user_id = excluded.user_id,
			access_token = excluded.access_token,
			saved_at = excluded.saved_at
	`, s.ServerURL, s.Email, s.UserID, s.AccessToken, s.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
