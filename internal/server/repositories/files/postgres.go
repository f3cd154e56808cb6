package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/models"
)

// PostgresRepository implements the catalog over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, user_id, original_name, storage_key, mime_type, size, created_at, updated_at`

// Create inserts file and fills ID and timestamps. A reused storage key
// yields common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (user_id, original_name, storage_key, mime_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.UserID, file.OriginalName, file.StorageKey, file.MimeType, file.Size).
		Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// ListByOwner returns all files of userID, newest first. The result is
// never nil.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		item, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByIDAndOwner returns one file, or common.ErrorNotFound when it does not
// exist or belongs to another user.
func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE id = $1 AND user_id = $2
	`
	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) LockByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`
	return r.getOne(ctx, query, id, userID)
}

// Delete removes one row. Zero affected rows means common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM files WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.File, error) {
	item, err := scanFile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{}
	err := s.Scan(&f.ID, &f.UserID, &f.OriginalName, &f.StorageKey, &f.MimeType, &f.Size, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}
