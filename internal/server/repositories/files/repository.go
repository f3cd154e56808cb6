// Package files is the per-owner file catalog. Every read and delete is
// filtered by user_id, so a record owned by someone else is reported as
// common.ErrorNotFound.
package files

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.File, error)
	GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error)
	// LockByIDAndOwner is GetByIDAndOwner with a row lock; use inside a transaction.
	LockByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error)
	Delete(ctx context.Context, id, userID string) error
}
