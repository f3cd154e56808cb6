package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/filevault/internal/client/models"
)

// Client is the filevault API as seen by the CLI.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*models.User, error)

	ListFiles(ctx context.Context, token string) (*models.FileList, error)
	Upload(ctx context.Context, token, name, mimeType string, body io.Reader) (*models.File, error)
	GetUploadURL(ctx context.Context, token, name, mimeType string) (*models.UploadTicket, error)
	RecordMetadata(ctx context.Context, token, name, mimeType, key string, size int64) (*models.File, error)
	GetDownloadURL(ctx context.Context, token, fileID string) (string, error)
	Download(ctx context.Context, token, fileID string, w io.Writer) (int64, error)
	Delete(ctx context.Context, token, fileID string) error
}
