package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/filex"
	"github.com/dmitrijs2005/filevault/internal/netx"
)

// MaxUploadSize mirrors the server limit so oversized files fail before
// any network traffic.
const MaxUploadSize int64 = 5 << 20

// FileService defines file operations for the CLI. Every call takes the
// access token explicitly.
type FileService interface {
	List(ctx context.Context, token string) (*models.FileList, error)
	Upload(ctx context.Context, token, path string) (*models.File, error)
	UploadPresigned(ctx context.Context, token, path string) (*models.File, error)
	DownloadURL(ctx context.Context, token, fileID string) (string, error)
	Download(ctx context.Context, token, fileID, dir string, viaServer bool) (string, int64, error)
	Delete(ctx context.Context, token, fileID string) error
}

type fileService struct {
	client client.Client
	http   *http.Client
}

// NewFileService uses hc for presigned object-store requests; nil means
// http.DefaultClient.
func NewFileService(c client.Client, hc *http.Client) FileService {
	return &fileService{client: c, http: hc}
}

func (s *fileService) List(ctx context.Context, token string) (*models.FileList, error) {
	return s.client.ListFiles(ctx, token)
}

// Upload sends the file through the server.
func (s *fileService) Upload(ctx context.Context, token, path string) (*models.File, error) {
	lf, err := filex.ReadForUpload(path, MaxUploadSize)
	if err != nil {
		return nil, err
	}
	return s.client.Upload(ctx, token, lf.Name, lf.MimeType, bytes.NewReader(lf.Data))
}

// UploadPresigned PUTs the file straight to object storage and then asks
// the server to catalog it.
func (s *fileService) UploadPresigned(ctx context.Context, token, path string) (*models.File, error) {
	lf, err := filex.ReadForUpload(path, MaxUploadSize)
	if err != nil {
		return nil, err
	}

	ticket, err := s.client.GetUploadURL(ctx, token, lf.Name, lf.MimeType)
	if err != nil {
		return nil, err
	}
	if err := netx.PutToPresignedURL(ctx, s.http, ticket.UploadURL, lf.MimeType, bytes.NewReader(lf.Data), lf.Size()); err != nil {
		return nil, err
	}
	return s.client.RecordMetadata(ctx, token, lf.Name, lf.MimeType, ticket.S3Key, lf.Size())
}

func (s *fileService) DownloadURL(ctx context.Context, token, fileID string) (string, error) {
	return s.client.GetDownloadURL(ctx, token, fileID)
}

// Download saves the file into dir under its original name and returns the
// path written. viaServer streams through the API instead of the presigned
// url. A partial file is removed on failure.
func (s *fileService) Download(ctx context.Context, token, fileID, dir string, viaServer bool) (string, int64, error) {
	list, err := s.client.ListFiles(ctx, token)
	if err != nil {
		return "", 0, err
	}
	var meta *models.File
	for i := range list.Files {
		if list.Files[i].ID == fileID {
			meta = &list.Files[i]
			break
		}
	}
	if meta == nil {
		return "", 0, fmt.Errorf("file %s: %w", fileID, common.ErrorNotFound)
	}

	dir, err = filex.EnsureDir(dir)
	if err != nil {
		return "", 0, err
	}
	out, err := filex.CreateUnique(dir, meta.OriginalName)
	if err != nil {
		return "", 0, err
	}

	var n int64
	if viaServer {
		n, err = s.client.Download(ctx, token, fileID, out)
	} else {
		var url string
		url, err = s.client.GetDownloadURL(ctx, token, fileID)
		if err == nil {
			n, err = netx.Download(ctx, s.http, url, out)
		}
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return "", 0, err
	}
	return out.Name(), n, nil
}

func (s *fileService) Delete(ctx context.Context, token, fileID string) error {
	return s.client.Delete(ctx, token, fileID)
}
