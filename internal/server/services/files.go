package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/storage"
)

// UploadInput is one direct upload. Body must yield exactly Size bytes.
type UploadInput struct {
	OwnerID  string
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// MetadataInput reports a finished presigned upload.
type MetadataInput struct {
	OwnerID  string
	Name     string
	MimeType string
	S3Key    string
	Size     int64
}

// FileList is the owner's catalog, newest first.
type FileList struct {
	Files []*models.File
	Total int
}

// UploadTicket lets a client PUT a blob straight to the object store.
// Fields is always empty for presigned PUT and kept for clients that expect
// a POST-policy shaped answer.
type UploadTicket struct {
	UploadURL string
	Fields    map[string]string
	S3Key     string
}

// FilesService keeps the file catalog and the object store consistent.
// Every method is scoped to one owner; records of other users behave as if
// they did not exist.
type FilesService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	log         logging.Logger
}

func NewFilesService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, log logging.Logger) *FilesService {
	return &FilesService{
		db:          db,
		repomanager: m,
		store:       store,
		log:         log.With("module", "files"),
	}
}

// Upload validates the input, writes the blob and then catalogs it. If the
// catalog insert fails the blob is removed again on a best-effort basis.
func (s *FilesService) Upload(ctx context.Context, in UploadInput) (*models.File, error) {
	name, mimeType, err := validateFile(in.Name, in.MimeType, in.Size)
	if err != nil {
		return nil, err
	}

	key := StorageKey(in.OwnerID, name)

	if err := s.store.Put(ctx, key, mimeType, in.Body, in.Size); err != nil {
		return nil, s.internal(ctx, "store blob", err, "key", key)
	}

	file, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		UserID:       in.OwnerID,
		OriginalName: name,
		StorageKey:   key,
		MimeType:     mimeType,
		Size:         in.Size,
	})
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.Warn(ctx, "orphaned blob after failed insert", "key", key, "error", derr)
		}
		return nil, s.internal(ctx, "catalog file", err, "key", key)
	}

	s.log.Info(ctx, "file uploaded", "file_id", file.ID, "user_id", in.OwnerID, "size", file.Size)
	return file, nil
}

func (s *FilesService) List(ctx context.Context, ownerID string) (*FileList, error) {
	files, err := s.repomanager.Files(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.internal(ctx, "list files", err)
	}
	return &FileList{Files: files, Total: len(files)}, nil
}

// GetDownloadURL returns a presigned GET url valid for PresignExpiry.
func (s *FilesService) GetDownloadURL(ctx context.Context, fileID, ownerID string) (string, error) {
	file, err := s.find(ctx, fileID, ownerID)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, file.StorageKey, PresignExpiry)
	if err != nil {
		return "", s.internal(ctx, "presign download", err, "file_id", fileID)
	}
	return url, nil
}

// Open streams the blob through the server. The caller closes the reader.
func (s *FilesService) Open(ctx context.Context, fileID, ownerID string) (*models.File, io.ReadCloser, error) {
	file, err := s.find(ctx, fileID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	body, _, err := s.store.Get(ctx, file.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "catalog row without blob", "file_id", fileID, "key", file.StorageKey)
		}
		return nil, nil, s.internal(ctx, "open blob", err, "file_id", fileID)
	}
	return file, body, nil
}

// Delete removes blob and row while holding the row lock. When the blob
// cannot be removed the row is kept and common.ErrorInternal is returned, so
// the call can be retried.
func (s *FilesService) Delete(ctx context.Context, fileID, ownerID string) error {
	if !isUUID(fileID) {
		return common.ErrorNotFound
	}

	var key string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		file, err := repo.LockByIDAndOwner(ctx, fileID, ownerID)
		if err != nil {
			return err
		}
		key = file.StorageKey

		if err := s.store.Delete(ctx, file.StorageKey); err != nil {
			return fmt.Errorf("delete blob: %w", err)
		}
		return repo.Delete(ctx, fileID, ownerID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "delete file", err, "file_id", fileID, "key", key)
	}

	s.log.Info(ctx, "file deleted", "file_id", fileID, "user_id", ownerID)
	return nil
}

// GetUploadURL validates name and type and mints a presigned PUT for a fresh
// key in the owner's namespace. Nothing is written.
func (s *FilesService) GetUploadURL(ctx context.Context, ownerID, name, mimeType string) (*UploadTicket, error) {
	name, mimeType, err := validateNameAndType(name, mimeType)
	if err != nil {
		return nil, err
	}

	key := StorageKey(ownerID, name)
	url, err := s.store.PresignPut(ctx, key, mimeType, PresignExpiry)
	if err != nil {
		return nil, s.internal(ctx, "presign upload", err)
	}
	return &UploadTicket{UploadURL: url, Fields: map[string]string{}, S3Key: key}, nil
}

// RecordMetadata catalogs a blob uploaded through GetUploadURL. The key must
// belong to the owner and the object must exist with exactly the reported
// size.
func (s *FilesService) RecordMetadata(ctx context.Context, in MetadataInput) (*models.File, error) {
	name, mimeType, err := validateFile(in.Name, in.MimeType, in.Size)
	if err != nil {
		return nil, err
	}
	if !OwnsKey(in.OwnerID, in.S3Key) {
		return nil, common.NewValidationError("s3Key", "key does not belong to this user")
	}

	info, err := s.store.Head(ctx, in.S3Key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("s3Key", "object not found")
		}
		return nil, s.internal(ctx, "head blob", err, "key", in.S3Key)
	}
	if info.Size != in.Size {
		return nil, common.NewValidationError("size", "does not match stored object")
	}

	file, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		UserID:       in.OwnerID,
		OriginalName: name,
		StorageKey:   in.S3Key,
		MimeType:     mimeType,
		Size:         in.Size,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("file %w", common.ErrorConflict)
		}
		return nil, s.internal(ctx, "catalog file", err, "key", in.S3Key)
	}

	s.log.Info(ctx, "presigned upload recorded", "file_id", file.ID, "user_id", in.OwnerID, "size", file.Size)
	return file, nil
}

// find maps malformed ids to common.ErrorNotFound without touching the
// database.
func (s *FilesService) find(ctx context.Context, fileID, ownerID string) (*models.File, error) {
	if !isUUID(fileID) {
		return nil, common.ErrorNotFound
	}
	file, err := s.repomanager.Files(s.db).GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "get file", err, "file_id", fileID)
	}
	return file, nil
}

func (s *FilesService) internal(ctx context.Context, op string, err error, args ...any) error {
	s.log.Error(ctx, op+" failed", append(args, "error", err)...)
	return fmt.Errorf("%w: %s", common.ErrorInternal, op)
}

func validateFile(name, mimeType string, size int64) (string, string, error) {
	name, mimeType, err := validateNameAndType(name, mimeType)
	if err != nil {
		return "", "", err
	}
	if size <= 0 {
		return "", "", common.NewValidationError("size", "file is empty")
	}
	if size > MaxFileSize {
		return "", "", common.NewValidationError("size", fmt.Sprintf("file exceeds %d bytes", MaxFileSize))
	}
	return name, mimeType, nil
}

func validateNameAndType(name, mimeType string) (string, string, error) {
	name = CleanFileName(name)
	if name == "" {
		return "", "", common.NewValidationError("originalName", "is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return "", "", common.NewValidationError("originalName", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	mimeType = NormalizeMimeType(mimeType)
	if !IsAllowedMimeType(mimeType) {
		return "", "", common.NewValidationError("mimeType", "file type not allowed")
	}
	return name, mimeType, nil
}
