package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
	"github.com/dmitrijs2005/filevault/internal/server/storage"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	err    error
	getErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// --- files ---

type fakeFilesRepo struct {
	mu        sync.Mutex
	rows      map[string]*models.File
	seq       int
	createErr error
	listErr   error
	getErr    error
	deleteErr error
	locked    []string
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{rows: map[string]*models.File{}}
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.rows {
		if r.StorageKey == file.StorageKey {
			return nil, common.ErrorConflict
		}
	}
	f.seq++
	file.ID = uuid.NewString()
	file.CreatedAt = time.Unix(int64(f.seq), 0)
	file.UpdatedAt = file.CreatedAt
	cp := *file
	f.rows[file.ID] = &cp
	return file, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, userID string) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.File{}
	for _, r := range f.rows {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFilesRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeFilesRepo) LockByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error) {
	f.mu.Lock()
	f.locked = append(f.locked, id)
	f.mu.Unlock()
	return f.GetByIDAndOwner(ctx, id, userID)
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
	f *fakeFilesRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository { return m.f }

// --- object store ---

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	putErr, getErr, headErr, deleteErr, presignErr error

	puts, deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(b), size)
	}
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, nil, s.getErr
	}
	b, ok := s.objects[key]
	if !ok {
		return nil, nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), &storage.ObjectInfo{Size: int64(len(b)), ContentType: s.types[key]}, nil
}

func (s *fakeStore) Head(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headErr != nil {
		return nil, s.headErr
	}
	b, ok := s.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &storage.ObjectInfo{Size: int64(len(b)), ContentType: s.types[key]}, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return fmt.Sprintf("https://s3.test/filevault/%s?X-Amz-Expires=%d&ct=%s", key, int(expires.Seconds()), contentType), nil
}

func (s *fakeStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return fmt.Sprintf("https://s3.test/filevault/%s?X-Amz-Expires=%d", key, int(expires.Seconds())), nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// --- revocation ---

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]time.Duration{}}
}

func (r *fakeRevocations) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.revoked[id] = ttl
	return nil
}

func (r *fakeRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[id]
	return ok, nil
}

var errBoom = errors.New("boom")
