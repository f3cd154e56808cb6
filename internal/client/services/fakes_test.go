package services

import (
	"context"
	"io"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/client/repositories/session"
)

type fakeClient struct {
	client.Client

	session   *models.Session
	authErr   error
	meUser    *models.User
	meErr     error
	logoutErr error
	logouts   []string

	files       []models.File
	listErr     error
	uploaded    []string
	ticket      *models.UploadTicket
	recorded    []string
	downloadURL string
	content     string
	deleted     []string
}

func (f *fakeClient) Ping(context.Context) error { return f.authErr }

func (f *fakeClient) Register(_ context.Context, email, _ string) (*models.Session, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	s := *f.session
	s.User.Email = email
	return &s, nil
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return f.Register(ctx, email, password)
}

func (f *fakeClient) Logout(_ context.Context, token string) error {
	f.logouts = append(f.logouts, token)
	return f.logoutErr
}

func (f *fakeClient) Me(context.Context, string) (*models.User, error) {
	return f.meUser, f.meErr
}

func (f *fakeClient) ListFiles(context.Context, string) (*models.FileList, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &models.FileList{Files: f.files, Total: len(f.files)}, nil
}

func (f *fakeClient) Upload(_ context.Context, _, name, mimeType string, body io.Reader) (*models.File, error) {
	data, _ := io.ReadAll(body)
	f.uploaded = append(f.uploaded, name+"|"+mimeType+"|"+string(data))
	return &models.File{ID: "f1", OriginalName: name, MimeType: mimeType, Size: int64(len(data))}, nil
}

func (f *fakeClient) GetUploadURL(context.Context, string, string, string) (*models.UploadTicket, error) {
	return f.ticket, nil
}

func (f *fakeClient) RecordMetadata(_ context.Context, _, name, mimeType, key string, size int64) (*models.File, error) {
	f.recorded = append(f.recorded, name+"|"+mimeType+"|"+key)
	return &models.File{ID: "f2", OriginalName: name, S3Key: key, Size: size}, nil
}

func (f *fakeClient) GetDownloadURL(context.Context, string, string) (string, error) {
	return f.downloadURL, nil
}

func (f *fakeClient) Download(_ context.Context, _, _ string, w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.content)
	return int64(n), err
}

func (f *fakeClient) Delete(_ context.Context, _, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSessions struct {
	saved    *session.Saved
	saveErr  error
	clearErr error
	cleared  int
}

func (f *fakeSessions) Load(context.Context) (*session.Saved, error) { return f.saved, nil }

func (f *fakeSessions) Save(_ context.Context, s *session.Saved) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = s
	return nil
}

func (f *fakeSessions) Clear(context.Context) error {
	f.cleared++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.saved = nil
	return nil
}
