package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
)

const goodToken = "good-token"

var (
	testTime  = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	aliceUser = &models.User{ID: "11111111-1111-1111-1111-111111111111", Email: "alice@example.com", PasswordHash: "$2a$10$secret", CreatedAt: testTime, UpdatedAt: testTime}
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	AuthService

	register   func(email, password string) (*services.AuthResult, error)
	signIn     func(email, password string) (*services.AuthResult, error)
	authErr    error
	signedOut  *auth.Claims
	signOutErr error
}

func (f *fakeAuth) Register(_ context.Context, email, password string) (*services.AuthResult, error) {
	return f.register(email, password)
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*services.AuthResult, error) {
	return f.signIn(email, password)
}

func (f *fakeAuth) SignOut(_ context.Context, claims *auth.Claims) error {
	f.signedOut = claims
	return f.signOutErr
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*models.User, *auth.Claims, error) {
	if f.authErr != nil {
		return nil, nil, f.authErr
	}
	if token != goodToken {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}
	claims := &auth.Claims{Username: aliceUser.Email}
	claims.Subject = aliceUser.ID
	claims.ID = "token-id"
	return aliceUser, claims, nil
}

type fakeFiles struct {
	FilesService

	uploaded  *services.UploadInput
	body      []byte
	uploadErr error

	list    *services.FileList
	listErr error

	url    string
	urlErr error

	openFile *models.File
	openBody string
	openErr  error

	deleted   []string
	deleteErr error

	ticket    *services.UploadTicket
	ticketErr error

	meta    *services.MetadataInput
	metaErr error
}

func (f *fakeFiles) Upload(_ context.Context, in services.UploadInput) (*models.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	f.uploaded = &in
	return &models.File{
		ID:           "f1",
		UserID:       in.OwnerID,
		OriginalName: in.Name,
		StorageKey:   in.OwnerID + "/k.txt",
		MimeType:     in.MimeType,
		Size:         in.Size,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}, nil
}

func (f *fakeFiles) List(context.Context, string) (*services.FileList, error) {
	return f.list, f.listErr
}

func (f *fakeFiles) GetDownloadURL(context.Context, string, string) (string, error) {
	return f.url, f.urlErr
}

func (f *fakeFiles) Open(context.Context, string, string) (*models.File, io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	return f.openFile, io.NopCloser(bytes.NewBufferString(f.openBody)), nil
}

func (f *fakeFiles) Delete(_ context.Context, fileID, _ string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func (f *fakeFiles) GetUploadURL(context.Context, string, string, string) (*services.UploadTicket, error) {
	return f.ticket, f.ticketErr
}

func (f *fakeFiles) RecordMetadata(_ context.Context, in services.MetadataInput) (*models.File, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	f.meta = &in
	return &models.File{ID: "f2", UserID: in.OwnerID, OriginalName: in.Name, StorageKey: in.S3Key, MimeType: in.MimeType, Size: in.Size}, nil
}

func newTestServer(a *fakeAuth, f *fakeFiles) *Server {
	if a == nil {
		a = &fakeAuth{}
	}
	if f == nil {
		f = &fakeFiles{}
	}
	return NewServer(":0", []string{"*"}, a, f, logging.NopLogger{})
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, s *Server, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return do(t, s, method, path, body, headers)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, file *formFile, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, s *Server, file *formFile, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, file, fields)
	return do(t, s, http.MethodPost, "/api/files/upload", body, map[string]string{
		"Content-Type":  ct,
		"Authorization": "Bearer " + goodToken,
	})
}
