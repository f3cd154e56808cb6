package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL
// ("http://host:3000"). A nil hc means http.DefaultClient.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/sign-out", token, nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, token string) (*models.FileList, error) {
	var l models.FileList
	if err := c.do(ctx, http.MethodGet, "/api/files", token, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Upload sends body as the "file" part of a multipart form.
func (c *HTTPClient) Upload(ctx context.Context, token, name, mimeType string, body io.Reader) (*models.File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, err
	}
	if err := mw.WriteField("filename", name); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files/upload", token, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var f models.File
	if err := c.send(req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *HTTPClient) GetUploadURL(ctx context.Context, token, name, mimeType string) (*models.UploadTicket, error) {
	payload := map[string]string{"originalName": name, "mimeType": mimeType}
	var t models.UploadTicket
	if err := c.do(ctx, http.MethodPost, "/api/files/upload-url", token, payload, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) RecordMetadata(ctx context.Context, token, name, mimeType, key string, size int64) (*models.File, error) {
	payload := struct {
		OriginalName string `json:"originalName"`
		MimeType     string `json:"mimeType"`
		S3Key        string `json:"s3Key"`
		Size         int64  `json:"size"`
	}{name, mimeType, key, size}

	var f models.File
	if err := c.do(ctx, http.MethodPost, "/api/files/metadata", token, payload, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *HTTPClient) GetDownloadURL(ctx context.Context, token, fileID string) (string, error) {
	var resp struct {
		DownloadURL string `json:"downloadUrl"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(fileID)+"/download", token, nil, &resp); err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}

// Download streams the file content through the server into w.
func (c *HTTPClient) Download(ctx context.Context, token, fileID string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files/"+url.PathEscape(fileID)+"/content", token, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *HTTPClient) Delete(ctx context.Context, token, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(fileID), token, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var env struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &env) == nil {
		apiErr.Message = env.Message
		apiErr.Fields = env.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
