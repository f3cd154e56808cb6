package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
)

type AuthService interface {
	Authenticator
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
}

type FilesService interface {
	Upload(ctx context.Context, in services.UploadInput) (*models.File, error)
	List(ctx context.Context, ownerID string) (*services.FileList, error)
	GetDownloadURL(ctx context.Context, fileID, ownerID string) (string, error)
	Open(ctx context.Context, fileID, ownerID string) (*models.File, io.ReadCloser, error)
	Delete(ctx context.Context, fileID, ownerID string) error
	GetUploadURL(ctx context.Context, ownerID, name, mimeType string) (*services.UploadTicket, error)
	RecordMetadata(ctx context.Context, in services.MetadataInput) (*models.File, error)
}

type handler struct {
	auth  AuthService
	files FilesService
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAuthResponse(res))
}

func (h *handler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuthResponse(res))
}

func (h *handler) signOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), currentClaims(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, MeResponse{User: toUserResponse(currentUser(c))})
}

func (h *handler) listFiles(c *gin.Context) {
	list, err := h.files.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileListResponse(list))
}

// upload accepts a multipart form with a "file" part and optional
// "filename" and "filetype" overrides. The body is buffered in memory.
func (h *handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxFileSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, common.NewValidationError("file", "file exceeds the 5 MiB limit"))
			return
		}
		writeError(c, common.NewValidationError("file", "file is required"))
		return
	}
	if fh.Size == 0 {
		writeError(c, common.NewValidationError("file", "file is empty"))
		return
	}
	if fh.Size > services.MaxFileSize {
		writeError(c, common.NewValidationError("size", "file exceeds the 5 MiB limit"))
		return
	}

	name := fh.Filename
	if v := strings.TrimSpace(c.PostForm("filename")); v != "" {
		name = v
	}
	mimeType := fh.Header.Get("Content-Type")
	if v := strings.TrimSpace(c.PostForm("filetype")); v != "" {
		mimeType = v
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxFileSize+1))
	if err != nil {
		writeError(c, err)
		return
	}

	file, err := h.files.Upload(c.Request.Context(), services.UploadInput{
		OwnerID:  currentUser(c).ID,
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFileResponse(file))
}

func (h *handler) uploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	ticket, err := h.files.GetUploadURL(c.Request.Context(), currentUser(c).ID, req.OriginalName, req.MimeType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadURLResponse{UploadURL: ticket.UploadURL, Fields: ticket.Fields, S3Key: ticket.S3Key})
}

func (h *handler) recordMetadata(c *gin.Context) {
	var req MetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	file, err := h.files.RecordMetadata(c.Request.Context(), services.MetadataInput{
		OwnerID:  currentUser(c).ID,
		Name:     req.OriginalName,
		MimeType: req.MimeType,
		S3Key:    req.S3Key,
		Size:     req.Size,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFileResponse(file))
}

func (h *handler) downloadURL(c *gin.Context) {
	url, err := h.files.GetDownloadURL(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

func (h *handler) content(c *gin.Context) {
	file, body, err := h.files.Open(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.OriginalName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, body, map[string]string{
		"Content-Disposition": disposition,
		"X-File-Id":           file.ID,
	})
}

func (h *handler) deleteFile(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("id"), currentUser(c).ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
