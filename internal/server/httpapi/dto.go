package httpapi

import (
	"time"

	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/services"
)

// Requests. Validation runs once, in gin binding.

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UploadURLRequest struct {
	OriginalName string `json:"originalName" binding:"required,max=255"`
	MimeType     string `json:"mimeType" binding:"required,mimetype"`
}

type MetadataRequest struct {
	OriginalName string `json:"originalName" binding:"required,max=255"`
	MimeType     string `json:"mimeType" binding:"required,mimetype"`
	S3Key        string `json:"s3Key" binding:"required"`
	Size         int64  `json:"size" binding:"required,gt=0"`
}

// Responses.

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}

type FileResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	OriginalName string    `json:"originalName"`
	S3Key        string    `json:"s3Key"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type FileListResponse struct {
	Files []FileResponse `json:"files"`
	Total int            `json:"total"`
}

type UploadURLResponse struct {
	UploadURL string            `json:"uploadUrl"`
	Fields    map[string]string `json:"fields"`
	S3Key     string            `json:"s3Key"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func toAuthResponse(r *services.AuthResult) AuthResponse {
	return AuthResponse{AccessToken: r.AccessToken, User: toUserResponse(r.User)}
}

func toFileResponse(f *models.File) FileResponse {
	return FileResponse{
		ID:           f.ID,
		UserID:       f.UserID,
		OriginalName: f.OriginalName,
		S3Key:        f.StorageKey,
		MimeType:     f.MimeType,
		Size:         f.Size,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toFileListResponse(l *services.FileList) FileListResponse {
	out := FileListResponse{Files: make([]FileResponse, 0, len(l.Files)), Total: l.Total}
	for _, f := range l.Files {
		out.Files = append(out.Files, toFileResponse(f))
	}
	return out
}
