// Package models holds the JSON shapes the CLI exchanges with the server.
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is the result of register or login.
type Session struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

type File struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	OriginalName string    `json:"originalName"`
	S3Key        string    `json:"s3Key"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type FileList struct {
	Files []File `json:"files"`
	Total int    `json:"total"`
}

type UploadTicket struct {
	UploadURL string            `json:"uploadUrl"`
	Fields    map[string]string `json:"fields"`
	S3Key     string            `json:"s3Key"`
}
