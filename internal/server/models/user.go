// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. PasswordHash is a bcrypt hash and must never leave
// the server.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
