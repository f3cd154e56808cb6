// Package common contains shared constants and sentinel errors used across
// filevault components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on HTTP requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "
)
