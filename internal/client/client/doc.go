// Package client talks to the filevault REST API and bootstraps the local
// session database used by the CLI.
//
// The access token is never stored inside the API client; every
// authenticated call takes it as an explicit argument.
//
// Server errors are decoded from the {"success":false,"message":...} envelope
// into *APIError, which matches the common sentinel errors with errors.Is.
// Transport failures are reported as ErrUnavailable.
package client
