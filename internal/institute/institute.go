// Package institute handles the accounts that issue documents: registration,
// login, and bearer-token validation.
package institute

import (
	"time"

	dErrors "veridoc/pkg/domain-errors"
)

var (
	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
	// ErrInvalidCredentials is returned on login failure. The message does
	// not reveal whether the email exists.
	ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	// ErrInvalidToken is returned for expired or malformed bearer tokens.
	ErrInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	// ErrNotFound is returned when an institute id resolves to nothing.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "institute not found")
)

// Record is a registered issuing institute.
type Record struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
