package domain

import (
	"strings"
	"time"
)

// User is a registered member of the directory. PasswordHash holds a
// self-describing bcrypt record and is never rendered to clients.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"date"`
}

// Identity is what a verified access token proves about the caller. The auth
// middleware attaches it to the request; it lives only as long as the request.
type Identity struct {
	UserID string
	Name   string
}

// NormalizeEmail returns the identity key used for uniqueness and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
