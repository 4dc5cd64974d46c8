// Package models holds the server-side domain records persisted in PostgreSQL.
package models

import (
	"strings"
	"time"
)

// User is a registered identity. Email keeps the trimmed form given at
// registration; lookups go through NormalizeEmail.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Role is one of the seeded authorization roles.
type Role struct {
	ID   string
	Name string
}

// NormalizeEmail is the case-insensitive key emails are unique under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
