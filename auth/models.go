package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account as stored in the users table.
type User struct {
	ID uuid.UUID `json:"id"`
	// Email comparison is case-sensitive throughout: lookups match exactly
	// what was stored at registration.
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"` // never serialized outward
	CookieConsent     bool       `json:"cookie_consent"`
	CookieConsentDate *time.Time `json:"cookie_consent_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
