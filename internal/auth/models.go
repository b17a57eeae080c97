package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a portal operator account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  *string   `json:"display_name,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SafeUser returns a copy with credential material blanked.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	return u
}

// Session is a server-side record of an issued session cookie. Only the
// HMAC of the token is stored.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
