package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. PasswordHash never leaves the service boundary.
type Account struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          *string   `json:"bio"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy with the password hash cleared.
func (a Account) Public() Account {
	a.PasswordHash = ""
	return a
}

// RefreshToken is the server-side record of an issued refresh token. Only the digest
// of the token is kept.
type RefreshToken struct {
	Digest    string
	AccountID uuid.UUID
	ExpiresAt time.Time
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Account      Account
}
