package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/artem13815/finance/pkg/apperr"
)

// Common errors used by repositories and use cases
var (
	ErrAccountNotFound      = fmt.Errorf("account %w", apperr.ErrNotFound)
	ErrEmailTaken           = fmt.Errorf("email already registered: %w", apperr.ErrConflict)
	ErrInvalidCredentials   = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthenticated)
	ErrInvalidRefreshToken  = fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthenticated)
	ErrRefreshTokenNotFound = fmt.Errorf("refresh token %w", apperr.ErrNotFound)
)

// AccountRepository abstracts account persistence. Emails passed in are already
// normalized. Create and Update return ErrEmailTaken on a uniqueness violation;
// lookups and Update/Delete return ErrAccountNotFound when nothing matches.
// Delete removes the account's ledger entries as well.
type AccountRepository interface {
	Create(ctx context.Context, account Account) error
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, account Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RefreshTokenStore keeps refresh-token records keyed by digest.
// Consume atomically returns and removes a record (ErrRefreshTokenNotFound if absent).
// Revoke and RevokeAll are idempotent.
type RefreshTokenStore interface {
	Save(ctx context.Context, token RefreshToken) error
	Consume(ctx context.Context, digest string) (RefreshToken, error)
	Revoke(ctx context.Context, digest string) error
	RevokeAll(ctx context.Context, accountID uuid.UUID) error
}
