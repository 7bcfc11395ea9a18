package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/artem13815/finance/pkg/apperr"
)

var (
	ErrEntryNotFound = fmt.Errorf("transaction %w", apperr.ErrNotFound)
	// ErrOwnerNotFound is returned by Create when the owning account no longer exists.
	ErrOwnerNotFound = fmt.Errorf("account %w", apperr.ErrNotFound)
)

// Repository is the ledger's persistence port. Every read and write is scoped by owner;
// an entry owned by someone else is reported as ErrEntryNotFound.
type Repository interface {
	Create(ctx context.Context, e Entry) error
	Update(ctx context.Context, e Entry) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Entry, error)
	// Query returns the owner's entries matching f, newest date first and, within a day,
	// in insertion order.
	Query(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Entry, error)
	Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error)
}
