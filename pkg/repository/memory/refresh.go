package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/artem13815/finance/pkg/auth"
)

// RefreshStore implements auth.RefreshTokenStore in memory. Expiry is checked by the
// auth service; expired records linger until consumed or revoked.
type RefreshStore struct {
	mu     sync.Mutex
	tokens map[string]auth.RefreshToken
}

func NewRefreshStore() *RefreshStore {
	return &RefreshStore{tokens: make(map[string]auth.RefreshToken)}
}

func (s *RefreshStore) Save(_ context.Context, t auth.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Digest] = t
	return nil
}

func (s *RefreshStore) Consume(_ context.Context, digest string) (auth.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[digest]
	if !ok {
		return auth.RefreshToken{}, auth.ErrRefreshTokenNotFound
	}
	delete(s.tokens, digest)
	return t, nil
}

func (s *RefreshStore) Revoke(_ context.Context, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, digest)
	return nil
}

func (s *RefreshStore) RevokeAll(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for digest, t := range s.tokens {
		if t.AccountID == accountID {
			delete(s.tokens, digest)
		}
	}
	return nil
}

// Len reports the number of live records.
func (s *RefreshStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

var _ auth.RefreshTokenStore = (*RefreshStore)(nil)
