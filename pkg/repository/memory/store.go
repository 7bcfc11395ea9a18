// Package memory provides thread-safe in-memory implementations of the persistence ports.
// It backs DATA_BACKEND=memory and the use-case tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/artem13815/finance/pkg/auth"
	"github.com/artem13815/finance/pkg/ledger"
)

// Store holds accounts and ledger entries behind one lock so that deleting an account
// can cascade to its entries.
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]auth.Account
	emails   map[string]uuid.UUID
	entries  []ledger.Entry // insertion order
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]auth.Account),
		emails:   make(map[string]uuid.UUID),
	}
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// Entries returns the ledger repository view of the store.
func (s *Store) Entries() *EntryRepository { return &EntryRepository{s: s} }

// AccountRepository implements auth.AccountRepository.
type AccountRepository struct{ s *Store }

func (r *AccountRepository) Create(_ context.Context, a auth.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.emails[a.Email]; taken {
		return auth.ErrEmailTaken
	}
	r.s.accounts[a.ID] = a
	r.s.emails[a.Email] = a.ID
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id uuid.UUID) (auth.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	return a, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (auth.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	return r.s.accounts[id], nil
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.emails[email]
	return ok, nil
}

func (r *AccountRepository) Update(_ context.Context, a auth.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.accounts[a.ID]
	if !ok {
		return auth.ErrAccountNotFound
	}
	if a.Email != old.Email {
		if _, taken := r.s.emails[a.Email]; taken {
			return auth.ErrEmailTaken
		}
		delete(r.s.emails, old.Email)
		r.s.emails[a.Email] = a.ID
	}
	r.s.accounts[a.ID] = a
	return nil
}

// Delete removes the account and cascades to its entries.
func (r *AccountRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return auth.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	delete(r.s.emails, a.Email)
	r.s.entries = slices.DeleteFunc(r.s.entries, func(e ledger.Entry) bool { return e.AccountID == id })
	return nil
}

// EntryRepository implements ledger.Repository.
type EntryRepository struct{ s *Store }

func (r *EntryRepository) Create(_ context.Context, e ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[e.AccountID]; !ok {
		return ledger.ErrOwnerNotFound
	}
	r.s.entries = append(r.s.entries, e)
	return nil
}

func (r *EntryRepository) Update(_ context.Context, e ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.indexOf(e.AccountID, e.ID)
	if i < 0 {
		return ledger.ErrEntryNotFound
	}
	r.s.entries[i] = e
	return nil
}

func (r *EntryRepository) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.indexOf(ownerID, id)
	if i < 0 {
		return ledger.ErrEntryNotFound
	}
	r.s.entries = slices.Delete(r.s.entries, i, i+1)
	return nil
}

func (r *EntryRepository) GetForOwner(_ context.Context, ownerID, id uuid.UUID) (ledger.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := r.s.indexOf(ownerID, id)
	if i < 0 {
		return ledger.Entry{}, ledger.ErrEntryNotFound
	}
	return r.s.entries[i], nil
}

func (r *EntryRepository) Query(_ context.Context, ownerID uuid.UUID, f ledger.Filter) ([]ledger.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res := []ledger.Entry{}
	for _, e := range r.s.entries {
		if e.AccountID == ownerID && f.Match(e) {
			res = append(res, e)
		}
	}
	slices.SortStableFunc(res, func(a, b ledger.Entry) int {
		return b.Date.Compare(a.Date.Time)
	})
	return res, nil
}

func (r *EntryRepository) Categories(_ context.Context, ownerID uuid.UUID) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[string]struct{})
	var res []string
	for _, e := range r.s.entries {
		if e.AccountID != ownerID {
			continue
		}
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		res = append(res, e.Category)
	}
	slices.Sort(res)
	return res, nil
}

func (s *Store) indexOf(ownerID, id uuid.UUID) int {
	return slices.IndexFunc(s.entries, func(e ledger.Entry) bool {
		return e.ID == id && e.AccountID == ownerID
	})
}

var (
	_ auth.AccountRepository = (*AccountRepository)(nil)
	_ ledger.Repository      = (*EntryRepository)(nil)
)
