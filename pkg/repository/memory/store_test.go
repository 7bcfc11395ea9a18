package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finance/pkg/auth"
	"github.com/artem13815/finance/pkg/ledger"
)

func account(email string) auth.Account {
	return auth.Account{ID: uuid.New(), FirstName: "A", LastName: "B", Email: email, IsActive: true}
}

// owner registers a fresh account in s and returns its id.
func owner(t *testing.T, s *Store) uuid.UUID {
	t.Helper()
	a := account(uuid.NewString() + "@example.com")
	require.NoError(t, s.Accounts().Create(context.Background(), a))
	return a.ID
}

func entry(owner uuid.UUID, category string, d ledger.Date) ledger.Entry {
	return ledger.Entry{
		ID:        uuid.New(),
		AccountID: owner,
		Title:     category,
		Amount:    decimal.NewFromInt(-1),
		Category:  category,
		Date:      d,
	}
}

func TestAccountUniqueEmail(t *testing.T) {
	repo := NewStore().Accounts()
	ctx := context.Background()

	a := account("a@example.com")
	require.NoError(t, repo.Create(ctx, a))
	assert.ErrorIs(t, repo.Create(ctx, account("a@example.com")), auth.ErrEmailTaken)

	ok, err := repo.ExistsByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	b := account("b@example.com")
	require.NoError(t, repo.Create(ctx, b))
	b.Email = a.Email
	assert.ErrorIs(t, repo.Update(ctx, b), auth.ErrEmailTaken)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	assert.ErrorIs(t, repo.Update(ctx, account("c@example.com")), auth.ErrAccountNotFound)
}

func TestAccountDeleteCascadesEntries(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := account("a@example.com"), account("b@example.com")
	require.NoError(t, s.Accounts().Create(ctx, a))
	require.NoError(t, s.Accounts().Create(ctx, b))
	require.NoError(t, s.Entries().Create(ctx, entry(a.ID, "food", ledger.NewDate(2024, 1, 1))))
	require.NoError(t, s.Entries().Create(ctx, entry(b.ID, "rent", ledger.NewDate(2024, 1, 1))))

	require.NoError(t, s.Accounts().Delete(ctx, a.ID))

	left, err := s.Entries().Query(ctx, a.ID, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, left)
	other, err := s.Entries().Query(ctx, b.ID, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, other, 1)

	ok, err := s.Accounts().ExistsByEmail(ctx, a.Email)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Accounts().Delete(ctx, a.ID), auth.ErrAccountNotFound)
}

func TestEntryOwnerScoping(t *testing.T) {
	s := NewStore()
	repo := s.Entries()
	ctx := context.Background()
	mine, other := owner(t, s), owner(t, s)
	e := entry(mine, "food", ledger.NewDate(2024, 1, 1))
	require.NoError(t, repo.Create(ctx, e))

	_, err := repo.GetForOwner(ctx, other, e.ID)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, other, e.ID), ledger.ErrEntryNotFound)

	hijack := e
	hijack.AccountID = other
	assert.ErrorIs(t, repo.Update(ctx, hijack), ledger.ErrEntryNotFound)

	got, err := repo.GetForOwner(ctx, mine, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestEntryCreateRequiresOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.Entries().Create(ctx, entry(uuid.New(), "food", ledger.NewDate(2024, 1, 1)))
	assert.ErrorIs(t, err, ledger.ErrOwnerNotFound)

	id := owner(t, s)
	require.NoError(t, s.Accounts().Delete(ctx, id))
	err = s.Entries().Create(ctx, entry(id, "food", ledger.NewDate(2024, 1, 1)))
	assert.ErrorIs(t, err, ledger.ErrOwnerNotFound)

	left, err := s.Entries().Query(ctx, id, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestQueryOrderAndFilter(t *testing.T) {
	s := NewStore()
	repo := s.Entries()
	ctx := context.Background()
	id := owner(t, s)
	first := entry(id, "food", ledger.NewDate(2024, 1, 15))
	older := entry(id, "rent", ledger.NewDate(2024, 1, 1))
	second := entry(id, "food", ledger.NewDate(2024, 1, 15))
	newer := entry(id, "food", ledger.NewDate(2024, 2, 1))
	for _, e := range []ledger.Entry{first, older, second, newer} {
		require.NoError(t, repo.Create(ctx, e))
	}

	all, err := repo.Query(ctx, id, ledger.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []uuid.UUID{newer.ID, first.ID, second.ID, older.ID},
		[]uuid.UUID{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	end := ledger.NewDate(2024, 1, 31)
	jan, err := repo.Query(ctx, id, ledger.Filter{Period: ledger.Period{End: &end}, Category: "food"})
	require.NoError(t, err)
	assert.Len(t, jan, 2)

	cats, err := repo.Categories(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"food", "rent"}, cats)
}

func TestStoreConcurrentWrites(t *testing.T) {
	s := NewStore()
	repo := s.Entries()
	ctx := context.Background()
	id := owner(t, s)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, entry(id, "food", ledger.NewDate(2024, 1, 1)))
		}()
	}
	wg.Wait()

	all, err := repo.Query(ctx, id, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestRefreshStore(t *testing.T) {
	s := NewRefreshStore()
	ctx := context.Background()
	owner := uuid.New()
	tok := auth.RefreshToken{Digest: "d1", AccountID: owner, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.Save(ctx, tok))
	require.NoError(t, s.Save(ctx, auth.RefreshToken{Digest: "d2", AccountID: owner}))
	require.NoError(t, s.Save(ctx, auth.RefreshToken{Digest: "d3", AccountID: uuid.New()}))

	got, err := s.Consume(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, owner, got.AccountID)
	_, err = s.Consume(ctx, "d1")
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound)

	require.NoError(t, s.RevokeAll(ctx, owner))
	assert.Equal(t, 1, s.Len())
	require.NoError(t, s.Revoke(ctx, "d3"))
	require.NoError(t, s.Revoke(ctx, "d3"))
	assert.Zero(t, s.Len())
}
