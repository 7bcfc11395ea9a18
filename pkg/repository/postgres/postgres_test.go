package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finance/pkg/auth"
	"github.com/artem13815/finance/pkg/ledger"
	storage "github.com/artem13815/finance/pkg/storage/postgres"
)

// testPool connects to TEST_DATABASE_URL and applies migrations. Tests are skipped when
// the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := storage.Connect(ctx, dsn, storage.PoolConfig{})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func newAccount(t *testing.T, repo *AccountRepository) auth.Account {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	a := auth.Account{
		ID:           uuid.New(),
		FirstName:    "Ana",
		LastName:     "Souza",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), a.ID) })
	return a
}

func TestAccountRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountRepository(pool)
	ctx := context.Background()

	a := newAccount(t, repo)

	dup := a
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, dup), auth.ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, a.Email)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	bio := "hello"
	got.Bio = &bio
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, again.Bio)
	assert.Equal(t, "hello", *again.Bio)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), auth.ErrAccountNotFound)
}

func TestEntryRepository(t *testing.T) {
	pool := testPool(t)
	accounts := NewAccountRepository(pool)
	repo := NewEntryRepository(pool)
	ctx := context.Background()

	owner := newAccount(t, accounts)
	other := newAccount(t, accounts)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mk := func(amount, category string, d ledger.Date) ledger.Entry {
		e := ledger.Entry{
			ID:        uuid.New(),
			AccountID: owner.ID,
			Title:     category,
			Amount:    decimal.RequireFromString(amount),
			Category:  category,
			Date:      d,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.Create(ctx, e))
		return e
	}
	first := mk("-10.10", "food", ledger.NewDate(2024, 1, 15))
	older := mk("100.00", "salary", ledger.NewDate(2024, 1, 2))
	second := mk("-0.01", "food", ledger.NewDate(2024, 1, 15))
	mk("-5", "food", ledger.NewDate(2024, 2, 1))

	start, end := ledger.NewDate(2024, 1, 1), ledger.NewDate(2024, 1, 31)
	jan, err := repo.Query(ctx, owner.ID, ledger.Filter{Period: ledger.Period{Start: &start, End: &end}})
	require.NoError(t, err)
	require.Len(t, jan, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, older.ID}, []uuid.UUID{jan[0].ID, jan[1].ID, jan[2].ID})
	assert.Equal(t, "-10.1", jan[0].Amount.String())
	assert.Equal(t, ledger.NewDate(2024, 1, 15), jan[0].Date)

	_, err = repo.GetForOwner(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, other.ID, first.ID), ledger.ErrEntryNotFound)

	first.Amount = decimal.RequireFromString("-20.00")
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetForOwner(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(-20)))

	cats, err := repo.Categories(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"food", "salary"}, cats)

	require.NoError(t, accounts.Delete(ctx, owner.ID))
	left, err := repo.Query(ctx, owner.ID, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, left)

	late := first
	late.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, late), ledger.ErrOwnerNotFound)
}
