package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/artem13815/finance/pkg/ledger"
)

// EntryRepository implements ledger.Repository. Amounts cross the wire as NUMERIC text
// so no precision is lost to floats.
type EntryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, account_id, description, amount::text, category, date, created_at, updated_at`

func (r *EntryRepository) Create(ctx context.Context, e ledger.Entry) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO transactions (id, account_id, description, amount, category, date, created_at, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
`, e.ID, e.AccountID, e.Title, e.Amount.String(), e.Category, e.Date.Time, e.CreatedAt, e.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ledger.ErrOwnerNotFound
	}
	return err
}

func (r *EntryRepository) Update(ctx context.Context, e ledger.Entry) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE transactions
SET description = $3, amount = $4::numeric, category = $5, date = $6, updated_at = $7
WHERE id = $1 AND account_id = $2
`, e.ID, e.AccountID, e.Title, e.Amount.String(), e.Category, e.Date.Time, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND account_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

func (r *EntryRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (ledger.Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM transactions WHERE id = $1 AND account_id = $2`, id, ownerID)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Entry{}, ledger.ErrEntryNotFound
	}
	return e, err
}

func (r *EntryRepository) Query(ctx context.Context, ownerID uuid.UUID, f ledger.Filter) ([]ledger.Entry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + entryColumns + ` FROM transactions WHERE account_id = $1`)
	args := []any{ownerID}
	if f.Start != nil {
		args = append(args, f.Start.Time)
		fmt.Fprintf(&sb, " AND date >= $%d", len(args))
	}
	if f.End != nil {
		args = append(args, f.End.Time)
		fmt.Fprintf(&sb, " AND date <= $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	sb.WriteString(" ORDER BY date DESC, seq ASC")

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []ledger.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *EntryRepository) Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT category FROM transactions WHERE account_id = $1 ORDER BY category
`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanEntry(row pgx.Row) (ledger.Entry, error) {
	var (
		e      ledger.Entry
		amount string
		date   time.Time
	)
	if err := row.Scan(&e.ID, &e.AccountID, &e.Title, &amount, &e.Category, &date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return ledger.Entry{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Amount = d
	e.Date = ledger.DateOf(date)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

var _ ledger.Repository = (*EntryRepository)(nil)
