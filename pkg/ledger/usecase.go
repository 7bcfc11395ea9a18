package ledger

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artem13815/finance/pkg/apperr"
	"github.com/artem13815/finance/pkg/events"
	"github.com/artem13815/finance/pkg/logging"
)

const publishTimeout = 5 * time.Second

// UseCase is the ledger application service. Every operation is scoped to accountID.
type UseCase interface {
	Create(ctx context.Context, accountID uuid.UUID, in Input) (Entry, error)
	List(ctx context.Context, accountID uuid.UUID, f Filter) ([]Entry, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (Entry, error)
	Update(ctx context.Context, accountID, id uuid.UUID, in Input) (Entry, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	Summary(ctx context.Context, accountID uuid.UUID, p Period) (Summary, error)
	Categories(ctx context.Context, accountID uuid.UUID) ([]string, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	log       *logging.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, log *logging.Logger) UseCase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		log:       log.WithComponent(logging.ComponentLedger),
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, accountID uuid.UUID, in Input) (Entry, error) {
	in, amount, err := in.normalize(DateOf(s.now()))
	if err != nil {
		return Entry{}, err
	}
	now := s.now().UTC()
	e := Entry{
		ID:        uuid.New(),
		AccountID: accountID,
		Title:     in.Title,
		Amount:    amount,
		Category:  in.Category,
		Date:      in.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, apperr.Storage("create transaction", err)
	}
	s.log.InfoContext(ctx, "transaction created",
		logging.FieldOperation, logging.OpCreate,
		logging.FieldAccountID, accountID,
		logging.FieldEntryID, e.ID,
		logging.FieldCategory, e.Category,
		logging.FieldAmount, FormatMoney(e.Amount))
	s.publish(ctx, events.EntryCreated, e)
	return e, nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID, f Filter) ([]Entry, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	entries, err := s.repo.Query(ctx, accountID, f)
	if err != nil {
		return nil, apperr.Storage("list transactions", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	// Stable: entries on the same day keep the repository's insertion order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date.Time)
	})
	return entries, nil
}

func (s *service) Get(ctx context.Context, accountID, id uuid.UUID) (Entry, error) {
	e, err := s.repo.GetForOwner(ctx, accountID, id)
	if err != nil {
		return Entry{}, apperr.Storage("get transaction", err)
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, accountID, id uuid.UUID, in Input) (Entry, error) {
	in, amount, err := in.normalize(DateOf(s.now()))
	if err != nil {
		return Entry{}, err
	}
	e, err := s.repo.GetForOwner(ctx, accountID, id)
	if err != nil {
		return Entry{}, apperr.Storage("get transaction", err)
	}
	e.Title = in.Title
	e.Amount = amount
	e.Category = in.Category
	e.Date = in.Date
	e.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, apperr.Storage("update transaction", err)
	}
	s.log.InfoContext(ctx, "transaction updated",
		logging.FieldOperation, logging.OpUpdate,
		logging.FieldAccountID, accountID,
		logging.FieldEntryID, id,
		logging.FieldCategory, e.Category)
	s.publish(ctx, events.EntryUpdated, e)
	return e, nil
}

func (s *service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return apperr.Storage("delete transaction", err)
	}
	s.log.InfoContext(ctx, "transaction deleted",
		logging.FieldOperation, logging.OpDelete,
		logging.FieldAccountID, accountID,
		logging.FieldEntryID, id)
	s.publish(ctx, events.EntryDeleted, Entry{ID: id, AccountID: accountID})
	return nil
}

func (s *service) Summary(ctx context.Context, accountID uuid.UUID, p Period) (Summary, error) {
	if err := p.validate(); err != nil {
		return Summary{}, err
	}
	entries, err := s.repo.Query(ctx, accountID, Filter{Period: p})
	if err != nil {
		return Summary{}, apperr.Storage("summarize transactions", err)
	}
	return Summarize(entries), nil
}

func (s *service) Categories(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	cats, err := s.repo.Categories(ctx, accountID)
	if err != nil {
		return nil, apperr.Storage("list categories", err)
	}
	cats = slices.Clone(cats)
	slices.Sort(cats)
	cats = slices.Compact(cats)
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

// Summarize totals income and expenses of entries using exact decimal arithmetic.
func Summarize(entries []Entry) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch {
		case e.Amount.IsPositive():
			income = income.Add(e.Amount)
		case e.Amount.IsNegative():
			expense = expense.Add(e.Amount)
		}
	}
	expense = expense.Abs()
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
		Count:        len(entries),
	}
}

func (s *service) publish(ctx context.Context, name string, e Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := events.Event{
		Name:       name,
		AccountID:  e.AccountID,
		EntryID:    e.ID,
		Amount:     e.Amount,
		Category:   e.Category,
		Date:       e.Date.String(),
		OccurredAt: s.now().UTC(),
	}
	// The write is committed; a lost event is logged, not reported to the caller.
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.ErrorContext(ctx, "publish ledger event",
			logging.FieldEvent, name,
			logging.FieldEntryID, e.ID,
			logging.FieldError, err)
	}
}
