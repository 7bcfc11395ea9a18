package ledger

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/artem13815/finance/pkg/apperr"
)

const (
	maxTitleLen    = 255
	maxCategoryLen = 100
)

// SignedAmount applies the sign rule: expenses are stored negative, income positive.
func SignedAmount(typ string, amount decimal.Decimal) (decimal.Decimal, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case TypeExpense, "expense":
		return amount.Abs().Neg(), nil
	case TypeIncome, "income":
		return amount.Abs(), nil
	default:
		return decimal.Zero, apperr.Invalid("type", "must be 'receita' or 'despesa'")
	}
}

// normalize validates the input against today's date and returns the trimmed input with
// its signed amount.
func (in Input) normalize(today Date) (Input, decimal.Decimal, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)

	signed, err := SignedAmount(in.Type, in.Amount)
	if err != nil {
		return Input{}, decimal.Zero, err
	}
	switch n := utf8.RuneCountInString(in.Title); {
	case n == 0:
		return Input{}, decimal.Zero, apperr.Invalid("title", "is required")
	case n > maxTitleLen:
		return Input{}, decimal.Zero, apperr.Invalid("title", "must be at most 255 characters")
	}
	if err := validateAmount(in.Amount); err != nil {
		return Input{}, decimal.Zero, err
	}
	switch n := utf8.RuneCountInString(in.Category); {
	case n == 0:
		return Input{}, decimal.Zero, apperr.Invalid("category", "is required")
	case n > maxCategoryLen:
		return Input{}, decimal.Zero, apperr.Invalid("category", "must be at most 100 characters")
	}
	if in.Date.IsZero() {
		return Input{}, decimal.Zero, apperr.Invalid("date", "is required")
	}
	if in.Date.After(today.Time) {
		return Input{}, decimal.Zero, apperr.Invalid("date", "cannot be in the future")
	}
	return in, signed, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Invalid("amount", "must be greater than zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return apperr.Invalid("amount", "cannot exceed 9999999.99")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return apperr.Invalid("amount", "must have at most 2 decimal places")
	}
	return nil
}

func (p Period) validate() error {
	if p.Start != nil && p.End != nil && p.Start.After(p.End.Time) {
		return apperr.Invalid("startDate", "must not be after endDate")
	}
	return nil
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	if p.Start != nil && d.Before(p.Start.Time) {
		return false
	}
	if p.End != nil && d.After(p.End.Time) {
		return false
	}
	return true
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if !f.Contains(e.Date) {
		return false
	}
	return f.Category == "" || e.Category == f.Category
}
