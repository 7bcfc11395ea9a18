package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type tags accepted on write. The tag only decides the sign of the stored amount.
const (
	TypeIncome  = "receita"
	TypeExpense = "despesa"
)

// MaxAmount is the largest magnitude an entry may carry.
var MaxAmount = decimal.RequireFromString("9999999.99")

// Entry is one signed money movement owned by an account.
// Positive amounts are income, negative amounts are expenses.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"-"`
	Title     string          `json:"description"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      Date            `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Input is the caller-supplied data for create and update.
type Input struct {
	Type     string
	Title    string
	Amount   decimal.Decimal
	Category string
	Date     Date
}

// Period bounds entries by date, both ends inclusive. Nil means unbounded.
type Period struct {
	Start *Date
	End   *Date
}

// Filter narrows List. An empty Category matches every category.
type Filter struct {
	Period
	Category string
}

// Summary aggregates a set of entries. TotalExpense is a magnitude.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	Count        int             `json:"count"`
}
