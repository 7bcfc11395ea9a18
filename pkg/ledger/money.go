package ledger

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every amount is written with.
const MoneyScale = 2

// FormatMoney renders d with exactly MoneyScale fractional digits, so "50" reads "50.00"
// regardless of how the backend stored it.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}

func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(e), FormatMoney(e.Amount)})
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		TotalIncome  string `json:"totalIncome"`
		TotalExpense string `json:"totalExpense"`
		Balance      string `json:"balance"`
	}{plain(s), FormatMoney(s.TotalIncome), FormatMoney(s.TotalExpense), FormatMoney(s.Balance)})
}
