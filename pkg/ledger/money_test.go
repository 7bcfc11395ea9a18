package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"50":     "50.00",
		"-50":    "-50.00",
		"45.5":   "45.50",
		"0":      "0.00",
		"-0.01":  "-0.01",
		"100.10": "100.10",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestEntryJSONKeepsTwoDecimals(t *testing.T) {
	e := Entry{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Title:     "market",
		Amount:    decimal.RequireFromString("-50"),
		Category:  "food",
		Date:      NewDate(2024, 1, 10),
		CreatedAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "-50.00", raw["amount"])
	assert.Equal(t, "2024-01-10", raw["date"])
	assert.Equal(t, "market", raw["description"])
	assert.NotContains(t, raw, "AccountID")

	var back Entry
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Amount.Equal(e.Amount))
}

func TestSummaryJSONOfNoEntries(t *testing.T) {
	b, err := json.Marshal(Summarize(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalIncome":"0.00","totalExpense":"0.00","balance":"0.00","count":0}`, string(b))
}
