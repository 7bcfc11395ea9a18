package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 15), d)

	d, err = ParseDate("2024-01-15T23:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 16), d)

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}{D: NewDate(2024, 2, 29)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-02-29","z":null}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2023-12-31"}`), &out))
	assert.Equal(t, "2023-12-31", out.D.String())
	assert.Error(t, json.Unmarshal([]byte(`{"d":"yesterday"}`), &out))
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	start, end := NewDate(2024, 1, 1), NewDate(2024, 1, 31)
	p := Period{Start: &start, End: &end}

	assert.True(t, p.Contains(start))
	assert.True(t, p.Contains(end))
	assert.True(t, p.Contains(NewDate(2024, 1, 15)))
	assert.False(t, p.Contains(NewDate(2024, 2, 1)))
	assert.False(t, p.Contains(NewDate(2023, 12, 31)))
	assert.True(t, Period{}.Contains(NewDate(1999, 1, 1)))
}
