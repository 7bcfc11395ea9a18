// Package events describes ledger change notifications and the publisher port used to
// emit them. Broker-specific publishers live in the amqp and kafka subpackages.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryCreated = "ledger.entry.created"
	EntryUpdated = "ledger.entry.updated"
	EntryDeleted = "ledger.entry.deleted"
)

// Event is a committed change to a ledger entry.
type Event struct {
	Name       string          `json:"name"`
	AccountID  uuid.UUID       `json:"accountId"`
	EntryID    uuid.UUID       `json:"entryId"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	Date       string          `json:"date,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// ToJSON encodes the event as a message body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// MarshalJSON writes Amount with two fractional digits, the same way the HTTP API does.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(e), e.Amount.StringFixed(2)})
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory. Tests use it to assert on emitted events.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Names returns the names of recorded events in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name
	}
	return names
}
