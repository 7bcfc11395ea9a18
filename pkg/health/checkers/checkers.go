// Package checkers adapts storage clients into health.Checker values.
package checkers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

const defaultTimeout = time.Second

// Probe is a named ping bounded by its own timeout.
type Probe struct {
	name    string
	timeout time.Duration
	ping    func(ctx context.Context) error
}

// New wraps ping as a checker. A non-positive timeout means one second.
func New(name string, timeout time.Duration, ping func(ctx context.Context) error) Probe {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return Probe{name: name, timeout: timeout, ping: ping}
}

func (p Probe) Name() string { return p.name }

func (p Probe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.ping(ctx)
}

// Postgres pings the account and transaction database.
func Postgres(pool *pgxpool.Pool) Probe {
	return New("postgres", defaultTimeout, pool.Ping)
}

// Redis pings the refresh-token store.
func Redis(client *goredis.Client) Probe {
	return New("redis", defaultTimeout, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// ErrClosed is reported by Broker when the connection is gone.
var ErrClosed = errors.New("connection closed")

// Broker reports whether an event broker connection is still open.
func Broker(name string, isClosed func() bool) Probe {
	return New(name, defaultTimeout, func(context.Context) error {
		if isClosed() {
			return ErrClosed
		}
		return nil
	})
}
