// Package redis keeps refresh-token records in Redis so they expire on their own.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/artem13815/finance/pkg/auth"
)

const (
	tokenPrefix   = "refresh:"
	accountPrefix = "refresh:account:"
)

// RefreshStore implements auth.RefreshTokenStore. Each record lives under
// refresh:<digest> holding the account id, with the record's remaining lifetime as TTL.
// refresh:account:<id> is a set of the account's digests used by RevokeAll.
type RefreshStore struct {
	client *goredis.Client
	now    func() time.Time
}

func NewRefreshStore(client *goredis.Client) *RefreshStore {
	return &RefreshStore{client: client, now: time.Now}
}

func (s *RefreshStore) Save(ctx context.Context, t auth.RefreshToken) error {
	ttl := t.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	setKey := accountPrefix + t.AccountID.String()
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, tokenPrefix+t.Digest, t.AccountID.String(), ttl)
		p.SAdd(ctx, setKey, t.Digest)
		// The set outlives its newest member only by the member's own TTL.
		p.ExpireGT(ctx, setKey, ttl)
		p.ExpireNX(ctx, setKey, ttl)
		return nil
	})
	return err
}

// takeScript deletes a record and unindexes it in one step, returning the account id and
// the record's remaining TTL in milliseconds. A missing record returns nil.
var takeScript = goredis.NewScript(`
local id = redis.call("GET", KEYS[1])
if not id then
	return false
end
local pttl = redis.call("PTTL", KEYS[1])
redis.call("DEL", KEYS[1])
redis.call("SREM", ARGV[1] .. id, ARGV[2])
return {id, pttl}
`)

func (s *RefreshStore) take(ctx context.Context, digest string) (string, time.Duration, error) {
	res, err := takeScript.Run(ctx, s.client, []string{tokenPrefix + digest}, accountPrefix, digest).Slice()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", 0, auth.ErrRefreshTokenNotFound
		}
		return "", 0, err
	}
	if len(res) != 2 {
		return "", 0, fmt.Errorf("unexpected reply from refresh take script: %v", res)
	}
	id, _ := res[0].(string)
	pttl, _ := res[1].(int64)
	return id, time.Duration(pttl) * time.Millisecond, nil
}

func (s *RefreshStore) Consume(ctx context.Context, digest string) (auth.RefreshToken, error) {
	val, pttl, err := s.take(ctx, digest)
	if err != nil {
		return auth.RefreshToken{}, err
	}
	accountID, err := uuid.Parse(val)
	if err != nil {
		return auth.RefreshToken{}, auth.ErrRefreshTokenNotFound
	}
	expires := s.now().Add(pttl)
	if pttl <= 0 {
		// No TTL on the key; treat the record as already expired.
		expires = s.now()
	}
	return auth.RefreshToken{Digest: digest, AccountID: accountID, ExpiresAt: expires}, nil
}

// Revoke drops a single record. Unknown digests are not an error.
func (s *RefreshStore) Revoke(ctx context.Context, digest string) error {
	_, _, err := s.take(ctx, digest)
	if errors.Is(err, auth.ErrRefreshTokenNotFound) {
		return nil
	}
	return err
}

func (s *RefreshStore) RevokeAll(ctx context.Context, accountID uuid.UUID) error {
	setKey := accountPrefix + accountID.String()
	digests, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(digests)+1)
	for _, d := range digests {
		keys = append(keys, tokenPrefix+d)
	}
	keys = append(keys, setKey)
	return s.client.Del(ctx, keys...).Err()
}

var _ auth.RefreshTokenStore = (*RefreshStore)(nil)
