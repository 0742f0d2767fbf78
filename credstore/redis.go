package credstore

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis is a [Store] keeping the two entries as plain keys under a prefix,
// for processes that share one session through Redis (workers, sidecars).
// Entry lifetime is owned by the backend token, so no TTL is applied.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed store. An empty prefix defaults to "tc".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if strings.TrimSpace(prefix) == "" {
		prefix = "tc"
	}
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

// Read implements [Store]. Transport failures are returned; missing or
// partial keys are absent.
func (r *Redis) Read(ctx context.Context) (Record, bool, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyUser), r.key(KeyToken)).Result()
	if err != nil {
		return Record{}, false, err
	}

	userJSON := asBytes(vals[0])
	token := asString(vals[1])
	if !validRecord(userJSON, token) {
		return Record{}, false, nil
	}
	return Record{UserJSON: userJSON, Token: token}, true, nil
}

// Write implements [Store]. Both entries go out in one MSET so a single
// round-trip covers the paired write.
func (r *Redis) Write(ctx context.Context, rec Record) error {
	return r.client.MSet(ctx,
		r.key(KeyUser), string(rec.UserJSON),
		r.key(KeyToken), rec.Token,
	).Err()
}

// Clear implements [Store].
func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key(KeyUser), r.key(KeyToken)).Err()
}

func (r *Redis) key(entry string) string {
	return r.prefix + ":" + entry
}

func asBytes(v any) []byte {
	s := asString(v)
	if s == "" {
		return nil
	}
	return []byte(s)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
