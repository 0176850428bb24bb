package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared load once it is detached from its callers.
const loadTimeout = 30 * time.Second

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type NoopCache struct{}

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *NoopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (n *NoopCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (n *NoopCache) Ping(ctx context.Context) error {
	return nil
}

// Loader serves JSON values from the cache and collapses concurrent misses for
// the same key into one load.
type Loader struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewLoader(c Cache, ttl time.Duration) *Loader {
	if c == nil {
		c = NewNoop()
	}
	return &Loader{cache: c, ttl: ttl}
}

// Load decodes the cached value for key into dst, or calls fn, stores its
// result and decodes that. Cache failures fall through to fn.
//
// fn runs once for all callers waiting on key, so it receives a context that
// keeps the caller's values but not its cancellation; fn must use that
// context rather than one captured from the caller.
func (l *Loader) Load(ctx context.Context, key string, dst interface{}, fn func(ctx context.Context) (interface{}, error)) error {
	if raw, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(raw, dst); err == nil {
			return nil
		}
	} else if err != nil {
		slog.Warn("cache get failed", "key", key, "error", err)
	}

	raw, err, _ := l.group.Do(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		v, err := fn(shared)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(shared, key, payload, l.ttl); err != nil {
			slog.Warn("cache set failed", "key", key, "error", err)
		}
		return payload, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dst)
}

func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	if err := l.cache.Delete(ctx, keys...); err != nil {
		slog.Warn("cache invalidate failed", "keys", keys, "error", err)
	}
}

// Generation returns the current token of namespace ns, minting one when none
// is stored. Callers fold it into keys whose set cannot be enumerated, such as
// one key per search filter, and drop them all at once with Bump.
func (l *Loader) Generation(ctx context.Context, ns string) string {
	key := ns + ":gen"
	raw, ok, err := l.cache.Get(ctx, key)
	if err == nil && ok && len(raw) > 0 {
		return string(raw)
	}
	if err != nil {
		slog.Warn("cache get failed", "key", key, "error", err)
	}
	gen := uuid.NewString()
	if err := l.cache.Set(ctx, key, []byte(gen), 0); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
	return gen
}

// Bump retires every key built from the current generation of ns. The old
// entries are left to expire on their TTL.
func (l *Loader) Bump(ctx context.Context, ns string) {
	l.Invalidate(ctx, ns+":gen")
}
