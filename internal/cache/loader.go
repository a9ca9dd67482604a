package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// Loader reads through a Store. Values are stored as JSON and decoded on
// every read, so callers never share the cached object.
type Loader struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader creates a Loader writing entries with the given ttl
func NewLoader(store Store, ttl time.Duration) *Loader {
	return &Loader{store: store, ttl: ttl}
}

// Invalidate removes keys from the store
func (l *Loader) Invalidate(ctx context.Context, keys ...string) error {
	return l.store.Delete(ctx, keys...)
}

// Lookup returns the cached value for key. A miss, a store failure and an
// undecodable entry all report false.
func Lookup[T any](ctx context.Context, l *Loader, key string) (T, bool) {
	var v T
	data, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("[Cache] get %s failed: %v", key, err)
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[Cache] discarding undecodable entry %s: %v", key, err)
		var zero T
		return zero, false
	}
	return v, true
}

// Put stores v under key with the loader's ttl
func Put[T any](ctx context.Context, l *Loader, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return l.store.Set(ctx, key, data, l.ttl)
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Concurrent misses on the same key share one load. Failed loads are not
// cached.
func GetOrLoad[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := Lookup[T](ctx, l, key); ok {
		return v, nil
	}

	var zero T
	shared, err, _ := l.group.Do(key, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := l.store.Set(ctx, key, data, l.ttl); err != nil {
			log.Printf("[Cache] set %s failed: %v", key, err)
		}
		return data, nil
	})
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(shared.([]byte), &v); err != nil {
		return zero, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}
