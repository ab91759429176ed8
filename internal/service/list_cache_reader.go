package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
	"golang.org/x/sync/singleflight"
)

const (
	listNamespaceProducts = "products"
	listNamespaceUsers    = "users"
	listCacheKeyAll       = "all"
)

// ListCache is a read-through cache for full-table list results. Each
// namespace carries a local generation that Invalidate bumps; a load that
// started before a write never repopulates the cache after it.
type ListCache struct {
	store ListCacheStore
	ttl   time.Duration
	sf    singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

func NewListCache(store ListCacheStore, ttl time.Duration) *ListCache {
	if store == nil {
		store = NewNoopListCacheStore()
	}
	return &ListCache{store: store, ttl: ttl, generations: make(map[string]uint64)}
}

func (c *ListCache) enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *ListCache) generation(namespace string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[namespace]
}

func (c *ListCache) Invalidate(ctx context.Context, namespace string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	c.generations[namespace]++
	c.mu.Unlock()
	if !c.enabled() {
		return nil
	}
	if err := c.store.InvalidateNamespace(ctx, namespace); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "invalidate_error")
		return err
	}
	observability.RecordListCacheEvent(ctx, namespace, "invalidate")
	return nil
}

func (c *ListCache) storeIfCurrent(ctx context.Context, namespace string, gen uint64, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[namespace] != gen {
		observability.RecordListCacheEvent(ctx, namespace, "stale_skip")
		return
	}
	if err := c.store.Set(ctx, namespace, listCacheKeyAll, payload, c.ttl); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "set_error")
	}
}

func cachedList[T any](ctx context.Context, c *ListCache, namespace string, load func(context.Context) ([]T, error)) ([]T, error) {
	if !c.enabled() {
		return load(ctx)
	}

	gen := c.generation(namespace)
	raw, ok, err := c.store.Get(ctx, namespace, listCacheKeyAll)
	switch {
	case err != nil:
		observability.RecordListCacheEvent(ctx, namespace, "get_error")
	case ok:
		items := make([]T, 0)
		if err := json.Unmarshal(raw, &items); err == nil {
			observability.RecordListCacheEvent(ctx, namespace, "hit")
			return items, nil
		}
		observability.RecordListCacheEvent(ctx, namespace, "decode_error")
	}

	v, err, shared := c.sf.Do(fmt.Sprintf("%s:%d", namespace, gen), func() (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(items); err == nil {
			c.storeIfCurrent(ctx, namespace, gen, payload)
		}
		return items, nil
	})
	if shared {
		observability.RecordListCacheEvent(ctx, namespace, "miss_shared")
	} else {
		observability.RecordListCacheEvent(ctx, namespace, "miss")
	}
	if err != nil {
		return nil, err
	}
	items, ok := v.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected list cache result type %T", v)
	}
	if shared {
		return slices.Clone(items), nil
	}
	return items, nil
}
