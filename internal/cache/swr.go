// Package cache implements a stale-while-revalidate cache: values younger than
// the fresh window are served as is, values inside the stale window are served
// immediately while one background refresh replaces them, anything older is
// loaded synchronously.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const refreshTimeout = 15 * time.Second

type LoadFunc[V any] func(ctx context.Context) (V, error)

type SWR[V any] struct {
	store Store
	fresh time.Duration
	stale time.Duration
	group singleflight.Group
	now   func() time.Time
	wg    sync.WaitGroup
}

func NewSWR[V any](store Store, fresh, stale time.Duration) *SWR[V] {
	return &SWR[V]{store: store, fresh: fresh, stale: stale, now: time.Now}
}

// Get returns the cached value for key, calling load when the entry is missing
// or too old.
func (c *SWR[V]) Get(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache read failed, loading from source")
		ok = false
	}

	if ok {
		var v V
		if err := json.Unmarshal(entry.Value, &v); err == nil {
			age := c.now().Sub(entry.StoredAt)
			switch {
			case age < c.fresh:
				return v, nil
			case age < c.fresh+c.stale:
				c.revalidate(key, load)
				return v, nil
			}
		} else {
			logrus.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		}
	}

	// Callers joined on key share this load, so it must outlive any one of them.
	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return c.loadAndStore(loadCtx, key, load)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *SWR[V]) revalidate(key string, load LoadFunc[V]) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		_, err, _ := c.group.Do(key, func() (interface{}, error) {
			return c.loadAndStore(ctx, key, load)
		})
		if err != nil {
			logrus.WithError(err).WithField("key", key).Warn("background refresh failed, keeping stale entry")
		}
	}()
}

func (c *SWR[V]) loadAndStore(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	entry := Entry{Value: data, StoredAt: c.now()}
	if err := c.store.Set(ctx, key, entry, c.fresh+c.stale); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return v, nil
}

// Invalidate drops every entry whose key starts with prefix.
func (c *SWR[V]) Invalidate(ctx context.Context, prefix string) error {
	return c.store.DeletePrefix(ctx, prefix)
}

// Wait blocks until in-flight background refreshes finish.
func (c *SWR[V]) Wait() {
	c.wg.Wait()
}
