package inventory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"inventory-sync/core/reconcile"

	"golang.org/x/sync/singleflight"
)

// View is a read-only copy of the store.
type View struct {
	// Header is the store's header row.
	Header reconcile.HeaderSet `json:"header"`

	// Rows are the data rows in store order, padded to the header width.
	Rows [][]string `json:"rows"`

	// Built is when the view was read from the store.
	Built time.Time `json:"built"`
}

// Lookup returns the row whose key column equals key.
func (v *View) Lookup(keyField, key string) (reconcile.Record, bool) {
	col := v.Header.Index(keyField)
	if col < 0 || key == "" {
		return reconcile.Record{}, false
	}
	for _, row := range v.Rows {
		if col < len(row) && row[col] == key {
			var rec reconcile.Record
			for i, name := range v.Header {
				value := ""
				if i < len(row) {
					value = row[i]
				}
				rec.Set(name, value)
			}
			return rec, true
		}
	}
	return reconcile.Record{}, false
}

// viewCache holds the latest View for ttl. Concurrent misses share one build.
type viewCache struct {
	mu    sync.RWMutex
	view  *View
	gen   uint64
	ttl   time.Duration
	sf    singleflight.Group
	now   func() time.Time
	build func(ctx context.Context) (*View, error)
}

func newViewCache(ttl time.Duration, build func(ctx context.Context) (*View, error)) *viewCache {
	return &viewCache{ttl: ttl, now: time.Now, build: build}
}

func (c *viewCache) fresh(v *View) bool {
	return v != nil && c.ttl > 0 && c.now().Sub(v.Built) <= c.ttl
}

// Get returns the cached view, building it when missing or expired.
func (c *viewCache) Get(ctx context.Context) (*View, error) {
	c.mu.RLock()
	v, gen := c.view, c.gen
	c.mu.RUnlock()
	if c.fresh(v) {
		return v, nil
	}

	// A build started before Invalidate must not be joined or stored after it.
	result, err, _ := c.sf.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		built, err := c.build(ctx)
		if err != nil {
			return nil, err
		}
		built.Built = c.now()

		c.mu.Lock()
		if c.gen == gen {
			c.view = built
		}
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*View), nil
}

// Invalidate drops the cached view.
func (c *viewCache) Invalidate() {
	c.mu.Lock()
	c.view = nil
	c.gen++
	c.mu.Unlock()
}
