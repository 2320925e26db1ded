/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stmtcache

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/logging"
)

// Key identifies one lookup shape: the entity type, the set of columns the
// lookup filters on, and whether the plan uses prepared statements.
type Key struct {
	Type     string
	Columns  string
	Prepared bool
}

// NewKey builds the key for looking up m by columns. Column order and
// duplicates do not matter.
func NewKey(m *identity.Model, columns []string, prepared bool) Key {
	set := make([]string, 0, len(columns))
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if !seen[c] {
			seen[c] = true
			set = append(set, c)
		}
	}
	sort.Strings(set)
	return Key{Type: m.TypeKey(), Columns: strings.Join(set, ","), Prepared: prepared}
}

// PrimaryKey is the key of the find-by-primary-key lookup of m.
func PrimaryKey(m *identity.Model, prepared bool) Key {
	return NewKey(m, m.PrimaryKey, prepared)
}

// ColumnList returns the sorted lookup columns.
func (k Key) ColumnList() []string {
	if k.Columns == "" {
		return nil
	}
	return strings.Split(k.Columns, ",")
}

func (k Key) String() string {
	mode := "unprepared"
	if k.Prepared {
		mode = "prepared"
	}
	return k.Type + "(" + k.Columns + ")/" + mode
}

type bucket struct {
	typ      string
	prepared bool
}

// box keeps nil interface plans assertable after a singleflight round trip.
type box[P any] struct {
	plan P
}

// Cache memoizes lookup plans of type P. Each key is built at most once:
// concurrent requests for a missing key share a single builder call, and a
// failed build stores nothing. Entries are never evicted.
type Cache[P any] struct {
	mu      sync.RWMutex
	plans   map[Key]P
	buckets map[bucket]int
	group   singleflight.Group
}

// New creates an empty Cache.
func New[P any]() *Cache[P] {
	return &Cache[P]{
		plans:   make(map[Key]P),
		buckets: make(map[bucket]int),
	}
}

// GetOrCreate returns the plan stored under key, calling build to create it
// when it is missing. Builder failures are returned wrapped in a PlanError.
func (c *Cache[P]) GetOrCreate(key Key, build func() (P, error)) (P, error) {
	if p, ok := c.lookup(key); ok {
		return p, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// A build that completed between our miss and entering the group already stored the plan.
		if p, ok := c.lookup(key); ok {
			return box[P]{plan: p}, nil
		}

		p, err := build()
		if err != nil {
			logging.L().Debug().Err(err).Str("key", key.String()).Msg("lookup plan build failed")
			return nil, errors.NewPlanError(key.String(), err)
		}

		c.mu.Lock()
		c.plans[key] = p
		c.buckets[bucket{typ: key.Type, prepared: key.Prepared}]++
		size := len(c.plans)
		c.mu.Unlock()

		logging.L().Debug().Str("key", key.String()).Int("size", size).Msg("cached lookup plan")
		return box[P]{plan: p}, nil
	})
	if err != nil {
		var zero P
		return zero, err
	}
	return v.(box[P]).plan, nil
}

// Get returns the plan stored under key without building it.
func (c *Cache[P]) Get(key Key) (P, bool) {
	return c.lookup(key)
}

func (c *Cache[P]) lookup(key Key) (P, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[key]
	return p, ok
}

// Size returns the number of stored plans.
func (c *Cache[P]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}

// BucketSize returns the number of plans stored for m under one
// prepared-statement mode.
func (c *Cache[P]) BucketSize(m *identity.Model, prepared bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buckets[bucket{typ: m.TypeKey(), prepared: prepared}]
}

// Range calls fn for every stored plan until fn returns false.
func (c *Cache[P]) Range(fn func(Key, P) bool) {
	c.mu.RLock()
	snapshot := make(map[Key]P, len(c.plans))
	for k, p := range c.plans {
		snapshot[k] = p
	}
	c.mu.RUnlock()

	for k, p := range snapshot {
		if !fn(k, p) {
			return
		}
	}
}
