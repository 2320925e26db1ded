/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the DataStore interface for testing
package mock

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/stmtcache"
	"github.com/suparena/recordkit/storagemodels"
)

// matcher is the mock's compiled lookup plan.
type matcher struct {
	columns []string
}

func (p *matcher) match(row map[string]any, args []any) bool {
	for i, c := range p.columns {
		if !identity.SameValue(row[c], args[i]) {
			return false
		}
	}
	return true
}

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any, PT identity.Ptr[T]] struct {
	mu          sync.RWMutex
	model       *identity.Model
	rows        map[string]map[string]any
	order       []string
	plans       *stmtcache.Cache[*matcher]
	prepared    bool
	findError   error
	saveError   error
	deleteError error
}

// New creates a new mock DataStore. It panics when T cannot be mapped.
func New[T any, PT identity.Ptr[T]]() *DataStore[T, PT] {
	m, err := identity.ModelFor[T]()
	if err != nil {
		panic(err)
	}
	return &DataStore[T, PT]{
		model: m,
		rows:  make(map[string]map[string]any),
		plans: stmtcache.New[*matcher](),
	}
}

// WithPreparedStatements selects the prepared-statement mode lookups are cached under
func (m *DataStore[T, PT]) WithPreparedStatements(enabled bool) *DataStore[T, PT] {
	m.prepared = enabled
	return m
}

// WithFindError makes Find operations return an error
func (m *DataStore[T, PT]) WithFindError(err error) *DataStore[T, PT] {
	m.findError = err
	return m
}

// WithSaveError makes Save operations return an error
func (m *DataStore[T, PT]) WithSaveError(err error) *DataStore[T, PT] {
	m.saveError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore[T, PT]) WithDeleteError(err error) *DataStore[T, PT] {
	m.deleteError = err
	return m
}

// Find retrieves an entity by primary key
func (m *DataStore[T, PT]) Find(ctx context.Context, key ...any) (*T, error) {
	lookup, err := storagemodels.KeyLookup(m.model, key...)
	if err != nil {
		return nil, err
	}
	return m.FindBy(ctx, lookup)
}

// FindBy retrieves the first stored entity matching lookup
func (m *DataStore[T, PT]) FindBy(ctx context.Context, lookup storagemodels.Lookup) (*T, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	if err := lookup.Validate(m.model); err != nil {
		return nil, err
	}

	key := stmtcache.NewKey(m.model, lookup.Columns(), m.prepared)
	plan, err := m.plans.GetOrCreate(key, func() (*matcher, error) {
		return &matcher{columns: key.ColumnList()}, nil
	})
	if err != nil {
		return nil, err
	}
	args := lookup.Args(plan.columns)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range m.order {
		row := m.rows[k]
		if plan.match(row, args) {
			return m.materialize(row)
		}
	}
	return nil, errors.NewNotFoundError(m.model.Name, fmt.Sprint(args...))
}

// Save stores a copy of the entity's columns and marks it persisted
func (m *DataStore[T, PT]) Save(ctx context.Context, entity *T) error {
	if m.saveError != nil {
		return m.saveError
	}
	e := PT(entity)

	lookup, err := storagemodels.EntityLookup(e)
	if err != nil {
		return err
	}
	values, err := identity.Values(e)
	if err != nil {
		return err
	}

	row := make(map[string]any, len(values))
	for c, v := range values {
		row[c] = snapshot(v)
	}

	k := rowKey(m.model, lookup)
	m.mu.Lock()
	if _, exists := m.rows[k]; !exists {
		m.order = append(m.order, k)
	}
	m.rows[k] = row
	m.mu.Unlock()

	identity.MarkPersisted(e)
	return nil
}

// Delete removes a persisted entity
func (m *DataStore[T, PT]) Delete(ctx context.Context, entity *T) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	e := PT(entity)
	if !e.Identity().Persisted() {
		return fmt.Errorf("delete %s: %w", m.model.Name, errors.ErrNotPersisted)
	}
	lookup, err := storagemodels.EntityLookup(e)
	if err != nil {
		return err
	}

	k := rowKey(m.model, lookup)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rows[k]; !exists {
		return errors.NewNotFoundError(m.model.Name, k)
	}
	delete(m.rows, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Plans exposes the lookup plan cache
func (m *DataStore[T, PT]) Plans() storagemodels.PlanStats {
	return m.plans
}

// Helper methods for testing

// Count returns the number of stored rows
func (m *DataStore[T, PT]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Clear removes all rows. Cached plans are kept.
func (m *DataStore[T, PT]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[string]map[string]any)
	m.order = nil
}

func (m *DataStore[T, PT]) materialize(row map[string]any) (*T, error) {
	out := new(T)
	e := PT(out)
	for c, v := range row {
		if err := identity.SetColumn(e, c, v); err != nil {
			return nil, err
		}
	}
	identity.MarkPersisted(e)
	return out, nil
}

// snapshot copies pointed-to values so later edits of the saved entity do
// not leak into stored rows.
func snapshot(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func rowKey(m *identity.Model, lookup storagemodels.Lookup) string {
	parts := make([]string, len(m.PrimaryKey))
	for i, c := range m.PrimaryKey {
		nv, _ := identity.Normalize(lookup[c])
		parts[i] = fmt.Sprintf("%T=%v", nv, nv)
	}
	return strings.Join(parts, "|")
}
