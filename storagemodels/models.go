/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"sort"

	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
)

// Lookup maps column names to the values a find filters on.
type Lookup map[string]any

// Columns returns the lookup columns in sorted order, matching the column
// order of stmtcache keys.
func (l Lookup) Columns() []string {
	cols := make([]string, 0, len(l))
	for c := range l {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Args returns the lookup values ordered by columns.
func (l Lookup) Args(columns []string) []any {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = l[c]
	}
	return args
}

// Validate checks that every lookup column is mapped by m.
func (l Lookup) Validate(m *identity.Model) error {
	if len(l) == 0 {
		return errors.NewValidationError("lookup", "at least one column is required")
	}
	for c := range l {
		if _, ok := m.Column(c); !ok {
			return errors.NewValidationError(c, fmt.Sprintf("%s has no column %q", m.Name, c))
		}
	}
	return nil
}

// KeyLookup builds the primary key lookup of m from key values given in key
// column order.
func KeyLookup(m *identity.Model, key ...any) (Lookup, error) {
	if len(key) != len(m.PrimaryKey) {
		return nil, errors.NewValidationError("key",
			fmt.Sprintf("%s expects %d key values, got %d", m.Name, len(m.PrimaryKey), len(key)))
	}
	l := make(Lookup, len(key))
	for i, col := range m.PrimaryKey {
		if _, ok := identity.Normalize(key[i]); !ok {
			return nil, errors.NewValidationError(col, "key value must not be null")
		}
		l[col] = key[i]
	}
	return l, nil
}

// EntityLookup builds the primary key lookup of a stored entity.
func EntityLookup(e identity.Entity) (Lookup, error) {
	m, err := identity.ModelOf(e)
	if err != nil {
		return nil, err
	}
	if !identity.KeyPresent(e) {
		return nil, fmt.Errorf("%s: %w", m.Name, errors.ErrNoPrimaryKey)
	}
	vals, err := identity.KeyValues(e)
	if err != nil {
		return nil, err
	}
	return KeyLookup(m, vals...)
}

// PlanStats exposes the size of a backend's lookup plan cache.
type PlanStats interface {
	Size() int
	BucketSize(m *identity.Model, prepared bool) int
}
