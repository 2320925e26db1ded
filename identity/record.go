/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"fmt"
	"sync/atomic"
)

// Entity is implemented by every mapped struct through an embedded Record.
type Entity interface {
	Identity() *Record
}

// Ptr constrains a type parameter to *T where *T is an Entity.
type Ptr[T any] interface {
	*T
	Entity
}

// Record carries the identity state of one entity instance. Embed it by value
// and always handle the entity through a pointer. A copy is a distinct
// instance under Equal; it keeps the token, so it may share a hash.
type Record struct {
	token     atomic.Uint64
	persisted atomic.Bool
}

var tokenSeq atomic.Uint64

// Identity implements Entity.
func (r *Record) Identity() *Record { return r }

// Persisted reports whether the instance has a durable identity.
func (r *Record) Persisted() bool { return r.persisted.Load() }

// instanceToken returns the instance token, assigning one on first use.
func (r *Record) instanceToken() uint64 {
	if t := r.token.Load(); t != 0 {
		return t
	}
	r.token.CompareAndSwap(0, tokenSeq.Add(1))
	return r.token.Load()
}

// MarkPersisted records that e was durably written or loaded. It returns
// false when e was already persisted.
func MarkPersisted(e Entity) bool {
	return e.Identity().persisted.CompareAndSwap(false, true)
}

// New constructs an unsaved T. Types declaring a default key policy get the
// resolved default assigned to their key column(s).
func New[T any, PT Ptr[T]]() (*T, error) {
	m, err := ModelFor[T]()
	if err != nil {
		return nil, err
	}

	v := new(T)
	e := PT(v)
	e.Identity().instanceToken()

	def, ok, err := ResolveDefaultKey(m)
	if err != nil {
		return nil, fmt.Errorf("resolve default key for %s: %w", m.Name, err)
	}
	if !ok {
		return v, nil
	}

	if !m.Composite() {
		if err := SetColumn(e, m.PrimaryKey[0], def); err != nil {
			return nil, err
		}
		return v, nil
	}

	parts, isList := def.([]any)
	if !isList || len(parts) != len(m.PrimaryKey) {
		return nil, fmt.Errorf("default key for %s must provide %d values", m.Name, len(m.PrimaryKey))
	}
	for i, col := range m.PrimaryKey {
		if err := SetColumn(e, col, parts[i]); err != nil {
			return nil, err
		}
	}
	return v, nil
}
