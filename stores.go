/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordkit

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/recordkit/datastore"
	"github.com/suparena/recordkit/errors"
)

// TypedStores holds the named datastores of one entity type T.
type TypedStores[T any] struct {
	mu     sync.RWMutex
	stores map[string]datastore.DataStore[T]
}

// NewTypedStores creates an empty TypedStores for type T.
func NewTypedStores[T any]() *TypedStores[T] {
	return &TypedStores[T]{
		stores: make(map[string]datastore.DataStore[T]),
	}
}

// Register adds a datastore under key.
func (ts *TypedStores[T]) Register(key string, ds datastore.DataStore[T]) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[key]; exists {
		return fmt.Errorf("datastore with key %q already registered", key)
	}
	ts.stores[key] = ds
	return nil
}

// Get retrieves a datastore by key.
func (ts *TypedStores[T]) Get(key string) (datastore.DataStore[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	ds, exists := ts.stores[key]
	if !exists {
		return nil, errors.NewNotFoundError("datastore", key)
	}
	return ds, nil
}

// Remove deletes a datastore by key.
func (ts *TypedStores[T]) Remove(key string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[key]; !exists {
		return errors.NewNotFoundError("datastore", key)
	}
	delete(ts.stores, key)
	return nil
}

// List returns the registered keys in sorted order.
func (ts *TypedStores[T]) List() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	keys := make([]string, 0, len(ts.stores))
	for k := range ts.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stores manages TypedStores instances for different entity types.
type Stores struct {
	mu    sync.Mutex
	typed map[reflect.Type]any
}

// NewStores creates an empty Stores.
func NewStores() *Stores {
	return &Stores{
		typed: make(map[reflect.Type]any),
	}
}

// TypedStoresFor returns the TypedStores of type T, creating it if necessary.
func TypedStoresFor[T any](s *Stores) *TypedStores[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := reflect.TypeOf((*T)(nil)).Elem()
	if ts, exists := s.typed[typ]; exists {
		return ts.(*TypedStores[T])
	}

	ts := NewTypedStores[T]()
	s.typed[typ] = ts
	return ts
}

// Register registers a datastore for type T under key.
func Register[T any](s *Stores, key string, ds datastore.DataStore[T]) error {
	return TypedStoresFor[T](s).Register(key, ds)
}

// Get returns the datastore registered for type T under key.
func Get[T any](s *Stores, key string) (datastore.DataStore[T], error) {
	return TypedStoresFor[T](s).Get(key)
}

// Remove unregisters the datastore for type T under key.
func Remove[T any](s *Stores, key string) error {
	return TypedStoresFor[T](s).Remove(key)
}

// List returns the keys registered for type T.
func List[T any](s *Stores) []string {
	return TypedStoresFor[T](s).List()
}
