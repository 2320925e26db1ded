/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sync"

	"github.com/suparena/recordkit/identity"
)

// Factory returns a new, unsaved instance of a registered entity type.
type Factory func() identity.Entity

// typeRegistry maps an entity type name (like "Book") to its factory.
var (
	typeRegistry = make(map[string]Factory)
	typeMu       sync.RWMutex
)

// RegisterType registers a factory for a given type name.
// If a type is already registered for the given name, it panics to prevent accidental overrides.
func RegisterType(name string, fn Factory) {
	typeMu.Lock()
	defer typeMu.Unlock()

	if _, exists := typeRegistry[name]; exists {
		panic(fmt.Sprintf("type registry: type %q already registered", name))
	}
	typeRegistry[name] = fn
}

// Register registers T under its model name and returns that name.
func Register[T any, PT identity.Ptr[T]]() (string, error) {
	m, err := identity.ModelFor[T]()
	if err != nil {
		return "", err
	}
	RegisterType(m.Name, func() identity.Entity { return PT(new(T)) })
	return m.Name, nil
}

// GetFactory returns the registered factory for the given type name.
// If no factory is registered, it returns an error.
func GetFactory(name string) (Factory, error) {
	typeMu.RLock()
	defer typeMu.RUnlock()

	fn, ok := typeRegistry[name]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for name %q", name)
	}
	return fn, nil
}

// NewEntity builds an empty instance of the named type.
func NewEntity(name string) (identity.Entity, error) {
	fn, err := GetFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}
