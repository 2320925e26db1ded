/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"

	"github.com/suparena/recordkit/identity"
)

// KeyMapRegistry associates Go types with the attribute templates of a
// single-table DynamoDB layout, for example {"PK": "AUTHOR#{author_id}",
// "SK": "BOOK#{number}"}. Macros name columns of the type.

var (
	keyMapRegistry = make(map[reflect.Type]map[string]string)
	mu             sync.RWMutex
)

// RegisterKeyMap associates a Go type T with a given key map.
func RegisterKeyMap[T any](keyMap map[string]string) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	mu.Lock()
	defer mu.Unlock()
	keyMapRegistry[t] = keyMap
}

// GetKeyMap retrieves the key map for type T, if any.
func GetKeyMap[T any]() (map[string]string, bool) {
	return keyMapFor(reflect.TypeOf((*T)(nil)).Elem())
}

// KeyMapFor retrieves the key map registered for the model's type.
func KeyMapFor(m *identity.Model) (map[string]string, bool) {
	return keyMapFor(m.Type())
}

func keyMapFor(t reflect.Type) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	km, ok := keyMapRegistry[t]
	return km, ok
}
