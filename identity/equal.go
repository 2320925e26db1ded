/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"bytes"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"reflect"
	"time"

	"github.com/suparena/recordkit/errors"
)

// Equal reports whether a and b denote the same stored row: both persisted,
// of the same concrete type, with complete and pairwise equal primary keys.
// An entity without a durable identity is equal only to itself. Nil entities,
// including typed nil pointers, are equal only to each other.
func Equal(a, b Entity) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if a.Identity() == b.Identity() {
		return true
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	ka, ok := durableKey(a)
	if !ok {
		return false
	}
	kb, ok := durableKey(b)
	if !ok {
		return false
	}
	for i := range ka {
		if !valuesEqual(ka[i], kb[i]) {
			return false
		}
	}
	return true
}

// EqualAny is Equal over arbitrary values. It reports an incomparable type
// error when either operand is not an Entity.
func EqualAny(a, b any) (bool, error) {
	ea, okA := a.(Entity)
	eb, okB := b.(Entity)
	if !okA || !okB {
		return false, errors.NewIncomparableError(a, b)
	}
	return Equal(ea, eb), nil
}

// Hash returns a hash code consistent with Equal. Entities with a durable key
// hash by type and key values; all others hash by their instance token.
func Hash(e Entity) uint64 {
	h := fnv.New64a()
	if isNil(e) {
		h.Write([]byte("nil"))
		return h.Sum64()
	}
	if key, ok := durableKey(e); ok {
		t := reflect.TypeOf(e).Elem()
		fmt.Fprintf(h, "%s.%s", t.PkgPath(), t.Name())
		for _, v := range key {
			fmt.Fprintf(h, "|%T=%v", v, v)
		}
		return h.Sum64()
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], e.Identity().instanceToken())
	h.Write([]byte("unsaved|"))
	h.Write(buf[:])
	return h.Sum64()
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	rv := reflect.ValueOf(e)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// KeyPresent reports whether every primary key column holds a non-null value.
func KeyPresent(e Entity) bool {
	if isNil(e) {
		return false
	}
	m, err := ModelOf(e)
	if err != nil {
		return false
	}
	_, ok := keyValues(e, m)
	return ok
}

// KeyValues returns the normalized primary key values in key order. Null
// columns are reported as nil.
func KeyValues(e Entity) ([]any, error) {
	m, err := ModelOf(e)
	if err != nil {
		return nil, err
	}
	if isNil(e) {
		return nil, errors.NewValidationError("", "nil "+m.Name)
	}
	vals, _ := keyValues(e, m)
	return vals, nil
}

// durableKey returns the key of a persisted entity whose key is present.
func durableKey(e Entity) ([]any, bool) {
	if isNil(e) || !e.Identity().Persisted() {
		return nil, false
	}
	m, err := ModelOf(e)
	if err != nil {
		return nil, false
	}
	return keyValues(e, m)
}

func keyValues(e Entity, m *Model) ([]any, bool) {
	v := reflect.ValueOf(e).Elem()
	vals := make([]any, len(m.PrimaryKey))
	present := true
	for i, name := range m.PrimaryKey {
		col := m.Columns[m.byName[name]]
		nv, ok := Normalize(v.FieldByIndex(col.index).Interface())
		if !ok {
			present = false
		}
		vals[i] = nv
	}
	return vals, present
}

// Normalize maps a column value to its canonical comparable form and reports
// whether it is non-null. Signed integers widen to int64, unsigned integers to
// int64 when they fit, floats to float64 with negative zero folded into zero,
// byte slices to string and times to UTC. Pointers are followed and driver.Valuer values are unwrapped.
func Normalize(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
	}
	if tm, ok := v.(time.Time); ok {
		return tm.UTC(), true
	}
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return v, true
		}
		return Normalize(dv)
	}
	if rv.Kind() == reflect.Pointer {
		return Normalize(rv.Elem().Interface())
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), true
		}
		return u, true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == 0 {
			// -0 compares equal to 0 and must hash the same.
			f = 0
		}
		return f, true
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return nil, false
			}
			return string(rv.Bytes()), true
		}
	case reflect.Interface, reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
	}
	return v, true
}

// SameValue reports whether two column values are equal after normalization.
// Null never equals anything, including another null.
func SameValue(a, b any) bool {
	na, okA := Normalize(a)
	nb, okB := Normalize(b)
	return okA && okB && valuesEqual(na, nb)
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta != nil && ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
