/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Describer replaces the default description of an entity.
type Describer interface {
	Describe() string
}

// Describe renders e for consoles and logs. Types implementing Describer
// control the whole output; others are shown as
// #<Book author_id: 1, number: 2, title: "Refactoring">.
func Describe(e Entity) string {
	if d, ok := e.(Describer); ok {
		return d.Describe()
	}
	m, err := ModelOf(e)
	if err != nil {
		return fmt.Sprintf("#<%T>", e)
	}

	v := reflect.ValueOf(e).Elem()
	var b strings.Builder
	b.WriteString("#<")
	b.WriteString(m.Name)
	for i, c := range m.Columns {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteString(": ")
		b.WriteString(displayValue(v.FieldByIndex(c.index)))
	}
	b.WriteByte('>')
	return b.String()
}

func displayValue(v reflect.Value) string {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "nil"
		}
		v = v.Elem()
	}
	switch x := v.Interface().(type) {
	case time.Time:
		return fmt.Sprintf("%q", x.UTC().Format(time.RFC3339Nano))
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return "nil"
		}
		return displayValue(reflect.ValueOf(dv))
	case fmt.Stringer:
		return fmt.Sprintf("%q", x.String())
	case []byte:
		return fmt.Sprintf("%q", string(x))
	}
	if v.Kind() == reflect.String {
		return fmt.Sprintf("%q", v.String())
	}
	return fmt.Sprintf("%v", v.Interface())
}
