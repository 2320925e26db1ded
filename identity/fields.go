/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/suparena/recordkit/errors"
)

// Values returns the entity's column values keyed by column name.
func Values(e Entity) (map[string]any, error) {
	m, err := ModelOf(e)
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(e).Elem()
	out := make(map[string]any, len(m.Columns))
	for _, c := range m.Columns {
		out[c.Name] = v.FieldByIndex(c.index).Interface()
	}
	return out, nil
}

// FieldPointers returns pointers to the fields backing columns, in the given
// order, ready to be handed to a row scanner.
func FieldPointers(e Entity, columns []string) ([]any, error) {
	m, err := ModelOf(e)
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(e).Elem()
	ptrs := make([]any, len(columns))
	for i, name := range columns {
		c, ok := m.Column(name)
		if !ok {
			return nil, errors.NewModelError(m.Name, "unknown column "+name)
		}
		ptrs[i] = v.FieldByIndex(c.index).Addr().Interface()
	}
	return ptrs, nil
}

// SetColumn assigns value to the field backing column, converting between
// compatible kinds and going through sql.Scanner when the field implements it.
func SetColumn(e Entity, column string, value any) error {
	m, err := ModelOf(e)
	if err != nil {
		return err
	}
	c, ok := m.Column(column)
	if !ok {
		return errors.NewModelError(m.Name, "unknown column "+column)
	}
	field := reflect.ValueOf(e).Elem().FieldByIndex(c.index)

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	rv := reflect.ValueOf(value)
	target := field.Type()
	if rv.Type().AssignableTo(target) {
		field.Set(rv)
		return nil
	}
	if scanner, ok := field.Addr().Interface().(sql.Scanner); ok {
		return scanner.Scan(value)
	}
	if target.Kind() == reflect.Pointer {
		elem := target.Elem()
		p := reflect.New(elem)
		if rv.Type().AssignableTo(elem) {
			p.Elem().Set(rv)
			field.Set(p)
			return nil
		}
		if scanner, ok := p.Interface().(sql.Scanner); ok {
			if err := scanner.Scan(value); err != nil {
				return err
			}
			field.Set(p)
			return nil
		}
		if !convertible(rv.Type(), elem) {
			return fmt.Errorf("set %s.%s: cannot use %T as %s", m.Name, column, value, target)
		}
		p.Elem().Set(rv.Convert(elem))
		field.Set(p)
		return nil
	}
	if !convertible(rv.Type(), target) {
		return fmt.Errorf("set %s.%s: cannot use %T as %s", m.Name, column, value, target)
	}
	field.Set(rv.Convert(target))
	return nil
}

// convertible is reflect's ConvertibleTo without the integer to string rune
// conversion.
func convertible(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return from.Kind() == reflect.Slice && from.Elem().Kind() == reflect.Uint8
	}
	return from.ConvertibleTo(to)
}
