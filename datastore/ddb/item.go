/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/registry"
)

// EntityTypeAttribute tags every item with the model name so several types can
// share one table.
const EntityTypeAttribute = "EntityType"

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros renders each key map template, replacing {column} with the
// column's value. A macro naming an unknown or null column is an error.
func expandMacros(keyMap map[string]string, values map[string]any) (map[string]string, error) {
	res := make(map[string]string, len(keyMap))
	for attr, template := range keyMap {
		var missing string
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			col := strings.Trim(macro, "{}")
			v, ok := values[col]
			if !ok {
				missing = col
				return ""
			}
			s, ok := macroValue(v)
			if !ok {
				missing = col
			}
			return s
		})
		if missing != "" {
			return nil, fmt.Errorf("expand %s: no value for {%s}", attr, missing)
		}
		res[attr] = expanded
	}
	return res, nil
}

// checkMacros verifies that every macro in keyMap names a column of m.
func checkMacros(m *identity.Model, keyMap map[string]string) error {
	for attr, template := range keyMap {
		for _, match := range macroPattern.FindAllStringSubmatch(template, -1) {
			if _, ok := m.Column(match[1]); !ok {
				return errors.NewModelError(m.Name, fmt.Sprintf("key map %s references unknown column %q", attr, match[1]))
			}
		}
	}
	return nil
}

func macroValue(v any) (string, bool) {
	nv, ok := identity.Normalize(v)
	if !ok {
		return "", false
	}
	switch tv := nv.(type) {
	case string:
		return tv, true
	case int64:
		return strconv.FormatInt(tv, 10), true
	case bool:
		return strconv.FormatBool(tv), true
	default:
		return fmt.Sprint(tv), true
	}
}

// encodeItem builds the stored item: every column, the entity type tag and
// the expanded key map attributes.
func encodeItem(m *identity.Model, keyMap map[string]string, e identity.Entity) (map[string]types.AttributeValue, error) {
	values, err := identity.Values(e)
	if err != nil {
		return nil, err
	}
	plain := make(map[string]any, len(values)+1)
	for col, v := range values {
		nv, _ := identity.Normalize(v)
		plain[col] = nv
	}
	plain[EntityTypeAttribute] = m.Name

	item, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", m.Name, err)
	}

	if len(keyMap) > 0 {
		expanded, err := expandMacros(keyMap, values)
		if err != nil {
			return nil, err
		}
		for k, v := range expanded {
			item[k] = &types.AttributeValueMemberS{Value: v}
		}
	}
	return item, nil
}

// decodeItem fills a fresh entity from the column attributes of item.
func decodeItem(m *identity.Model, item map[string]types.AttributeValue, e identity.Entity) error {
	for _, c := range m.Columns {
		av, ok := item[c.Name]
		if !ok {
			continue
		}
		v, err := attributeValue(av, c.Type)
		if err != nil {
			return fmt.Errorf("decode %s.%s: %w", m.Name, c.Name, err)
		}
		if err := identity.SetColumn(e, c.Name, v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEntity loads an item of any registered type, picking the type from
// its EntityType attribute. The result is marked persisted.
func DecodeEntity(item map[string]types.AttributeValue) (identity.Entity, error) {
	et, ok := item[EntityTypeAttribute].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.NewValidationError(EntityTypeAttribute, "item has no entity type")
	}
	e, err := registry.NewEntity(et.Value)
	if err != nil {
		return nil, err
	}
	m, err := identity.ModelOf(e)
	if err != nil {
		return nil, err
	}
	if err := decodeItem(m, item, e); err != nil {
		return nil, err
	}
	identity.MarkPersisted(e)
	return e, nil
}

// attributeValue converts one attribute into a Go value suited to a field of
// type target. Numbers keep integer precision when the field is integral.
func attributeValue(av types.AttributeValue, target reflect.Type) (any, error) {
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	switch tv := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberN:
		switch target.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.ParseInt(tv.Value, 10, 64)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.ParseUint(tv.Value, 10, 64)
		default:
			return strconv.ParseFloat(tv.Value, 64)
		}
	default:
		var v any
		if err := attributevalue.Unmarshal(av, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
