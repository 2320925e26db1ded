/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/suparena/recordkit/errors"
)

// Tabler lets a type override the table name derived from its Go name.
type Tabler interface {
	TableName() string
}

// DefaultKeyer is implemented by types whose new instances receive a
// placeholder primary key. DefaultKey is called once per type; composite key
// types return a []any with one value per key column.
type DefaultKeyer interface {
	DefaultKey() (any, error)
}

// Column describes one mapped field.
type Column struct {
	Name       string
	PrimaryKey bool
	Type       reflect.Type
	index      []int
}

// Model is the mapping metadata of one Go struct type.
type Model struct {
	// Name is the type's identity tag (the Go type name).
	Name string
	// Table is the storage table name.
	Table string
	// Columns are the mapped fields in declaration order.
	Columns []Column
	// PrimaryKey lists the key columns in declaration order.
	PrimaryKey []string

	typ        reflect.Type
	byName     map[string]int
	defaultKey func() (any, error)

	once       sync.Once
	resolved   any
	resolveErr error
}

// Type returns the Go struct type the model was built from.
func (m *Model) Type() reflect.Type { return m.typ }

// TypeKey identifies the model's Go type uniquely within the process.
func (m *Model) TypeKey() string {
	return m.typ.PkgPath() + "." + m.typ.Name()
}

// Column returns the named column.
func (m *Model) Column(name string) (Column, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Column{}, false
	}
	return m.Columns[i], true
}

// ColumnNames returns every column name in schema order.
func (m *Model) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// Composite reports whether the primary key spans more than one column.
func (m *Model) Composite() bool { return len(m.PrimaryKey) > 1 }

var (
	modelRegistry = make(map[reflect.Type]*Model)
	mu            sync.RWMutex
	entityType    = reflect.TypeOf((*Entity)(nil)).Elem()
)

// ModelFor returns the model of type T, parsing it on first use.
func ModelFor[T any]() (*Model, error) {
	return modelForType(reflect.TypeOf((*T)(nil)).Elem())
}

// ModelOf returns the model of the entity's concrete type.
func ModelOf(e Entity) (*Model, error) {
	t := reflect.TypeOf(e)
	if t == nil || t.Kind() != reflect.Pointer {
		return nil, errors.NewModelError(typeName(t), "entities must be pointers to structs")
	}
	return modelForType(t.Elem())
}

func modelForType(t reflect.Type) (*Model, error) {
	mu.RLock()
	m, ok := modelRegistry[t]
	mu.RUnlock()
	if ok {
		return m, nil
	}

	parsed, err := parseModel(t)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	// Another goroutine may have parsed it meanwhile; keep the first so model pointers stay unique.
	if m, ok := modelRegistry[t]; ok {
		return m, nil
	}
	modelRegistry[t] = parsed
	return parsed, nil
}

func parseModel(t reflect.Type) (*Model, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.NewModelError(typeName(t), "not a struct type")
	}
	if !reflect.PointerTo(t).Implements(entityType) {
		return nil, errors.NewModelError(t.Name(), "does not embed identity.Record")
	}

	m := &Model{
		Name:   t.Name(),
		typ:    t,
		byName: make(map[string]int),
	}

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = snakeCase(f.Name)
		}
		if _, dup := m.byName[name]; dup {
			return nil, errors.NewModelError(t.Name(), "duplicate column "+name)
		}
		col := Column{
			Name:       name,
			PrimaryKey: hasOption(opts, "pk"),
			Type:       f.Type,
			index:      f.Index,
		}
		m.byName[name] = len(m.Columns)
		m.Columns = append(m.Columns, col)
		if col.PrimaryKey {
			m.PrimaryKey = append(m.PrimaryKey, name)
		}
	}

	if len(m.PrimaryKey) == 0 {
		if _, ok := m.byName["id"]; !ok {
			return nil, errors.NewModelError(t.Name(), "no primary key column")
		}
		m.PrimaryKey = []string{"id"}
		m.Columns[m.byName["id"]].PrimaryKey = true
	}

	proto := reflect.New(t).Interface()
	if tb, ok := proto.(Tabler); ok {
		m.Table = tb.TableName()
	} else {
		m.Table = snakeCase(t.Name()) + "s"
	}
	if dk, ok := proto.(DefaultKeyer); ok {
		m.defaultKey = dk.DefaultKey
	}
	return m, nil
}

// ResolveDefaultKey returns the placeholder key new instances of m receive.
// The value is computed once per type; ok is false when the type declares no
// default key policy.
func ResolveDefaultKey(m *Model) (value any, ok bool, err error) {
	if m.defaultKey == nil {
		return nil, false, nil
	}
	m.once.Do(func() {
		m.resolved, m.resolveErr = m.defaultKey()
	})
	if m.resolveErr != nil {
		return nil, true, m.resolveErr
	}
	return m.resolved, true, nil
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}

// snakeCase turns AuthorID into author_id.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
