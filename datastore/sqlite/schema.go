/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/logging"
)

var (
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
)

// CreateTable creates the table backing model if it does not exist.
func CreateTable(ctx context.Context, db *sql.DB, model *identity.Model) error {
	ddl := TableDDL(model)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", model.Table, err)
	}
	logging.L().Debug().Str("table", model.Table).Msg("table ready")
	return nil
}

// TableDDL renders the CREATE TABLE statement for model.
func TableDDL(model *identity.Model) string {
	defs := make([]string, 0, len(model.Columns)+1)
	for _, c := range model.Columns {
		def := quote(c.Name) + " " + columnType(c.Type)
		if c.PrimaryKey {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteAll(model.PrimaryKey)))
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(model.Table), strings.Join(defs, ",\n\t"))
}

// columnType maps a Go field type onto a SQLite type affinity.
func columnType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return "DATETIME"
	}
	if t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType) {
		return "TEXT"
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "INTEGER"
	case reflect.Float32, reflect.Float64:
		return "REAL"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "BLOB"
		}
	}
	return "TEXT"
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteAll(idents []string) string {
	q := make([]string, len(idents))
	for i, id := range idents {
		q[i] = quote(id)
	}
	return strings.Join(q, ", ")
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// bindArgs converts column values into driver values: pointers are followed,
// nulls become nil and integers widen to int64.
func bindArgs(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if nv, ok := identity.Normalize(v); ok {
			out[i] = nv
		}
	}
	return out
}
