/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"slices"
	"strings"

	"github.com/suparena/recordkit/stmtcache"
)

type planKind int

const (
	// getPlan reads one item by its table key.
	getPlan planKind = iota
	// scanPlan filters the table on arbitrary columns.
	scanPlan
	// statementPlan runs a parameterized PartiQL SELECT.
	statementPlan
)

func (k planKind) String() string {
	switch k {
	case getPlan:
		return "get"
	case scanPlan:
		return "scan"
	default:
		return "statement"
	}
}

// plan is a compiled lookup shape. Only the fields of its kind are set.
type plan struct {
	kind    planKind
	columns []string

	// scanPlan
	filter string
	names  map[string]string

	// statementPlan
	statement string
}

func (d *Store[T, PT]) buildPlan(key stmtcache.Key) (*plan, error) {
	cols := key.ColumnList()

	if key.Prepared {
		conds := make([]string, 0, len(cols)+1)
		conds = append(conds, fmt.Sprintf("%q = ?", EntityTypeAttribute))
		for _, c := range cols {
			conds = append(conds, fmt.Sprintf("%q = ?", c))
		}
		return &plan{
			kind:      statementPlan,
			columns:   cols,
			statement: fmt.Sprintf("SELECT * FROM %q WHERE %s", d.tableName, strings.Join(conds, " AND ")),
		}, nil
	}

	if d.isPrimaryKey(cols) {
		return &plan{kind: getPlan, columns: cols}, nil
	}

	names := map[string]string{"#t": EntityTypeAttribute}
	conds := []string{"#t = :t"}
	for i, c := range cols {
		names[fmt.Sprintf("#c%d", i)] = c
		conds = append(conds, fmt.Sprintf("#c%d = :v%d", i, i))
	}
	return &plan{
		kind:    scanPlan,
		columns: cols,
		filter:  strings.Join(conds, " AND "),
		names:   names,
	}, nil
}

func (d *Store[T, PT]) isPrimaryKey(cols []string) bool {
	if len(cols) != len(d.model.PrimaryKey) {
		return false
	}
	for _, c := range cols {
		if !slices.Contains(d.model.PrimaryKey, c) {
			return false
		}
	}
	return true
}
