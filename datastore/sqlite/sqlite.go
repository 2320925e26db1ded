/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/logging"
	"github.com/suparena/recordkit/stmtcache"
	"github.com/suparena/recordkit/storagemodels"
)

// Plan is a compiled lookup. stmt is nil in unprepared mode, where the query
// text is sent with every call.
type Plan struct {
	query   string
	columns []string
	stmt    *sql.Stmt
}

// Query returns the lookup's SELECT text.
func (p *Plan) Query() string { return p.query }

// Prepared reports whether the plan holds a prepared statement.
func (p *Plan) Prepared() bool { return p.stmt != nil }

// Option configures a Store.
type Option func(*options)

type options struct {
	prepared bool
	plans    *stmtcache.Cache[*Plan]
}

// WithPreparedStatements switches lookups to cached prepared statements.
func WithPreparedStatements(enabled bool) Option {
	return func(o *options) {
		o.prepared = enabled
	}
}

// WithPlanCache shares a plan cache between stores on the same database.
func WithPlanCache(cache *stmtcache.Cache[*Plan]) Option {
	return func(o *options) {
		o.plans = cache
	}
}

// NewPlanCache returns a plan cache that can be shared through WithPlanCache.
func NewPlanCache() *stmtcache.Cache[*Plan] {
	return stmtcache.New[*Plan]()
}

// Store implements datastore.DataStore[T] on a SQLite database.
type Store[T any, PT identity.Ptr[T]] struct {
	db       *sql.DB
	model    *identity.Model
	prepared bool
	plans    *stmtcache.Cache[*Plan]
	// ownsPlans is set when the cache was created by New rather than shared.
	ownsPlans bool
}

// Open opens a SQLite database. In-memory databases are pinned to a single
// connection since every connection would otherwise see its own database.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// New creates a Store for T on db.
func New[T any, PT identity.Ptr[T]](db *sql.DB, opts ...Option) (*Store[T, PT], error) {
	m, err := identity.ModelFor[T]()
	if err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	plans, owns := o.plans, false
	if plans == nil {
		plans, owns = stmtcache.New[*Plan](), true
	}

	logging.L().Debug().Str("model", m.Name).Str("table", m.Table).Bool("prepared", o.prepared).Msg("sqlite store ready")
	return &Store[T, PT]{db: db, model: m, prepared: o.prepared, plans: plans, ownsPlans: owns}, nil
}

// Find retrieves an entity by primary key.
func (s *Store[T, PT]) Find(ctx context.Context, key ...any) (*T, error) {
	lookup, err := storagemodels.KeyLookup(s.model, key...)
	if err != nil {
		return nil, err
	}
	return s.FindBy(ctx, lookup)
}

// FindBy retrieves the first row matching lookup.
func (s *Store[T, PT]) FindBy(ctx context.Context, lookup storagemodels.Lookup) (*T, error) {
	if err := lookup.Validate(s.model); err != nil {
		return nil, err
	}

	key := stmtcache.NewKey(s.model, lookup.Columns(), s.prepared)
	p, err := s.plans.GetOrCreate(key, func() (*Plan, error) {
		return s.buildPlan(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	args := bindArgs(lookup.Args(p.columns))

	var row *sql.Row
	if p.stmt != nil {
		row = p.stmt.QueryRowContext(ctx, args...)
	} else {
		row = s.db.QueryRowContext(ctx, p.query, args...)
	}

	out := new(T)
	e := PT(out)
	dest, err := identity.FieldPointers(e, s.model.ColumnNames())
	if err != nil {
		return nil, err
	}
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError(s.model.Name, fmt.Sprint(args...))
		}
		return nil, fmt.Errorf("failed to scan %s: %w", s.model.Name, err)
	}
	identity.MarkPersisted(e)
	return out, nil
}

func (s *Store[T, PT]) buildPlan(ctx context.Context, key stmtcache.Key) (*Plan, error) {
	cols := key.ColumnList()
	conds := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = quote(c) + " = ?"
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1",
		quoteAll(s.model.ColumnNames()), quote(s.model.Table), strings.Join(conds, " AND "))

	p := &Plan{query: query, columns: cols}
	if key.Prepared {
		stmt, err := s.db.PrepareContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare lookup: %w", err)
		}
		p.stmt = stmt
	}
	return p, nil
}

// Save upserts the entity and marks it persisted. A single integer key left
// at zero on an unsaved entity is assigned by SQLite.
func (s *Store[T, PT]) Save(ctx context.Context, entity *T) error {
	e := PT(entity)
	values, err := identity.Values(e)
	if err != nil {
		return err
	}

	autoKey := s.autoKey(e, values)
	if !autoKey && !identity.KeyPresent(e) {
		return fmt.Errorf("save %s: %w", s.model.Name, errors.ErrNoPrimaryKey)
	}

	var cols []string
	var args []any
	for _, c := range s.model.Columns {
		if autoKey && c.PrimaryKey {
			continue
		}
		cols = append(cols, c.Name)
		args = append(args, values[c.Name])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(s.model.Table), quoteAll(cols), placeholders(len(cols)))
	if !autoKey {
		var updates []string
		for _, c := range s.model.Columns {
			if !c.PrimaryKey {
				updates = append(updates, quote(c.Name)+" = excluded."+quote(c.Name))
			}
		}
		if len(updates) == 0 {
			query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", quoteAll(s.model.PrimaryKey))
		} else {
			query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
				quoteAll(s.model.PrimaryKey), strings.Join(updates, ", "))
		}
	}

	res, err := s.db.ExecContext(ctx, query, bindArgs(args)...)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", s.model.Name, err)
	}
	if autoKey {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read assigned key: %w", err)
		}
		if err := identity.SetColumn(e, s.model.PrimaryKey[0], id); err != nil {
			return err
		}
	}

	identity.MarkPersisted(e)
	return nil
}

func (s *Store[T, PT]) autoKey(e PT, values map[string]any) bool {
	if s.model.Composite() || e.Identity().Persisted() {
		return false
	}
	col, _ := s.model.Column(s.model.PrimaryKey[0])
	switch col.Type.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
	default:
		return false
	}
	v, _ := identity.Normalize(values[col.Name])
	return v == int64(0)
}

// Delete removes a persisted entity.
func (s *Store[T, PT]) Delete(ctx context.Context, entity *T) error {
	e := PT(entity)
	if !e.Identity().Persisted() {
		return fmt.Errorf("delete %s: %w", s.model.Name, errors.ErrNotPersisted)
	}
	lookup, err := storagemodels.EntityLookup(e)
	if err != nil {
		return err
	}

	cols := lookup.Columns()
	conds := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = quote(c) + " = ?"
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", quote(s.model.Table), strings.Join(conds, " AND "))

	args := bindArgs(lookup.Args(cols))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.model.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFoundError(s.model.Name, fmt.Sprint(args...))
	}
	return nil
}

// Plans exposes the lookup plan cache.
func (s *Store[T, PT]) Plans() storagemodels.PlanStats {
	return s.plans
}

// Close releases the prepared statements of a plan cache the store created
// itself. A cache passed through WithPlanCache is left open for the other
// stores sharing it; release it with ClosePlans. The database is owned by the
// caller.
func (s *Store[T, PT]) Close() error {
	if !s.ownsPlans {
		return nil
	}
	return ClosePlans(s.plans)
}

// ClosePlans closes every prepared statement held by cache. Call it once, after
// the last store sharing the cache is done with it.
func ClosePlans(cache *stmtcache.Cache[*Plan]) error {
	var firstErr error
	cache.Range(func(_ stmtcache.Key, p *Plan) bool {
		if p.stmt != nil {
			if err := p.stmt.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return true
	})
	return firstErr
}
