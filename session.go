/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordkit

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/suparena/recordkit/config"
	"github.com/suparena/recordkit/datastore"
	"github.com/suparena/recordkit/datastore/ddb"
	"github.com/suparena/recordkit/datastore/mock"
	"github.com/suparena/recordkit/datastore/sqlite"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/logging"
	"github.com/suparena/recordkit/stmtcache"
	"github.com/suparena/recordkit/storagemodels"
)

// Session opens typed datastores on the backend selected by a Config. Stores
// are created on first use and registered in the session's Stores under the
// backend name.
type Session struct {
	cfg    config.Config
	stores *Stores

	db          *sql.DB
	sqlitePlans *stmtcache.Cache[*sqlite.Plan]
	dynamo      ddb.API

	mu      sync.Mutex
	closers []io.Closer
}

// SessionOption configures Open.
type SessionOption func(*Session)

// WithDynamoDBClient supplies the DynamoDB client instead of building one
// from the AWS settings.
func WithDynamoDBClient(client ddb.API) SessionOption {
	return func(s *Session) {
		s.dynamo = client
	}
}

// WithDB supplies the SQLite database instead of opening the configured DSN.
// The session does not close it.
func WithDB(db *sql.DB) SessionOption {
	return func(s *Session) {
		s.db = db
	}
}

// Open validates cfg and connects to its backend.
func Open(ctx context.Context, cfg config.Config, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{cfg: cfg, stores: NewStores()}
	for _, opt := range opts {
		opt(s)
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		if s.db == nil {
			db, err := sqlite.Open(cfg.SQLite.DSN)
			if err != nil {
				return nil, err
			}
			s.db = db
			s.closers = append(s.closers, db)
		}
		s.sqlitePlans = sqlite.NewPlanCache()
	case config.BackendDynamoDB:
		if s.dynamo == nil {
			client, err := ddb.NewDynamoDBClient(ctx, cfg.AWS.AccessKey, cfg.AWS.SecretKey, cfg.AWS.Region, cfg.AWS.Endpoint)
			if err != nil {
				return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
			}
			s.dynamo = client
		}
	}

	logging.L().Info().Str("backend", cfg.Backend).Bool("prepared", cfg.PreparedStatements).Msg("session opened")
	return s, nil
}

// Config returns the session's configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Stores returns the registry holding the session's datastores.
func (s *Session) Stores() *Stores { return s.stores }

// SQLitePlans exposes the plan cache shared by the session's SQLite stores.
// It is nil for other backends.
func (s *Session) SQLitePlans() storagemodels.PlanStats {
	if s.sqlitePlans == nil {
		return nil
	}
	return s.sqlitePlans
}

// StoreFor returns the session's datastore for T, creating it on first use.
// SQLite tables are created if missing.
func StoreFor[T any, PT identity.Ptr[T]](ctx context.Context, s *Session) (datastore.DataStore[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, err := Get[T](s.stores, s.cfg.Backend); err == nil {
		return ds, nil
	}

	m, err := identity.ModelFor[T]()
	if err != nil {
		return nil, err
	}
	prepared := s.cfg.PreparedStatements

	var ds datastore.DataStore[T]
	switch s.cfg.Backend {
	case config.BackendMemory:
		ds = mock.New[T, PT]().WithPreparedStatements(prepared)
	case config.BackendSQLite:
		if err := sqlite.CreateTable(ctx, s.db, m); err != nil {
			return nil, err
		}
		st, err := sqlite.New[T, PT](s.db, sqlite.WithPreparedStatements(prepared), sqlite.WithPlanCache(s.sqlitePlans))
		if err != nil {
			return nil, err
		}
		ds = st
	case config.BackendDynamoDB:
		st, err := ddb.New[T, PT](s.dynamo, s.cfg.AWS.Table, ddb.WithPreparedStatements(prepared))
		if err != nil {
			return nil, err
		}
		ds = st
	default:
		return nil, fmt.Errorf("unsupported backend %q", s.cfg.Backend)
	}

	if err := Register[T](s.stores, s.cfg.Backend, ds); err != nil {
		return nil, err
	}
	logging.L().Debug().Str("model", m.Name).Str("backend", s.cfg.Backend).Msg("datastore created")
	return ds, nil
}

// Close releases prepared statements and the database the session opened.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.sqlitePlans != nil {
		// Statements close before the database does.
		firstErr = sqlite.ClosePlans(s.sqlitePlans)
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
