/*
Package datastore defines the core interface for recordkit's persistence layer.

The main interface is DataStore[T], which loads and stores entities of type T:

	type DataStore[T any] interface {
	    Find(ctx context.Context, key ...any) (*T, error)
	    FindBy(ctx context.Context, lookup storagemodels.Lookup) (*T, error)
	    Save(ctx context.Context, entity *T) error
	    Delete(ctx context.Context, entity *T) error
	    Plans() storagemodels.PlanStats
	}

Every load returns a fresh persisted instance, so two finds of the same row
give entities that are identity.Equal without being the same object. Lookups
go through a stmtcache.Cache keyed by lookup shape and prepared-statement mode.

Implementations:
  - sqlite: SQLite through database/sql, with prepared or plain statements
  - ddb: DynamoDB, with PartiQL statements or GetItem/Scan requests
  - mock: In-memory implementation for testing
*/
package datastore
