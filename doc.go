/*
Package recordkit maps Go structs onto storage rows and gives loaded records a
stable identity.

Entities embed identity.Record and describe their columns with db tags:

	type Book struct {
	    identity.Record
	    AuthorID *int64 `db:"author_id,pk"`
	    Number   *int64 `db:"number,pk"`
	    Title    string `db:"title"`
	}

Two records are equal when they are the same instance, or when both are
persisted records of the same type whose complete primary keys are equal.
identity.Hash is consistent with that equality, so records can be collected in
an identity.Set or used as map keys through their hash.

Lookups compile into plans cached per entity type, column set and
prepared-statement mode (package stmtcache); each plan is built once.

Backends:
  - datastore/sqlite: SQLite through modernc.org/sqlite
  - datastore/ddb: DynamoDB, optionally in a single-table layout
  - datastore/mock: in-memory, for tests and the memory backend

Basic Usage:

	cfg, _ := config.Load("recordkit.yaml")
	session, _ := recordkit.Open(ctx, cfg)
	defer session.Close()

	books, _ := recordkit.StoreFor[Book](ctx, session)
	_ = books.Save(ctx, &Book{AuthorID: ptr(1), Number: ptr(2), Title: "Refactoring"})

	a, _ := books.Find(ctx, 1, 2)
	b, _ := books.Find(ctx, 1, 2)
	identity.Equal(a, b) // true
*/
package recordkit
