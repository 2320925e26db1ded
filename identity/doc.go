/*
Package identity defines what makes two mapped records the same record.

Entities are structs that embed Record and map their fields to columns with
the db tag. Primary key columns carry the pk option; a struct without one uses
its id column:

	type Book struct {
	    identity.Record
	    AuthorID *int64 `db:"author_id,pk"`
	    Number   *int64 `db:"number,pk"`
	    Title    string `db:"title"`
	}

Identity rules:
  - An entity that has not been persisted, or whose key has a null column, is
    equal only to itself and hashes by a per-instance token.
  - Persisted entities are equal when they share a concrete type and all key
    values; Hash is consistent with Equal.
  - Types implementing DefaultKeyer hand the same placeholder key to every
    instance built with New. The placeholder never confers identity.

Storage backends call MarkPersisted once a write is confirmed or a row is
loaded. Describe renders entities for consoles; types implementing Describer
replace the default output.
*/
package identity
