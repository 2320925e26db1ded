/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The Store supports:
  - Single-table design through registered key maps
  - Macro-based key expansion (e.g., "AUTHOR#{author_id}")
  - Automatic EntityType injection for polymorphic storage
  - Cached lookup plans per column set and statement mode

Key Maps:
A key map registered for a type renders extra attributes from column values.
The PK and SK entries form the table key and may only reference primary key
columns; other entries are written alongside the item:

	registry.RegisterKeyMap[Book](map[string]string{
	    "PK":     "AUTHOR#{author_id}",  // Becomes "AUTHOR#1"
	    "SK":     "BOOK#{number}",
	    "GSI1PK": "TITLE#{title}",
	})

Without a key map the table key attributes are the primary key columns
themselves.

Lookups:
Primary key lookups use GetItem and other column sets use a filtered Scan.
With WithPreparedStatements every lookup runs as a parameterized PartiQL
SELECT through ExecuteStatement instead.
*/
package ddb
