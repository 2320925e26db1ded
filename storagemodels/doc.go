/*
Package storagemodels defines the data structures shared by recordkit backends.

Key Types:

Lookup:
Column values a find filters on. Its sorted column set is the lookup shape
used to key cached plans:

	lookup := storagemodels.Lookup{"author_id": 1, "number": 2}
	cols := lookup.Columns()  // [author_id number]
	args := lookup.Args(cols) // [1 2]

KeyLookup and EntityLookup build primary key lookups from key values or from
a stored entity.

PlanStats:
Read-only view of a backend's plan cache, used to check that repeated lookups
reuse one plan per shape.
*/
package storagemodels
