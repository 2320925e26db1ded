/*
Package stmtcache memoizes compiled lookup plans per lookup shape.

A shape is the tuple (entity type, lookup column set, prepared-statement
mode). Requesting a shape that is already cached reuses its plan; a new column
set or the other mode is a miss that grows the cache by exactly one entry:

	cache := stmtcache.New[*sql.Stmt]()
	key := stmtcache.PrimaryKey(model, true)
	stmt, err := cache.GetOrCreate(key, func() (*sql.Stmt, error) {
	    return db.PrepareContext(ctx, query)
	})

Plans for one mode live in their own bucket and never collide with or evict
the other mode's plans. The cache does no eviction; owners that need to drop
plans (for example on schema reload) build a new Cache.
*/
package stmtcache
