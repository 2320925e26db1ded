// Package sqlite implements datastore.DataStore on SQLite through the pure Go
// modernc.org/sqlite driver.
//
// Lookups are compiled into plans held in a stmtcache.Cache. With prepared
// statements enabled a plan owns a *sql.Stmt prepared once per lookup shape;
// otherwise it only carries the SELECT text. Close releases the statements.
//
//	db, _ := sqlite.Open(":memory:")
//	_ = sqlite.CreateTable(ctx, db, model)
//	books, _ := sqlite.New[Book](db, sqlite.WithPreparedStatements(true))
//	book, err := books.Find(ctx, 1, 2)
package sqlite
