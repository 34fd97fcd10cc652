// Package pg opens PostgreSQL connections for the session engine's postgres
// dialect using the pgx/v5 driver.
//
// Connect builds a *pgxpool.Pool from Config and retries with a linear
// back-off until the server answers a ping. OpenDB wraps that pool in a
// *sql.DB through pgx's stdlib bridge so the engine can run the same
// database/sql code path it uses for SQLite.
//
//	db, pool, err := pg.OpenDB(ctx, pg.Config{ConnectionString: url, RetryAttempts: 3})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//	defer db.Close()
//
// Error helpers classify driver errors by SQLSTATE without importing pgconn
// at call sites.
package pg
