// Package pg opens PostgreSQL connection pools with pgx and carries
// transactions through contexts.
//
//	pool, err := pg.Connect(ctx, pg.Config{ConnectionString: os.Getenv("PG_CONN_URL")})
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
// WithTx stores a pgx.Tx in a context and TxFromContext reads it back, so
// repositories can join a transaction started by their caller without changing
// their signatures:
//
//	err := pg.InTx(ctx, pool, func(ctx context.Context) error {
//		if err := users.Save(ctx, u); err != nil {
//			return err
//		}
//		return sessions.Store(ctx, id, sess) // same transaction
//	})
//
// InTx commits when the callback returns nil and rolls back otherwise. Nested
// calls join the outer transaction.
//
// Errors wrap ErrEmptyConnectionString, ErrFailedToParseDBConfig,
// ErrFailedToOpenDBConnection, ErrBeginTx or ErrHealthcheckFailed with the pgx cause.
package pg
