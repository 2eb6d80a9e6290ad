// Package pgstore is a session.Backend on PostgreSQL (pgx).
//
//	pool, err := pg.Connect(ctx, cfg.Postgres) // integration/database/pg
//	...
//	backend := pgstore.New[UserSession](pool, pgstore.WithTTL(30*time.Minute))
//	if err := backend.Migrate(ctx); err != nil {
//		return err
//	}
//	store := session.NewIDStore[UserSession](backend)
//
// Rows hold the JSON value and an expiry timestamp. Expired rows are never
// returned; DeleteExpired purges them and is meant to run periodically.
package pgstore
