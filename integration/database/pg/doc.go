// Package pg bootstraps a pgx connection pool and applies goose migrations.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations(), cfg, log); err != nil {
//		return err
//	}
//
// Migrate expects a filesystem whose root holds goose SQL files; use fs.Sub
// to point it at a subdirectory of an embed.FS.
//
// WithTx and TxFromContext carry a pgx.Tx through a context so repositories
// can join a transaction started further up the stack.
package pg
