package app

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taskman-dev/taskman/internal/config"
)

// MustMigratePostgres brings the schema up to date at startup. It uses
// a separate database/sql connection because the migrate postgres
// driver does not speak pgxpool.
func MustMigratePostgres() {
	cfg := config.Global()

	db, err := sql.Open("pgx", postgresConnURL(cfg.Postgres))
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to open migration connection")
		panic(err)
	}

	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{
		DatabaseName: cfg.Postgres.Database,
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to create migration driver")
		panic(err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		cfg.Migrate.SourceURL,
		cfg.Postgres.Database,
		driver,
	)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("source", cfg.Migrate.SourceURL).
			Msg("failed to create migration instance")
		panic(err)
	}
	defer func() { _, _ = m.Close() }()

	err = m.Up()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			globalLogger.Info().Msg("database schema is up to date")
			return
		}

		globalLogger.Error().
			Err(err).
			Msg("failed to run migrations")
		panic(err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to get migration version")
		panic(err)
	}
	globalLogger.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("ran migrations")
}
