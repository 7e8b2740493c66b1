// Package postgres archives messages in a postgres database.
//
// Removed messages are kept, and can still be read with Deleted.
package postgres

import (
	"context"
	"database/sql"
	"embed"

	"emperror.dev/errors"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/store"

	// pgx driver for migrations
	_ "github.com/jackc/pgx/v4/stdlib"
)

// sq is a squirrel builder for postgres
var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var _ store.MessageStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

// New runs any pending migrations and connects to the database.
func New(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*Store, error) {
	if logger == nil {
		logger = log.Named("postgres")
	}

	n, err := Migrate(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}
	if n != 0 {
		logger.Infof("Performed %v migrations!", n)
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	return &Store{pool: pool, log: logger}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

//go:embed migrations
var fs embed.FS

// Migrate runs all of the migrations in migrations/, and returns how many were applied.
func Migrate(dsn string) (n int, err error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, errors.Wrap(err, "opening database")
	}

	// only used for migrations, everything else goes through pgx's native pool
	defer db.Close()

	err = db.Ping()
	if err != nil {
		return 0, errors.Wrap(err, "pinging database")
	}

	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: fs,
		Root:       "migrations",
	}

	migrate.SetTable("cordial_migrations")

	n, err = migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "running migrations")
	}
	return n, nil
}
