package pg

import (
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate runs goose migrations from dir against the configured database.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "migrate: set dialect")
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return errors.Wrap(err, "migrate: open connection")
	}
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "migrate: goose up")
	}
	return nil
}
