package database

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

// Open connects to the record store (hosted Postgres) and verifies the
// connection with a ping.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", conf.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	return db, nil
}
