package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

var migrateRunFunc = runMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrateRunFunc(args[0], cli.db, arguments...)
}

func runMigration(command string, db *sqlx.DB, args ...string) error {
	driver, err := postgres.WithInstance(db.DB, new(postgres.Config))
	if err != nil {
		return errors.Wrap(err, "creating migration driver")
	}
	src := "file://" + filepath.Join(core.Conf.WorkDir, "storage", "database", "migrations")
	m, err := migrate.NewWithDatabaseInstance(src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "creating migrator")
	}

	switch command {
	case "up":
		err = m.Up()
	case "down": // one step back
		err = m.Steps(-1)
	case "reset":
		err = m.Down()
	case "version":
		v, dirty, vErr := m.Version()
		if vErr == migrate.ErrNilVersion {
			fmt.Println("version: none")
			return nil
		}
		if vErr != nil {
			return vErr
		}
		fmt.Printf("version: %d (dirty: %t)\n", v, dirty)
		return nil
	case "force":
		if len(args) == 0 {
			return fmt.Errorf("force must be of form: migrate force VERSION")
		}
		v, pErr := strconv.Atoi(args[0])
		if pErr != nil {
			return fmt.Errorf("version must be a number (got '%s')", args[0])
		}
		err = m.Force(v)
	default:
		return fmt.Errorf("%q: no such command", command)
	}

	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}
