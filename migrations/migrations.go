// Package migrations embeds the SQL schema migrations and applies them
// with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// FS returns the embedded migration files.
func FS() fs.FS {
	return files
}

// Source returns a migration source over the embedded files.
func Source() (source.Driver, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return src, nil
}

// New binds the embedded migrations to db. The postgres driver holds an
// advisory lock for the duration of each run, so concurrent runs serialize.
// Closing the returned Migrate also closes db.
func New(db *sql.DB) (*migrate.Migrate, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. It reports whether anything ran.
func Up(m *migrate.Migrate) (bool, error) {
	return changed(m.Up())
}

// Down reverts steps migrations, newest first. steps <= 0 reverts all.
func Down(m *migrate.Migrate, steps int) (bool, error) {
	if steps <= 0 {
		return changed(m.Down())
	}
	return changed(m.Steps(-steps))
}

// Version returns the applied version, or 0 on an empty database.
func Version(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

func changed(err error) (bool, error) {
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
