package store

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func configureGoose() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Migrate creates or upgrades the analytics schema. Tables are created
// with IF NOT EXISTS so an existing cricket_info.db is adopted in place.
func (s *Store) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if s.readOnly {
		return fmt.Errorf("cannot migrate a read-only store")
	}
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version, 0 when the store
// has never been migrated.
func (s *Store) SchemaVersion() (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if err := configureGoose(); err != nil {
		return 0, err
	}
	if s.readOnly {
		return s.readVersion()
	}
	return goose.GetDBVersion(s.db)
}

// readVersion reads goose's version table directly because GetDBVersion
// creates the table when it is missing.
func (s *Store) readVersion() (int64, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, goose.TableName()).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var version int64
	err = s.db.QueryRow(`SELECT COALESCE(MAX(version_id), 0) FROM ` + goose.TableName() + ` WHERE is_applied = 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}
