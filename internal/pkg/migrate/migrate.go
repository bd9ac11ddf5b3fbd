// Package migrate applies embedded SQL migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Direction selects which way Run migrates.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

var (
	// ErrDSNRequired is returned when the database URL is empty.
	ErrDSNRequired = errors.New("migrate: database url is required")
	// ErrInvalidDirection is returned for anything but Up or Down.
	ErrInvalidDirection = errors.New("migrate: direction must be up or down")
)

// Run applies the migrations found under dir in src. Being already at the
// target version is not an error.
func Run(dsn string, src fs.FS, dir string, direction Direction) error {
	if strings.TrimSpace(dsn) == "" {
		return ErrDSNRequired
	}
	if direction != Up && direction != Down {
		return fmt.Errorf("%w, got %q", ErrInvalidDirection, direction)
	}

	sourceDriver, err := iofs.New(src, dir)
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if direction == Up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("database schema is up to date", "direction", direction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	slog.Info("database migrated", "direction", direction, "version", version, "dirty", dirty, "version_error", verr)
	return nil
}
