package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationResult is the schema state after Migrate.
type MigrationResult struct {
	Version uint
	Dirty   bool
	// Changed is false when the schema was already where it was asked to go.
	Changed bool
}

// Migrate applies the migrations in dir to the database at dsn. Steps of 0
// moves all the way in the given direction.
func Migrate(dsn, dir string, d Direction, steps int) (MigrationResult, error) {
	if d != Up && d != Down {
		return MigrationResult{}, fmt.Errorf("invalid migration direction %q", d)
	}
	if steps < 0 {
		return MigrationResult{}, fmt.Errorf("negative migration steps %d", steps)
	}
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case steps > 0 && d == Up:
		err = m.Steps(steps)
	case steps > 0:
		err = m.Steps(-steps)
	case d == Up:
		err = m.Up()
	default:
		err = m.Down()
	}
	res := MigrationResult{Changed: true}
	if errors.Is(err, migrate.ErrNoChange) {
		res.Changed, err = false, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("migrating %s: %w", d, err)
	}

	res.Version, res.Dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		err = nil
	}
	return res, err
}
