package store

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrSchemaTooNew is returned when the database was written by a newer
// release that applied migrations this build does not know.
var ErrSchemaTooNew = errors.New("store: database schema is newer than this build")

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(migrationFiles, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		out = append(out, migration{
			version: strings.TrimSuffix(entry.Name(), ".sql"),
			sql:     string(content),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// migrate brings the schema up to date. Versions recorded in the database
// that this build does not ship are reported as ErrSchemaTooNew, unless
// reset is set, in which case every table is dropped and rebuilt.
func (s *Store) migrate(reset bool) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if err := s.db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []schemaMigration
	if err := s.db.Order("version").Find(&applied).Error; err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	known := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		known[m.version] = true
	}

	done := make(map[string]bool, len(applied))
	var unknown []string
	for _, a := range applied {
		done[a.Version] = true
		if !known[a.Version] {
			unknown = append(unknown, a.Version)
		}
	}

	if len(unknown) > 0 {
		if !reset {
			return fmt.Errorf("%w: unknown migrations %v", ErrSchemaTooNew, unknown)
		}
		s.logger.Warn().Strs("unknown", unknown).Msg("Schema is newer than this build, dropping all tables")
		if err := s.dropAll(); err != nil {
			return err
		}
		return s.migrate(false)
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.sql).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
			}
			record := schemaMigration{Version: m.version, AppliedAt: time.Now().UTC()}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		s.logger.Debug().Str("version", m.version).Msg("Applied migration")
	}

	return nil
}

func (s *Store) dropAll() error {
	tables, err := s.db.Migrator().GetTables()
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	for _, table := range tables {
		if strings.HasPrefix(table, "sqlite_") {
			continue
		}
		if err := s.db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
