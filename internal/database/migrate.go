package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"clubhouse/internal/middleware"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migration is one numbered pair of up/down scripts, e.g. 000001_init.up.sql.
type Migration struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Up      string `json:"-"`
	Down    string `json:"-"`
}

// ID is the file stem the migration was loaded from.
func (m Migration) ID() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// MigrationState pairs a migration with the time it was applied, if ever.
type MigrationState struct {
	Migration
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

func (s MigrationState) Applied() bool {
	return s.AppliedAt != nil
}

// schemaMigration is the bookkeeping row written next to each applied script.
type schemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// loadMigrations reads NNNNNN_name.up.sql / .down.sql pairs from dir.
// A missing down script or a malformed name is an error, not a skip.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, entry := range entries {
		stem, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if entry.IsDir() || !ok {
			continue
		}
		num, name, ok := strings.Cut(stem, "_")
		version, err := strconv.Atoi(num)
		if !ok || err != nil || version <= 0 || name == "" {
			return nil, fmt.Errorf("migration %q must be named NNNNNN_name.up.sql", entry.Name())
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, stem, version)
		}
		seen[version] = stem

		up, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, stem+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", stem, err)
		}
		out = append(out, Migration{Version: version, Name: name, Up: string(up), Down: string(down)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrator applies the embedded SQL scripts and records them in schema_migrations.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator loads the scripts compiled into the binary.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	ms, err := loadMigrations(embeddedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: ms}, nil
}

func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

func (m *Migrator) applied(ctx context.Context) (map[int]schemaMigration, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("prepare schema_migrations: %w", err)
	}
	var rows []schemaMigration
	if err := db.Order("version").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}

	known := make(map[int]bool, len(m.migrations))
	for _, mig := range m.migrations {
		known[mig.Version] = true
	}
	out := make(map[int]schemaMigration, len(rows))
	var unknown []string
	for _, row := range rows {
		if !known[row.Version] {
			unknown = append(unknown, fmt.Sprintf("%06d_%s", row.Version, row.Name))
		}
		out[row.Version] = row
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("database has migrations this binary does not know: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// Status lists every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]MigrationState, 0, len(m.migrations))
	for _, mig := range m.migrations {
		state := MigrationState{Migration: mig}
		if row, ok := applied[mig.Version]; ok {
			at := row.AppliedAt
			state.AppliedAt = &at
		}
		states = append(states, state)
	}
	return states, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns the ones it ran.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []Migration
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: mig.Version, Name: mig.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("apply %s: %w", mig.ID(), err)
		}
		middleware.Logger.InfoContext(ctx, "migration applied", slog.String("migration", mig.ID()))
		ran = append(ran, mig)
	}
	return ran, nil
}

var errLaterMigrationApplied = errors.New("a later migration is still applied")

// Down reverts one applied migration. Versions above it must be reverted first.
func (m *Migrator) Down(ctx context.Context, version int) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
		}
	}
	if target == nil {
		return fmt.Errorf("unknown migration version %d", version)
	}
	if _, ok := applied[version]; !ok {
		return fmt.Errorf("migration %s is not applied", target.ID())
	}
	for v := range applied {
		if v > version {
			return fmt.Errorf("revert %06d before %s: %w", v, target.ID(), errLaterMigrationApplied)
		}
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.Down).Error; err != nil {
			return err
		}
		return tx.Delete(&schemaMigration{}, "version = ?", version).Error
	})
	if err != nil {
		return fmt.Errorf("revert %s: %w", target.ID(), err)
	}
	middleware.Logger.InfoContext(ctx, "migration reverted", slog.String("migration", target.ID()))
	return nil
}
