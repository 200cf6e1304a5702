package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clubhouse/internal/config"
	"clubhouse/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan says which schema steps a given configuration runs.
type SchemaPlan struct {
	Mode        string `json:"mode"`
	Environment string `json:"environment"`
	SQL         bool   `json:"sql"`
	AutoMigrate bool   `json:"auto_migrate"`
}

// PlanSchema resolves cfg into a plan. Hybrid runs the SQL scripts everywhere
// and AutoMigrate only outside production and staging. Auto refuses those
// environments unless DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE is set.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	env := strings.ToLower(strings.TrimSpace(cfg.Env))
	deployed := env == "production" || env == "prod" || env == "staging" || env == "stage"

	plan := SchemaPlan{Mode: mode, Environment: cfg.Env}
	switch mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeHybrid:
		plan.SQL, plan.AutoMigrate = true, !deployed
	case SchemaModeAuto:
		if deployed && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto is refused in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.AutoMigrate = true
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

// AutoMigrate creates or alters the club, event, user and request tables
// from their GORM models.
func AutoMigrate(db *gorm.DB) error {
	if err := Prepare(db); err != nil {
		return err
	}
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs the steps PlanSchema selects for cfg.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.SQL {
		migrator, err := NewMigrator(db)
		if err != nil {
			return err
		}
		if _, err := migrator.Up(ctx); err != nil {
			return err
		}
	}
	if plan.AutoMigrate {
		middleware.Logger.InfoContext(ctx, "running AutoMigrate", slog.String("mode", plan.Mode), slog.String("env", plan.Environment))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// SchemaReport is what `clubctl migrate status` prints.
type SchemaReport struct {
	Plan       SchemaPlan       `json:"plan"`
	Migrations []MigrationState `json:"migrations"`
}

// Pending counts migrations not yet applied.
func (r SchemaReport) Pending() int {
	n := 0
	for _, m := range r.Migrations {
		if !m.Applied() {
			n++
		}
	}
	return n
}

// InspectSchema reports the plan and per-migration state without changing anything
// beyond creating the schema_migrations table.
func InspectSchema(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaReport, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	migrator, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	states, err := migrator.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &SchemaReport{Plan: plan, Migrations: states}, nil
}
