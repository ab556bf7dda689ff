package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"yatube/internal/config"
	"yatube/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is the decision DB_SCHEMA_MODE, DB_DRIVER and APP_ENV lead to.
type SchemaPlan struct {
	Mode    string
	Driver  string
	RunSQL  bool
	RunAuto bool
	// Reason names the rule that produced the plan.
	Reason string
}

// TableStatus is the state of one blog table.
type TableStatus struct {
	Name    string
	Present bool
	Rows    int64
}

// SchemaStatus describes what ApplySchema would do against a database
// and what the blog tables currently hold.
type SchemaStatus struct {
	SchemaPlan
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
	Tables            []TableStatus
}

// Ready reports whether every blog table exists and no SQL migration is pending.
func (s *SchemaStatus) Ready() bool {
	if len(s.PendingMigrations) > 0 {
		return false
	}
	for _, t := range s.Tables {
		if !t.Present {
			return false
		}
	}
	return true
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

// PlanSchema decides which schema steps run for cfg.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: normalizedSchemaMode(cfg), Driver: cfg.DBDriver}
	if plan.Driver == "" {
		plan.Driver = "postgres"
	}
	prodLike := isProdLikeEnv(cfg.Env)

	// The SQL migrations are written for postgres.
	if plan.Driver == "sqlite" {
		if prodLike {
			return plan, fmt.Errorf("refusing sqlite schema management in %q", cfg.Env)
		}
		plan.RunAuto = true
		plan.Reason = "sqlite ignores DB_SCHEMA_MODE and uses AutoMigrate"
		return plan, nil
	}

	switch plan.Mode {
	case SchemaModeSQL:
		plan.RunSQL = true
		plan.Reason = "sql mode applies embedded migrations only"
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.RunAuto = true
		plan.Reason = "auto mode runs AutoMigrate only"
	case SchemaModeHybrid:
		plan.RunSQL = true
		plan.RunAuto = !prodLike
		if prodLike {
			plan.Reason = "hybrid mode skips AutoMigrate in " + cfg.Env
		} else {
			plan.Reason = "hybrid mode applies migrations, then AutoMigrate"
		}
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

func runAutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs SQL migrations and/or AutoMigrate according to PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if plan.RunAuto {
		if plan.Mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
		}
		middleware.Logger.Info("applying blog schema with AutoMigrate",
			slog.String("mode", plan.Mode), slog.String("driver", plan.Driver), slog.String("env", cfg.Env))
		if err := runAutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the schema plan, pending SQL migrations and the row
// counts of the users, groups, posts, comments and follows tables.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}

	tables, err := blogTables(ctx, db)
	if err != nil {
		return nil, err
	}
	status.Tables = tables

	if !plan.RunSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations = pendingMigrations(applied, GetMigrations())
	return status, nil
}

func blogTables(ctx context.Context, db *gorm.DB) ([]TableStatus, error) {
	registered := PersistentModels()
	out := make([]TableStatus, 0, len(registered))
	for _, model := range registered {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		table := TableStatus{Name: stmt.Schema.Table}
		if db.Migrator().HasTable(model) {
			table.Present = true
			if err := db.WithContext(ctx).Model(model).Count(&table.Rows).Error; err != nil {
				return nil, fmt.Errorf("count %s: %w", table.Name, err)
			}
		}
		out = append(out, table)
	}
	return out, nil
}
