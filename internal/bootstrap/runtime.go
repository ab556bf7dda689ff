// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis, ensures the bootstrap administrator
// and optionally seeds the built-in groups. The Redis client is nil when
// Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if err := EnsureAdmin(cfg, db, bcrypt.DefaultCost); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	if opts.SeedBuiltIns || cfg.SeedBuiltInGroups {
		groups, err := seed.Groups(db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in groups: %w", err)
		}
		middleware.Logger.Info("built-in groups ensured", slog.Int("count", len(groups)))
	}

	return db, rdb, nil
}

// EnsureAdmin creates the configured administrator, or promotes it when the
// username already exists. It does nothing unless BOOTSTRAP_ADMIN is set.
func EnsureAdmin(cfg *config.Config, db *gorm.DB, cost int) error {
	if cfg == nil || db == nil || !cfg.BootstrapAdmin {
		return nil
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "yatube_admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.AdminEmail))
	if email == "" {
		email = "admin@yatube.local"
	}
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be set when BOOTSTRAP_ADMIN is enabled")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = models.User{Username: username, Email: email, Password: string(hashed), IsAdmin: true}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			middleware.Logger.Info("bootstrap admin created", slog.String("username", username))
		case findErr != nil:
			return findErr
		case !admin.IsAdmin:
			if err := tx.Model(&admin).Update("is_admin", true).Error; err != nil {
				return err
			}
			middleware.Logger.Info("bootstrap admin promoted", slog.String("username", username))
		}
		return nil
	})
}
