// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"yatube/internal/database"
	"yatube/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// lookupError maps a failed single-row lookup to the application error taxonomy.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// isUniqueViolation reports whether err is a unique constraint violation.
// postgres reports SQLSTATE 23505; sqlite only reports it in the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// authorColumns is the public projection of a user loaded alongside posts and comments.
func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "created_at", "updated_at")
}
