package services

import (
	"strings"

	"github.com/localnerve/mapsdb/internal/types"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// quiet returns a session that does not log record-not-found lookups
func quiet(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite serializes writers and SQL Server needs table hints, so both are left as is.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "sqlite", "sqlserver":
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// wrapDB converts a storage error into an AppError.
// Unique index violations become conflicts; anything unexpected is internal.
func wrapDB(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isDuplicateKey(err) {
		return &types.AppError{
			Kind:    types.KindConflict,
			Message: op + ": a record with the same unique key already exists",
			Err:     err,
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound("%s: record not found", op)
	}
	return types.Internal(errors.Wrap(err, op))
}

// isDuplicateKey recognizes unique violations from every supported driver,
// including drivers whose errors gorm does not translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// sqlite, postgres, mysql, sqlserver
	for _, marker := range []string{
		"unique constraint failed",
		"duplicate key value",
		"duplicate entry",
		"cannot insert duplicate key",
		"violation of unique key",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// findOne loads a single record by id, mapping a miss to NotFound
func findOne[T any](tx *gorm.DB, what, id string) (*T, error) {
	var record T
	err := quiet(tx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("%s %s not found", what, id)
	}
	if err != nil {
		return nil, wrapDB(err, "load "+what)
	}
	return &record, nil
}

// exists reports whether any row matches the query
func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
