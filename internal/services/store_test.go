package services

import (
	"testing"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(puresqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.MarketArea{}))
	return db
}

func TestWrapDBTranslatesUniqueViolation(t *testing.T) {
	db := openStore(t)

	// a racing writer that passed the application check hits the index instead
	first := models.MarketArea{ProjectID: "p1", Name: "A", MAType: "zip"}
	require.NoError(t, db.Create(&first).Error)
	dup := models.MarketArea{ProjectID: "p1", Name: "A", MAType: "zip"}
	err := wrapDB(db.Create(&dup).Error, "create market area")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict), "got %v", err)
}

func TestWrapDB(t *testing.T) {
	assert.NoError(t, wrapDB(nil, "op"))
	assert.True(t, types.IsKind(wrapDB(gorm.ErrRecordNotFound, "op"), types.KindNotFound))

	appErr := types.FieldError("name", "bad")
	assert.Same(t, appErr, wrapDB(appErr, "op"))

	err := wrapDB(errors.New("connection reset"), "load project")
	var wrapped *types.AppError
	require.ErrorAs(t, err, &wrapped)
	assert.Equal(t, types.KindInternal, wrapped.Kind)
	assert.Contains(t, errors.Cause(wrapped.Err).Error(), "connection reset")
}

func TestLockForUpdateSkipsSQLite(t *testing.T) {
	db := openStore(t)
	stmt := lockForUpdate(db).Session(&gorm.Session{DryRun: true}).Find(&[]models.MarketArea{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}
