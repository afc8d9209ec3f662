// Package testutil holds the shared fixtures of the package tests: an
// isolated in-memory database per test, seeded records and HTTP helpers.
package testutil

import (
	"testing"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/localnerve/mapsdb/internal/database"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
// A single connection keeps the shared-cache database alive until cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(puresqlite.Open(dsn), 1, logger.Silent)
	require.NoError(t, err, "open test database")
	require.NoError(t, database.AutoMigrate(db), "migrate test database")
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// CreateUser inserts a user with no password
func CreateUser(t *testing.T, db *gorm.DB, username string, staff bool) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", IsStaff: staff}
	require.NoError(t, db.Create(&user).Error, "create user %s", username)
	return user
}

// CreateProject creates a project through the service so membership rules apply
func CreateProject(t *testing.T, db *gorm.DB, acc services.Access, number string) models.Project {
	t.Helper()
	client, location := "Client "+number, "Denver, CO"
	project, err := services.CreateProject(db, acc, services.ProjectInput{
		ProjectNumber: &number,
		Client:        &client,
		Location:      &location,
	})
	require.NoError(t, err, "create project %s", number)
	return *project
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// JSON wraps a raw JSON literal as a model JSON value
func JSON(raw string) *models.JSON {
	j := models.NewJSON([]byte(raw))
	return &j
}
