package services

import (
	"strings"

	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput is the body of a registration request. Password is write-only.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", types.Internal(errors.Wrap(err, "hash password"))
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the user's stored hash
func CheckPassword(user *models.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func createUser(db *gorm.DB, in RegisterInput, staff bool) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed,
		IsStaff:      staff,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx.Model(&models.User{}).Where("username = ?", user.Username))
		if err != nil {
			return wrapDB(err, "check username")
		}
		if taken {
			return types.Conflict("a user named %q already exists", user.Username)
		}
		return wrapDB(tx.Create(&user).Error, "create user")
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user", user.ID).Bool("staff", staff).Msg("User created")
	return &user, nil
}

// Register creates a regular user
func Register(db *gorm.DB, in RegisterInput) (*models.User, error) {
	return createUser(db, in, false)
}

// ListUsers returns every user ordered by username
func ListUsers(db *gorm.DB) ([]models.User, error) {
	users := []models.User{}
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, wrapDB(err, "list users")
	}
	return users, nil
}

// GetUser returns one user
func GetUser(db *gorm.DB, id string) (*models.User, error) {
	return findOne[models.User](db, "user", id)
}

// EnsureAdmin returns the existing staff users, or creates a staff user from
// in when there are none. created reports whether a user was added.
func EnsureAdmin(db *gorm.DB, in RegisterInput) (staff []models.User, created bool, err error) {
	if err := db.Where("is_staff = ?", true).Order("username").Find(&staff).Error; err != nil {
		return nil, false, wrapDB(err, "list staff")
	}
	if len(staff) > 0 {
		return staff, false, nil
	}
	user, err := createUser(db, in, true)
	if err != nil {
		return nil, false, err
	}
	return []models.User{*user}, true, nil
}

// SyncProjectUsers makes every user a member of every project.
// It returns the number of projects and the number of memberships added.
func SyncProjectUsers(db *gorm.DB) (projects int, added int64, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		var userIDs, projectIDs []string
		if err := tx.Model(&models.User{}).Order("username").Pluck("id", &userIDs).Error; err != nil {
			return wrapDB(err, "list users")
		}
		if err := tx.Model(&models.Project{}).Order("project_number").Pluck("id", &projectIDs).Error; err != nil {
			return wrapDB(err, "list projects")
		}
		for _, projectID := range projectIDs {
			n, err := addMembers(tx, projectID, userIDs)
			if err != nil {
				return wrapDB(err, "add project members")
			}
			added += n
		}
		projects = len(projectIDs)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	log.Info().Int("projects", projects).Int64("added", added).Msg("Project users synchronized")
	return projects, added, nil
}
