package services

import (
	"fmt"

	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectPolicy decides which projects a user can see and who joins a new project
type ProjectPolicy interface {
	Name() string
	// Scope restricts a query over the projects table to the user's visible projects
	Scope(query *gorm.DB, userID string) *gorm.DB
	// InitialMembers returns the ids of users attached to a newly created project
	InitialMembers(tx *gorm.DB, creatorID string) ([]string, error)
}

// NewProjectPolicy returns the policy registered under name
func NewProjectPolicy(name string) (ProjectPolicy, error) {
	switch name {
	case "", config.VisibilityAll:
		return AllProjects{}, nil
	case config.VisibilityMembers:
		return MemberProjects{}, nil
	}
	return nil, fmt.Errorf("unknown project visibility policy %q", name)
}

// AllProjects lets every user see every project. New projects get every user as a member.
type AllProjects struct{}

func (AllProjects) Name() string { return config.VisibilityAll }

func (AllProjects) Scope(query *gorm.DB, _ string) *gorm.DB { return query }

func (AllProjects) InitialMembers(tx *gorm.DB, _ string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.User{}).Order("username").Pluck("id", &ids).Error
	return ids, err
}

// MemberProjects limits users to projects they belong to. The creator becomes the only member.
type MemberProjects struct{}

func (MemberProjects) Name() string { return config.VisibilityMembers }

func (MemberProjects) Scope(query *gorm.DB, userID string) *gorm.DB {
	return query.Where("EXISTS (SELECT 1 FROM project_users pu WHERE pu.project_id = projects.id AND pu.user_id = ?)", userID)
}

func (MemberProjects) InitialMembers(tx *gorm.DB, creatorID string) ([]string, error) {
	if creatorID == "" {
		return nil, nil
	}
	return []string{creatorID}, nil
}

// Access identifies the caller of a project-scoped operation
type Access struct {
	Policy  ProjectPolicy
	UserID  string
	IsStaff bool
}

func (a Access) policy() ProjectPolicy {
	if a.Policy == nil {
		return AllProjects{}
	}
	return a.Policy
}

// visibleProjects is a subquery selecting the ids of projects the caller can see
func (a Access) visibleProjects(tx *gorm.DB) *gorm.DB {
	base := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Project{}).Select("projects.id")
	return a.policy().Scope(base, a.UserID)
}

// requireProject loads a project the caller can see, or fails with NotFound
func requireProject(tx *gorm.DB, acc Access, projectID string) (*models.Project, error) {
	if projectID == "" {
		return nil, types.FieldError("project", "this field is required")
	}
	var project models.Project
	err := acc.policy().Scope(quiet(tx).Model(&models.Project{}), acc.UserID).
		Where("projects.id = ?", projectID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("project %s not found", projectID)
	}
	if err != nil {
		return nil, wrapDB(err, "load project")
	}
	return &project, nil
}

// addMembers attaches users to a project, ignoring existing memberships
func addMembers(tx *gorm.DB, projectID string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	rows := make([]models.ProjectUser, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.ProjectUser{ProjectID: projectID, UserID: id})
	}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return result.RowsAffected, result.Error
}
