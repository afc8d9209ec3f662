package services

import (
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProjectInput is the body of project create and update requests.
// On update, nil fields are left unchanged.
type ProjectInput struct {
	ProjectNumber *string `json:"project_number" validate:"omitnil,min=1,max=20"`
	Client        *string `json:"client" validate:"omitnil,min=1,max=100"`
	Location      *string `json:"location" validate:"omitnil,min=1,max=100"`
	Description   *string `json:"description"`
}

type createProjectInput struct {
	ProjectNumber *string `json:"project_number" validate:"required"`
	Client        *string `json:"client" validate:"required"`
	Location      *string `json:"location" validate:"required"`
}

// projectChildren are the tables whose rows are removed with their project
var projectChildren = []any{
	&models.MarketArea{},
	&models.MapConfiguration{},
	&models.LabelPosition{},
	&models.EnrichmentUsage{},
	&models.StylePreset{},
	&models.VariablePreset{},
	&models.ProjectUser{},
}

func projectQuery(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Users", func(db *gorm.DB) *gorm.DB {
		return db.Order("username")
	}).Preload("MarketAreas", func(db *gorm.DB) *gorm.DB {
		return db.Order(siblingOrder)
	})
}

func withCounts(projects []models.Project) []models.Project {
	for i := range projects {
		projects[i].MarketAreasCount = len(projects[i].MarketAreas)
	}
	return projects
}

// ListProjects returns the caller's visible projects, most recently modified first
func ListProjects(db *gorm.DB, acc Access) ([]models.Project, error) {
	projects := []models.Project{}
	query := acc.policy().Scope(projectQuery(db).Model(&models.Project{}), acc.UserID)
	if err := query.Order("projects.last_modified DESC").Find(&projects).Error; err != nil {
		return nil, wrapDB(err, "list projects")
	}
	return withCounts(projects), nil
}

// GetProject returns one visible project with its market areas and members
func GetProject(db *gorm.DB, acc Access, id string) (*models.Project, error) {
	if _, err := requireProject(db, acc, id); err != nil {
		return nil, err
	}
	var project models.Project
	if err := projectQuery(db).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, wrapDB(err, "load project")
	}
	project.MarketAreasCount = len(project.MarketAreas)
	return &project, nil
}

// CreateProject creates a project and attaches the members chosen by the visibility policy
func CreateProject(db *gorm.DB, acc Access, in ProjectInput) (*models.Project, error) {
	if err := validation.Struct(&createProjectInput{
		ProjectNumber: in.ProjectNumber,
		Client:        in.Client,
		Location:      in.Location,
	}); err != nil {
		return nil, err
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	project := models.Project{
		ProjectNumber: *in.ProjectNumber,
		Client:        *in.Client,
		Location:      *in.Location,
	}
	if in.Description != nil {
		project.Description = *in.Description
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Users", "MarketAreas").Create(&project).Error; err != nil {
			return wrapDB(err, "create project")
		}
		members, err := acc.policy().InitialMembers(tx, acc.UserID)
		if err != nil {
			return wrapDB(err, "select project members")
		}
		if _, err := addMembers(tx, project.ID, members); err != nil {
			return wrapDB(err, "add project members")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("project", project.ID).Str("policy", acc.policy().Name()).Msg("Project created")
	return GetProject(db, acc, project.ID)
}

// UpdateProject applies the non-nil fields of in
func UpdateProject(db *gorm.DB, acc Access, id string, in ProjectInput) (*models.Project, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		project, err := requireProject(tx, acc, id)
		if err != nil {
			return err
		}
		updates := map[string]any{}
		if in.ProjectNumber != nil {
			updates["project_number"] = *in.ProjectNumber
		}
		if in.Client != nil {
			updates["client"] = *in.Client
		}
		if in.Location != nil {
			updates["location"] = *in.Location
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if len(updates) == 0 {
			return nil
		}
		return wrapDB(tx.Model(project).Updates(updates).Error, "update project")
	})
	if err != nil {
		return nil, err
	}
	return GetProject(db, acc, id)
}

// DeleteProject removes a project and everything it owns in one transaction
func DeleteProject(db *gorm.DB, acc Access, id string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		project, err := requireProject(tx, acc, id)
		if err != nil {
			return err
		}
		for _, child := range projectChildren {
			if err := tx.Where("project_id = ?", project.ID).Delete(child).Error; err != nil {
				return wrapDB(err, "delete project children")
			}
		}
		return wrapDB(tx.Delete(project).Error, "delete project")
	})
	if err != nil {
		return err
	}

	log.Info().Str("project", id).Msg("Project deleted")
	return nil
}
