package services

import (
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MapConfigurationInput is the body of map configuration create and update requests
type MapConfigurationInput struct {
	Project            *string      `json:"project" validate:"omitnil,min=1"`
	TabName            *string      `json:"tab_name" validate:"omitnil,min=1,max=100"`
	VisualizationType  *string      `json:"visualization_type" validate:"omitnil,max=50"`
	AreaType           *string      `json:"area_type" validate:"omitnil,areatype"`
	LayerConfiguration *models.JSON `json:"layer_configuration"`
	Order              *int         `json:"order" validate:"omitnil,gte=0"`
}

func loadMapConfiguration(tx *gorm.DB, acc Access, id string) (*models.MapConfiguration, error) {
	var cfg models.MapConfiguration
	err := quiet(tx).Where("id = ?", id).
		Where("project_id IN (?)", acc.visibleProjects(tx)).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("map configuration %s not found", id)
	}
	if err != nil {
		return nil, wrapDB(err, "load map configuration")
	}
	return &cfg, nil
}

// ListMapConfigurations lists one project's tabs in display order, or every
// visible tab grouped by project when projectID is empty
func ListMapConfigurations(db *gorm.DB, acc Access, projectID string) ([]models.MapConfiguration, error) {
	if projectID != "" {
		if _, err := requireProject(db, acc, projectID); err != nil {
			return nil, err
		}
		return listOrdered[models.MapConfiguration](db, projectID)
	}
	configs := []models.MapConfiguration{}
	err := db.Where("project_id IN (?)", acc.visibleProjects(db)).
		Order("project_id").Order(siblingOrder).
		Find(&configs).Error
	if err != nil {
		return nil, wrapDB(err, "list map configurations")
	}
	return configs, nil
}

// GetMapConfiguration returns one visible map configuration
func GetMapConfiguration(db *gorm.DB, acc Access, id string) (*models.MapConfiguration, error) {
	return loadMapConfiguration(db, acc, id)
}

// CreateMapConfiguration creates a tab. An existing tab with the same name in
// the project is deleted first in the same transaction, so the last write wins.
func CreateMapConfiguration(db *gorm.DB, acc Access, in MapConfigurationInput) (*models.MapConfiguration, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.Project == nil {
		fields["project"] = "this field is required"
	}
	if in.TabName == nil {
		fields["tab_name"] = "this field is required"
	}
	if in.AreaType == nil {
		fields["area_type"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, types.Validation("validation failed", fields)
	}

	cfg := models.MapConfiguration{
		ProjectID:          *in.Project,
		TabName:            *in.TabName,
		VisualizationType:  in.VisualizationType,
		AreaType:           *in.AreaType,
		LayerConfiguration: pick(in.LayerConfiguration, models.JSON{}),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, cfg.ProjectID); err != nil {
			return err
		}

		var replaced []models.MapConfiguration
		if err := lockForUpdate(tx).
			Where("project_id = ? AND tab_name = ?", cfg.ProjectID, cfg.TabName).
			Find(&replaced).Error; err != nil {
			return wrapDB(err, "find existing tab")
		}
		for i := range replaced {
			if err := deleteMapConfiguration(tx, &replaced[i]); err != nil {
				return err
			}
			log.Debug().Str("project", cfg.ProjectID).Str("tab", cfg.TabName).Msg("Replacing map configuration")
		}

		if in.Order != nil {
			cfg.Order = *in.Order
		} else {
			next, err := nextOrder[models.MapConfiguration](tx, cfg.ProjectID)
			if err != nil {
				return err
			}
			cfg.Order = next
		}
		return wrapDB(tx.Create(&cfg).Error, "create map configuration")
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateMapConfiguration applies a partial update. A tab cannot move between projects.
func UpdateMapConfiguration(db *gorm.DB, acc Access, id string, in MapConfigurationInput) (*models.MapConfiguration, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var cfg *models.MapConfiguration
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if cfg, err = loadMapConfiguration(tx, acc, id); err != nil {
			return err
		}
		if in.Project != nil && *in.Project != cfg.ProjectID {
			return types.FieldError("project", "a map configuration cannot be moved to another project")
		}
		if in.TabName != nil && *in.TabName != cfg.TabName {
			taken, err := nameTaken[models.MapConfiguration](tx, "tab_name", cfg.ProjectID, *in.TabName, cfg.ID)
			if err != nil {
				return wrapDB(err, "check tab name")
			}
			if taken {
				return types.Conflict("a tab named %q already exists in this project", *in.TabName)
			}
			cfg.TabName = *in.TabName
		}
		if in.VisualizationType != nil {
			cfg.VisualizationType = in.VisualizationType
		}
		if in.AreaType != nil {
			cfg.AreaType = *in.AreaType
		}
		cfg.LayerConfiguration = pick(in.LayerConfiguration, cfg.LayerConfiguration)
		if in.Order != nil {
			cfg.Order = *in.Order
		}
		return wrapDB(tx.Save(cfg).Error, "update map configuration")
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// DeleteMapConfiguration removes a tab. Label positions saved against it are kept and unlinked.
func DeleteMapConfiguration(db *gorm.DB, acc Access, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		cfg, err := loadMapConfiguration(tx, acc, id)
		if err != nil {
			return err
		}
		return deleteMapConfiguration(tx, cfg)
	})
}

func deleteMapConfiguration(tx *gorm.DB, cfg *models.MapConfiguration) error {
	if err := tx.Model(&models.LabelPosition{}).
		Where("map_configuration_id = ?", cfg.ID).
		Update("map_configuration_id", nil).Error; err != nil {
		return wrapDB(err, "unlink label positions")
	}
	return wrapDB(tx.Delete(cfg).Error, "delete map configuration")
}

// ReorderMapConfigurations sets each tab's order to its index in ids, all or nothing
func ReorderMapConfigurations(db *gorm.DB, acc Access, projectID string, ids []string) ([]models.MapConfiguration, error) {
	var configs []models.MapConfiguration
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, projectID); err != nil {
			return err
		}
		var err error
		configs, err = reorder[models.MapConfiguration](tx, "map_configuration", projectID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return configs, nil
}
