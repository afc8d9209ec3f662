package services

import (
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultLabelFontSize = 12

// LabelInput is one label placement. Project and MapConfiguration are
// taken from the enclosing request in a batch save.
type LabelInput struct {
	LabelID          *string  `json:"label_id" validate:"omitnil,min=1,max=255"`
	Project          *string  `json:"project" validate:"omitnil,min=1"`
	MapConfiguration *string  `json:"map_configuration"`
	XOffset          *float64 `json:"x_offset"`
	YOffset          *float64 `json:"y_offset"`
	FontSize         *int     `json:"font_size" validate:"omitnil,gte=1,lte=200"`
	Text             *string  `json:"text"`
	Visibility       *bool    `json:"visibility"`
}

// BatchSaveInput is the body of a batch save. Labels may be a single object or a list.
type BatchSaveInput struct {
	ProjectID          string                     `json:"project_id"`
	MapConfigurationID *string                    `json:"map_configuration_id"`
	Labels             types.FlexList[LabelInput] `json:"labels" validate:"required,min=1,dive"`
}

func (in LabelInput) apply(label *models.LabelPosition) {
	if in.XOffset != nil {
		label.XOffset = *in.XOffset
	}
	if in.YOffset != nil {
		label.YOffset = *in.YOffset
	}
	if in.FontSize != nil {
		label.FontSize = *in.FontSize
	}
	if in.Text != nil {
		label.Text = *in.Text
	}
	if in.Visibility != nil {
		label.Visibility = *in.Visibility
	}
}

// checkMapConfiguration requires a referenced map configuration to exist in the project
func checkMapConfiguration(tx *gorm.DB, projectID string, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	found, err := exists(tx.Model(&models.MapConfiguration{}).Where("id = ? AND project_id = ?", *id, projectID))
	if err != nil {
		return wrapDB(err, "check map configuration")
	}
	if !found {
		return types.FieldError("map_configuration", "Invalid map configuration for this project.")
	}
	return nil
}

func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

// upsertLabel updates the label stored under (project, label_id) or creates it.
// A concurrent insert of the same key is retried once as an update.
func upsertLabel(tx *gorm.DB, acc Access, projectID string, mapConfigID *string, in LabelInput) (*models.LabelPosition, error) {
	if in.LabelID == nil {
		return nil, types.FieldError("label_id", "this field is required")
	}
	for attempt := 0; ; attempt++ {
		var label models.LabelPosition
		err := quiet(lockForUpdate(tx)).
			Where("project_id = ? AND label_id = ?", projectID, *in.LabelID).
			First(&label).Error
		switch {
		case err == nil:
			label.MapConfigurationID = mapConfigID
			in.apply(&label)
			if err := tx.Save(&label).Error; err != nil {
				return nil, wrapDB(err, "update label position")
			}
			return &label, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, wrapDB(err, "load label position")
		}

		label = models.LabelPosition{
			ProjectID:          projectID,
			MapConfigurationID: mapConfigID,
			LabelID:            *in.LabelID,
			FontSize:           defaultLabelFontSize,
			Visibility:         true,
		}
		if acc.UserID != "" {
			creator := acc.UserID
			label.CreatedByID = &creator
		}
		in.apply(&label)
		// nested so a unique violation rolls back to a savepoint, not the whole batch
		err = wrapDB(tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&label).Error
		}), "create label position")
		if err == nil {
			return &label, nil
		}
		if attempt > 0 || !types.IsKind(err, types.KindConflict) {
			return nil, err
		}
	}
}

// UpsertLabel saves a single label keyed by (project, label_id)
func UpsertLabel(db *gorm.DB, acc Access, in LabelInput) (*models.LabelPosition, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if in.Project == nil {
		return nil, types.FieldError("project", "this field is required")
	}
	var label *models.LabelPosition
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, *in.Project); err != nil {
			return err
		}
		mapConfigID := normalizeID(in.MapConfiguration)
		if err := checkMapConfiguration(tx, *in.Project, mapConfigID); err != nil {
			return err
		}
		var err error
		label, err = upsertLabel(tx, acc, *in.Project, mapConfigID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return label, nil
}

// BatchSaveLabels upserts every label of the batch in one transaction
func BatchSaveLabels(db *gorm.DB, acc Access, in BatchSaveInput) ([]models.LabelPosition, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	saved := make([]models.LabelPosition, 0, len(in.Labels))
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, in.ProjectID); err != nil {
			return err
		}
		mapConfigID := normalizeID(in.MapConfigurationID)
		if err := checkMapConfiguration(tx, in.ProjectID, mapConfigID); err != nil {
			return err
		}
		for _, item := range in.Labels.Slice() {
			label, err := upsertLabel(tx, acc, in.ProjectID, mapConfigID, item)
			if err != nil {
				return err
			}
			saved = append(saved, *label)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("project", in.ProjectID).Int("labels", len(saved)).Msg("Label positions saved")
	return saved, nil
}

// ListLabels returns saved labels, narrowed by project and map configuration when given
func ListLabels(db *gorm.DB, acc Access, projectID, mapConfigID string) ([]models.LabelPosition, error) {
	query := db.Model(&models.LabelPosition{})
	if projectID != "" {
		if _, err := requireProject(db, acc, projectID); err != nil {
			return nil, err
		}
		query = query.Where("project_id = ?", projectID)
	} else {
		query = query.Where("project_id IN (?)", acc.visibleProjects(db))
	}
	if mapConfigID != "" {
		query = query.Where("map_configuration_id = ?", mapConfigID)
	}
	labels := []models.LabelPosition{}
	if err := query.Order("label_id").Find(&labels).Error; err != nil {
		return nil, wrapDB(err, "list label positions")
	}
	return labels, nil
}

func loadLabel(tx *gorm.DB, acc Access, id string) (*models.LabelPosition, error) {
	var label models.LabelPosition
	err := quiet(tx).Where("id = ?", id).
		Where("project_id IN (?)", acc.visibleProjects(tx)).
		First(&label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("label position %s not found", id)
	}
	if err != nil {
		return nil, wrapDB(err, "load label position")
	}
	return &label, nil
}

// GetLabel returns one label position
func GetLabel(db *gorm.DB, acc Access, id string) (*models.LabelPosition, error) {
	return loadLabel(db, acc, id)
}

// UpdateLabel changes the placement of an existing label. The project and label id are fixed.
func UpdateLabel(db *gorm.DB, acc Access, id string, in LabelInput) (*models.LabelPosition, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	var label *models.LabelPosition
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if label, err = loadLabel(tx, acc, id); err != nil {
			return err
		}
		if in.Project != nil && *in.Project != label.ProjectID {
			return types.FieldError("project", "a label position cannot be moved to another project")
		}
		if in.LabelID != nil && *in.LabelID != label.LabelID {
			return types.FieldError("label_id", "the label id of a saved position cannot change")
		}
		if in.MapConfiguration != nil {
			mapConfigID := normalizeID(in.MapConfiguration)
			if err := checkMapConfiguration(tx, label.ProjectID, mapConfigID); err != nil {
				return err
			}
			label.MapConfigurationID = mapConfigID
		}
		in.apply(label)
		return wrapDB(tx.Save(label).Error, "update label position")
	})
	if err != nil {
		return nil, err
	}
	return label, nil
}

// DeleteLabel removes one label position
func DeleteLabel(db *gorm.DB, acc Access, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		label, err := loadLabel(tx, acc, id)
		if err != nil {
			return err
		}
		return wrapDB(tx.Delete(label).Error, "delete label position")
	})
}

// ResetLabels deletes the project's labels, or only those of one map
// configuration, and returns how many were removed
func ResetLabels(db *gorm.DB, acc Access, projectID, mapConfigID string) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, projectID); err != nil {
			return err
		}
		query := tx.Where("project_id = ?", projectID)
		if mapConfigID != "" {
			query = query.Where("map_configuration_id = ?", mapConfigID)
		}
		result := query.Delete(&models.LabelPosition{})
		if result.Error != nil {
			return wrapDB(result.Error, "reset label positions")
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info().Str("project", projectID).Int64("deleted", deleted).Msg("Label positions reset")
	return deleted, nil
}
