package services

import (
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MarketAreaInput is the body of market area create and update requests.
// On update, nil fields keep their stored value.
type MarketAreaInput struct {
	Name             *string      `json:"name" validate:"omitnil,min=1,max=100"`
	ShortName        *string      `json:"short_name" validate:"omitnil,max=50"`
	MAType           *string      `json:"ma_type" validate:"omitnil,areatype"`
	Geometry         *models.JSON `json:"geometry"`
	StyleSettings    *models.JSON `json:"style_settings"`
	Locations        *models.JSON `json:"locations"`
	RadiusPoints     *models.JSON `json:"radius_points"`
	DriveTimePoints  *models.JSON `json:"drive_time_points"`
	SiteLocationData *models.JSON `json:"site_location_data"`
	Order            *int         `json:"order" validate:"omitnil,gte=0"`
}

// ReorderInput is the body of a reorder request
type ReorderInput struct {
	Project string   `json:"project"`
	Order   []string `json:"order" validate:"required"`
}

func pick(in *models.JSON, current models.JSON) models.JSON {
	if in != nil {
		return *in
	}
	return current
}

// merge applies in over area and re-derives the type-specific payload
func (in MarketAreaInput) merge(area *models.MarketArea) error {
	if in.Name != nil {
		area.Name = *in.Name
	}
	if in.ShortName != nil {
		area.ShortName = *in.ShortName
	}
	maType := area.MAType
	if in.MAType != nil {
		maType = *in.MAType
	}
	area.Geometry = pick(in.Geometry, area.Geometry)
	area.StyleSettings = pick(in.StyleSettings, area.StyleSettings)
	if area.StyleSettings.IsEmpty() {
		area.StyleSettings = models.NewJSON([]byte(models.DefaultStyleSettings))
	}

	payload, err := NewAreaPayload(maType,
		pick(in.Locations, area.Locations),
		pick(in.RadiusPoints, area.RadiusPoints),
		pick(in.DriveTimePoints, area.DriveTimePoints),
		pick(in.SiteLocationData, area.SiteLocationData),
	)
	if err != nil {
		return err
	}
	payload.Apply(area)
	return nil
}

// nameTaken checks the (project, name) uniqueness rule. exceptID excludes the record being updated.
func nameTaken[T any](tx *gorm.DB, column, projectID, name, exceptID string) (bool, error) {
	query := tx.Model(new(T)).Where("project_id = ? AND "+column+" = ?", projectID, name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	return exists(query)
}

func loadMarketArea(tx *gorm.DB, acc Access, projectID, id string) (*models.MarketArea, error) {
	if _, err := requireProject(tx, acc, projectID); err != nil {
		return nil, err
	}
	var area models.MarketArea
	err := quiet(tx).Where("id = ? AND project_id = ?", id, projectID).First(&area).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("market area %s not found", id)
	}
	if err != nil {
		return nil, wrapDB(err, "load market area")
	}
	return &area, nil
}

// ListMarketAreas returns the project's market areas in display order
func ListMarketAreas(db *gorm.DB, acc Access, projectID string) ([]models.MarketArea, error) {
	if _, err := requireProject(db, acc, projectID); err != nil {
		return nil, err
	}
	return listOrdered[models.MarketArea](db, projectID)
}

// GetMarketArea returns one market area of the project
func GetMarketArea(db *gorm.DB, acc Access, projectID, id string) (*models.MarketArea, error) {
	return loadMarketArea(db, acc, projectID, id)
}

// CreateMarketArea validates the payload for its type and appends the area
// after its siblings unless an explicit order is given
func CreateMarketArea(db *gorm.DB, acc Access, projectID string, in MarketAreaInput) (*models.MarketArea, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.Name == nil {
		fields["name"] = "this field is required"
	}
	if in.MAType == nil {
		fields["ma_type"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, types.Validation("validation failed", fields)
	}

	area := models.MarketArea{ProjectID: projectID}
	if err := in.merge(&area); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, projectID); err != nil {
			return err
		}
		taken, err := nameTaken[models.MarketArea](tx, "name", projectID, area.Name, "")
		if err != nil {
			return wrapDB(err, "check market area name")
		}
		if taken {
			return types.Conflict("a market area named %q already exists in this project", area.Name)
		}
		if in.Order != nil {
			area.Order = *in.Order
		} else if area.Order, err = nextOrder[models.MarketArea](tx, projectID); err != nil {
			return err
		}
		return wrapDB(tx.Create(&area).Error, "create market area")
	})
	if err != nil {
		return nil, err
	}
	return &area, nil
}

// UpdateMarketArea applies a partial update. Changing ma_type re-validates the payload.
func UpdateMarketArea(db *gorm.DB, acc Access, projectID, id string, in MarketAreaInput) (*models.MarketArea, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var area *models.MarketArea
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if area, err = loadMarketArea(tx, acc, projectID, id); err != nil {
			return err
		}
		if err := in.merge(area); err != nil {
			return err
		}
		if in.Name != nil {
			taken, err := nameTaken[models.MarketArea](tx, "name", projectID, area.Name, area.ID)
			if err != nil {
				return wrapDB(err, "check market area name")
			}
			if taken {
				return types.Conflict("a market area named %q already exists in this project", area.Name)
			}
		}
		if in.Order != nil {
			area.Order = *in.Order
		}
		return wrapDB(tx.Save(area).Error, "update market area")
	})
	if err != nil {
		return nil, err
	}
	return area, nil
}

// DeleteMarketArea removes one market area. Sibling orders are left as they are.
func DeleteMarketArea(db *gorm.DB, acc Access, projectID, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		area, err := loadMarketArea(tx, acc, projectID, id)
		if err != nil {
			return err
		}
		return wrapDB(tx.Delete(area).Error, "delete market area")
	})
}

// ReorderMarketAreas sets each area's order to its index in ids, all or nothing
func ReorderMarketAreas(db *gorm.DB, acc Access, projectID string, ids []string) ([]models.MarketArea, error) {
	var areas []models.MarketArea
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := requireProject(tx, acc, projectID); err != nil {
			return err
		}
		var err error
		areas, err = reorder[models.MarketArea](tx, "market_area", projectID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return areas, nil
}
