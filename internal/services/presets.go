package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// presetPtr constrains the preset models handled by the scope resolver
type presetPtr[T any] interface {
	*T
	models.Preset
}

// PresetInput is the body of style and variable preset create and update requests.
// Styles applies to style presets and Variables to variable presets.
type PresetInput struct {
	Name      *string      `json:"name" validate:"omitnil,min=1,max=100"`
	Project   *string      `json:"project" validate:"omitnil,min=1"`
	IsGlobal  *bool        `json:"is_global"`
	Styles    *models.JSON `json:"styles"`
	Variables *models.JSON `json:"variables"`
}

func (in PresetInput) payload(kind string) *models.JSON {
	if kind == "style" {
		return in.Styles
	}
	return in.Variables
}

var requiredStyleFields = []string{"borderColor", "borderWidth", "fillColor", "fillOpacity"}

// validatePayload applies the per-kind payload rules. Style presets map an
// area type to a style carrying every required field; variable presets are a non-empty list.
func validatePayload(kind string, payload models.JSON) error {
	column := kind + "s"
	if kind == "variable" {
		var vars []json.RawMessage
		if payload.IsNull() || json.Unmarshal(payload.JSON, &vars) != nil {
			return types.FieldError(column, "Variables must be a list")
		}
		if len(vars) == 0 {
			return types.FieldError(column, "Variables list cannot be empty")
		}
		return nil
	}

	var styles map[string]map[string]any
	if payload.IsNull() || json.Unmarshal(payload.JSON, &styles) != nil {
		return types.FieldError(column, "Styles must be an object of style settings keyed by area type")
	}
	areaTypes := make([]string, 0, len(styles))
	for areaType := range styles {
		areaTypes = append(areaTypes, areaType)
	}
	sort.Strings(areaTypes)
	for _, areaType := range areaTypes {
		style := styles[areaType]
		var missing []string
		for _, f := range requiredStyleFields {
			if _, ok := style[f]; !ok {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return types.FieldError(column, fmt.Sprintf("Style for %s is missing required fields: %s", areaType, strings.Join(missing, ", ")))
		}
		opacity, ok := style["fillOpacity"].(float64)
		if !ok || opacity < 0 || opacity > 1 {
			return types.FieldError(column, fmt.Sprintf("Fill opacity for %s must be between 0 and 1", areaType))
		}
	}
	return nil
}

// checkScope enforces that a preset is either global or tied to a project, never both
func checkScope(f models.PresetFields) error {
	if f.IsGlobal && f.ProjectID != nil {
		return types.FieldError("is_global", "Global presets cannot be associated with a specific project")
	}
	if !f.IsGlobal && f.ProjectID == nil {
		return types.FieldError("project", "a project is required unless the preset is global")
	}
	return nil
}

// presetNameTaken applies the uniqueness rules: (project, name) for project
// presets and name among global presets
func presetNameTaken[T any](tx *gorm.DB, f models.PresetFields, exceptID string) (bool, error) {
	query := tx.Model(new(T)).Where("name = ?", f.Name)
	if f.IsGlobal {
		query = query.Where("is_global = ?", true)
	} else {
		query = query.Where("project_id = ?", *f.ProjectID)
	}
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	return exists(query)
}

// fillUsernames resolves created_by_username for a batch of presets
func fillUsernames[T any, PT presetPtr[T]](tx *gorm.DB, presets []T) error {
	ids := map[string]struct{}{}
	for i := range presets {
		if id := PT(&presets[i]).Meta().CreatedByID; id != nil {
			ids[*id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for id := range ids {
		keys = append(keys, id)
	}
	var users []models.User
	if err := tx.Select("id", "username").Where("id IN ?", keys).Find(&users).Error; err != nil {
		return wrapDB(err, "load preset creators")
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for i := range presets {
		meta := PT(&presets[i]).Meta()
		if meta.CreatedByID == nil {
			continue
		}
		if name, ok := names[*meta.CreatedByID]; ok {
			meta.CreatedByUsername = &name
		}
	}
	return nil
}

func loadPreset[T any, PT presetPtr[T]](tx *gorm.DB, acc Access, id string) (*T, error) {
	var preset T
	p := PT(&preset)
	err := quiet(tx).Where("id = ?", id).First(&preset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("%s preset %s not found", p.Kind(), id)
	}
	if err != nil {
		return nil, wrapDB(err, "load preset")
	}
	if projectID := p.Fields().ProjectID; projectID != nil {
		if _, err := requireProject(tx, acc, *projectID); err != nil {
			if types.IsKind(err, types.KindNotFound) {
				return nil, types.NotFound("%s preset %s not found", p.Kind(), id)
			}
			return nil, err
		}
	}
	return &preset, nil
}

func finishOne[T any, PT presetPtr[T]](tx *gorm.DB, preset *T) (*T, error) {
	one := []T{*preset}
	if err := fillUsernames[T, PT](tx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// ResolvePresets returns the presets visible in a project context: the
// project's own presets plus every global preset. Without a project only
// global presets are returned. Most recently modified first.
func ResolvePresets[T any, PT presetPtr[T]](db *gorm.DB, acc Access, projectID string) ([]T, error) {
	query := db.Model(new(T))
	if projectID != "" {
		if _, err := requireProject(db, acc, projectID); err != nil {
			return nil, err
		}
		query = query.Where("project_id = ? OR is_global = ?", projectID, true)
	} else {
		query = query.Where("is_global = ?", true)
	}

	presets := []T{}
	if err := query.Order("last_modified DESC").Order("id").Find(&presets).Error; err != nil {
		return nil, wrapDB(err, "resolve presets")
	}
	if err := fillUsernames[T, PT](db, presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// GetPreset returns one preset visible to the caller
func GetPreset[T any, PT presetPtr[T]](db *gorm.DB, acc Access, id string) (*T, error) {
	preset, err := loadPreset[T, PT](db, acc, id)
	if err != nil {
		return nil, err
	}
	return finishOne[T, PT](db, preset)
}

// CreatePreset validates scope and payload and stores a new preset owned by the caller
func CreatePreset[T any, PT presetPtr[T]](db *gorm.DB, acc Access, in PresetInput) (*T, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var preset T
	p := PT(&preset)
	if in.Name == nil {
		return nil, types.FieldError("name", "this field is required")
	}
	fields := models.PresetFields{
		Name:      *in.Name,
		ProjectID: in.Project,
		IsGlobal:  in.IsGlobal != nil && *in.IsGlobal,
	}
	if payload := in.payload(p.Kind()); payload != nil {
		fields.Payload = *payload
	}
	if err := checkScope(fields); err != nil {
		return nil, err
	}
	if err := validatePayload(p.Kind(), fields.Payload); err != nil {
		return nil, err
	}
	p.SetFields(fields)
	if acc.UserID != "" {
		creator := acc.UserID
		p.Meta().CreatedByID = &creator
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if fields.ProjectID != nil {
			if _, err := requireProject(tx, acc, *fields.ProjectID); err != nil {
				return err
			}
		}
		taken, err := presetNameTaken[T](tx, fields, "")
		if err != nil {
			return wrapDB(err, "check preset name")
		}
		if taken {
			return types.Conflict("a %s preset named %q already exists in this scope", p.Kind(), fields.Name)
		}
		return wrapDB(tx.Create(&preset).Error, "create preset")
	})
	if err != nil {
		return nil, err
	}
	return finishOne[T, PT](db, &preset)
}

// UpdatePreset applies a partial update. A global preset cannot be made
// project-scoped and a project preset becomes global only through PromoteToGlobal.
func UpdatePreset[T any, PT presetPtr[T]](db *gorm.DB, acc Access, id string, in PresetInput) (*T, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var preset *T
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if preset, err = loadPreset[T, PT](tx, acc, id); err != nil {
			return err
		}
		p := PT(preset)
		current := p.Fields()
		next := current
		if in.Name != nil {
			next.Name = *in.Name
		}
		if in.Project != nil {
			next.ProjectID = in.Project
		}
		if in.IsGlobal != nil {
			if current.IsGlobal && !*in.IsGlobal {
				return types.FieldError("is_global", "global presets cannot be made project-scoped")
			}
			next.IsGlobal = *in.IsGlobal
		}
		if payload := in.payload(p.Kind()); payload != nil {
			next.Payload = *payload
			if err := validatePayload(p.Kind(), next.Payload); err != nil {
				return err
			}
		}
		if err := checkScope(next); err != nil {
			return err
		}
		if next.ProjectID != nil && (current.ProjectID == nil || *next.ProjectID != *current.ProjectID) {
			if _, err := requireProject(tx, acc, *next.ProjectID); err != nil {
				return err
			}
		}
		taken, err := presetNameTaken[T](tx, next, p.Key())
		if err != nil {
			return wrapDB(err, "check preset name")
		}
		if taken {
			return types.Conflict("a %s preset named %q already exists in this scope", p.Kind(), next.Name)
		}

		p.SetFields(next)
		return wrapDB(tx.Save(preset).Error, "update preset")
	})
	if err != nil {
		return nil, err
	}
	return finishOne[T, PT](db, preset)
}

// DeletePreset removes one preset
func DeletePreset[T any, PT presetPtr[T]](db *gorm.DB, acc Access, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		preset, err := loadPreset[T, PT](tx, acc, id)
		if err != nil {
			return err
		}
		return wrapDB(tx.Delete(preset).Error, "delete preset")
	})
}

// PromoteToGlobal makes a preset global and clears its project in one update.
// Promoting a preset that is already global changes nothing.
func PromoteToGlobal[T any, PT presetPtr[T]](db *gorm.DB, acc Access, id string) (*T, error) {
	var preset *T
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if preset, err = loadPreset[T, PT](tx, acc, id); err != nil {
			return err
		}
		p := PT(preset)
		if p.Fields().IsGlobal {
			return nil
		}

		promoted := p.Fields()
		promoted.IsGlobal = true
		promoted.ProjectID = nil
		taken, err := presetNameTaken[T](tx, promoted, p.Key())
		if err != nil {
			return wrapDB(err, "check preset name")
		}
		if taken {
			return types.Conflict("a global %s preset named %q already exists", p.Kind(), promoted.Name)
		}

		if err := tx.Model(preset).Updates(map[string]any{
			"is_global":  true,
			"project_id": nil,
			"scope_key":  models.GlobalScope,
		}).Error; err != nil {
			return wrapDB(err, "promote preset")
		}
		p.SetFields(promoted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finishOne[T, PT](db, preset)
}
