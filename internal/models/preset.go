package models

import (
	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// PresetFields is the writable part of a preset, shared by both kinds
type PresetFields struct {
	Name      string
	ProjectID *string
	IsGlobal  bool
	Payload   JSON
}

// GlobalScope is the scope key shared by every global preset
const GlobalScope = "global"

// ScopeKey names the uniqueness scope of a preset: its project, or GlobalScope.
// project_id is NULL for globals, so names are unique on (scope_key, name) instead.
func (f PresetFields) ScopeKey() string {
	if f.IsGlobal || f.ProjectID == nil {
		return GlobalScope
	}
	return *f.ProjectID
}

// PresetMeta holds the columns common to style and variable presets
type PresetMeta struct {
	IsGlobal          bool    `gorm:"not null" json:"is_global"`
	CreatedByID       *string `gorm:"type:char(36)" json:"created_by"`
	CreatedByUsername *string `gorm:"-" json:"created_by_username"`
}

// Preset is implemented by *StylePreset and *VariablePreset
type Preset interface {
	Key() string
	Kind() string
	PayloadColumn() string
	Fields() PresetFields
	SetFields(PresetFields)
	Meta() *PresetMeta
}

// StylePreset is a reusable bundle of per-area-type style settings
type StylePreset struct {
	Base
	Name      string  `gorm:"size:100;not null;index:idx_style_preset_scope_name,unique" json:"name"`
	ProjectID *string `gorm:"type:char(36);index" json:"project"`
	ScopeKey  string  `gorm:"size:36;not null;default:'';index:idx_style_preset_scope_name,unique" json:"-"`
	Styles    JSON    `json:"styles"`
	PresetMeta
}

// TableName overrides the table name for StylePreset
func (StylePreset) TableName() string {
	return "style_presets"
}

func (p *StylePreset) Key() string           { return p.ID }
func (p *StylePreset) Kind() string          { return "style" }
func (p *StylePreset) PayloadColumn() string { return "styles" }
func (p *StylePreset) Meta() *PresetMeta     { return &p.PresetMeta }

func (p *StylePreset) Fields() PresetFields {
	return PresetFields{Name: p.Name, ProjectID: p.ProjectID, IsGlobal: p.IsGlobal, Payload: p.Styles}
}

func (p *StylePreset) SetFields(f PresetFields) {
	p.Name = f.Name
	p.ProjectID = f.ProjectID
	p.IsGlobal = f.IsGlobal
	p.ScopeKey = f.ScopeKey()
	p.Styles = f.Payload
}

// VariablePreset is a reusable list of enrichment variables
type VariablePreset struct {
	Base
	Name          string  `gorm:"size:100;not null;index:idx_variable_preset_scope_name,unique" json:"name"`
	ProjectID     *string `gorm:"type:char(36);index" json:"project"`
	ScopeKey      string  `gorm:"size:36;not null;default:'';index:idx_variable_preset_scope_name,unique" json:"-"`
	Variables     JSON    `json:"variables"`
	VariableCount int     `gorm:"-" json:"variable_count"`
	PresetMeta
}

// TableName overrides the table name for VariablePreset
func (VariablePreset) TableName() string {
	return "variable_presets"
}

func (p *VariablePreset) Key() string           { return p.ID }
func (p *VariablePreset) Kind() string          { return "variable" }
func (p *VariablePreset) PayloadColumn() string { return "variables" }
func (p *VariablePreset) Meta() *PresetMeta     { return &p.PresetMeta }

func (p *VariablePreset) Fields() PresetFields {
	return PresetFields{Name: p.Name, ProjectID: p.ProjectID, IsGlobal: p.IsGlobal, Payload: p.Variables}
}

func (p *VariablePreset) SetFields(f PresetFields) {
	p.Name = f.Name
	p.ProjectID = f.ProjectID
	p.IsGlobal = f.IsGlobal
	p.ScopeKey = f.ScopeKey()
	p.Variables = f.Payload
	p.countVariables()
}

// AfterFind fills the derived variable count
func (p *VariablePreset) AfterFind(tx *gorm.DB) error {
	p.countVariables()
	return nil
}

func (p *VariablePreset) countVariables() {
	var vars []json.RawMessage
	if p.Variables.IsNull() || json.Unmarshal(p.Variables.JSON, &vars) != nil {
		p.VariableCount = 0
		return
	}
	p.VariableCount = len(vars)
}
