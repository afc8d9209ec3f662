package models

// LabelPosition is the saved placement of one map label. A project holds
// at most one position per label id.
type LabelPosition struct {
	Base
	ProjectID          string  `gorm:"type:char(36);not null;index:idx_label_position_project_label,unique" json:"project"`
	MapConfigurationID *string `gorm:"type:char(36);index" json:"map_configuration"`
	LabelID            string  `gorm:"size:255;not null;index:idx_label_position_project_label,unique" json:"label_id"`
	XOffset            float64 `gorm:"not null" json:"x_offset"`
	YOffset            float64 `gorm:"not null" json:"y_offset"`
	FontSize           int     `gorm:"not null" json:"font_size"`
	Text               string  `json:"text"`
	Visibility         bool    `gorm:"not null" json:"visibility"`
	CreatedByID        *string `gorm:"type:char(36)" json:"created_by"`
}

// TableName overrides the table name for LabelPosition
func (LabelPosition) TableName() string {
	return "label_positions"
}
