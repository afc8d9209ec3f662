package models

// MapConfiguration is a named map tab within a project
type MapConfiguration struct {
	Base
	ProjectID          string  `gorm:"type:char(36);not null;index:idx_map_configuration_project_tab,unique" json:"project"`
	TabName            string  `gorm:"size:100;not null;index:idx_map_configuration_project_tab,unique" json:"tab_name"`
	VisualizationType  *string `gorm:"size:50" json:"visualization_type"`
	AreaType           string  `gorm:"size:20;not null" json:"area_type"`
	LayerConfiguration JSON    `json:"layer_configuration"`
	Order              int     `gorm:"column:display_order;not null;default:0" json:"order"`
}

// TableName overrides the table name for MapConfiguration
func (MapConfiguration) TableName() string {
	return "map_configurations"
}
