package models

// DefaultStyleSettings is stored when a market area is saved without style settings
const DefaultStyleSettings = `{"fillColor":"#0078D4","fillOpacity":0.3,"borderColor":"#0078D4","borderWidth":2}`

// MarketArea is a geographic region attached to a project. Which of the
// payload columns are populated depends on MAType.
type MarketArea struct {
	Base
	ProjectID        string `gorm:"type:char(36);not null;index:idx_market_area_project_name,unique" json:"project"`
	Name             string `gorm:"size:100;not null;index:idx_market_area_project_name,unique" json:"name"`
	ShortName        string `gorm:"size:50" json:"short_name"`
	MAType           string `gorm:"column:ma_type;size:20;not null" json:"ma_type"`
	Geometry         JSON   `json:"geometry"`
	StyleSettings    JSON   `json:"style_settings"`
	Locations        JSON   `json:"locations"`
	RadiusPoints     JSON   `json:"radius_points"`
	DriveTimePoints  JSON   `json:"drive_time_points"`
	SiteLocationData JSON   `json:"site_location_data"`
	Order            int    `gorm:"column:display_order;not null;default:0" json:"order"`
}

// TableName overrides the table name for MarketArea
func (MarketArea) TableName() string {
	return "market_areas"
}
