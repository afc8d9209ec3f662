package models

// Project owns market areas, map configurations, label positions,
// enrichment usage and project-scoped presets.
type Project struct {
	Base
	ProjectNumber    string       `gorm:"size:20;not null" json:"project_number"`
	Client           string       `gorm:"size:100;not null" json:"client"`
	Location         string       `gorm:"size:100;not null" json:"location"`
	Description      string       `json:"description"`
	Users            []User       `gorm:"many2many:project_users" json:"users"`
	MarketAreas      []MarketArea `gorm:"foreignKey:ProjectID" json:"market_areas"`
	MarketAreasCount int          `gorm:"-" json:"market_areas_count"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectUser is the membership join row between projects and users
type ProjectUser struct {
	ProjectID string `gorm:"type:char(36);primaryKey"`
	UserID    string `gorm:"type:char(36);primaryKey"`
}

// TableName overrides the table name for ProjectUser
func (ProjectUser) TableName() string {
	return "project_users"
}
