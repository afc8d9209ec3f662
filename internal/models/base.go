package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identifier and timestamps shared by every record
type Base struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `gorm:"autoUpdateTime" json:"last_modified"`
}

// BeforeCreate assigns a UUID when the caller has not supplied one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// AreaTypes lists the market area types accepted by market areas and map configurations
var AreaTypes = []string{
	"radius", "zip", "county", "place", "tract", "block",
	"blockgroup", "cbsa", "state", "usa", "site_location",
}

// IsAreaType reports whether t is one of AreaTypes
func IsAreaType(t string) bool {
	for _, a := range AreaTypes {
		if a == t {
			return true
		}
	}
	return false
}
