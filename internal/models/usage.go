package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnrichmentUsage is one append-only ledger charge
type EnrichmentUsage struct {
	Base
	UserID    string          `gorm:"type:char(36);not null;index" json:"user"`
	ProjectID string          `gorm:"type:char(36);not null;index" json:"project"`
	Cost      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	Timestamp time.Time       `gorm:"column:recorded_at;not null;index" json:"timestamp"`
}

// TableName overrides the table name for EnrichmentUsage
func (EnrichmentUsage) TableName() string {
	return "enrichment_usage"
}
