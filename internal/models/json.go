package models

import (
	"bytes"
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping.
// Geometry, locations and layer payloads are stored opaquely through it.
type JSON struct {
	datatypes.JSON
}

// NewJSON wraps raw JSON bytes
func NewJSON(raw []byte) JSON {
	return JSON{JSON: datatypes.JSON(raw)}
}

// IsNull reports whether the value is absent or JSON null
func (j JSON) IsNull() bool {
	trimmed := bytes.TrimSpace(j.JSON)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsEmpty reports whether the value is null, an empty object, an empty array or an empty string
func (j JSON) IsEmpty() bool {
	if j.IsNull() {
		return true
	}
	switch string(bytes.TrimSpace(j.JSON)) {
	case "{}", "[]", `""`:
		return true
	}
	return false
}

// Value promotes the embedded JSON's Value method, storing SQL NULL for JSON null
func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		j.JSON = nil
		return nil
	}
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
