package models

// ColorKey is a numbered reference color
type ColorKey struct {
	Base
	KeyNumber string `gorm:"size:10;not null;uniqueIndex:idx_color_keys_key_number" json:"key_number"`
	ColorName string `gorm:"size:100;not null" json:"color_name"`
	R         int    `gorm:"column:r;not null" json:"R"`
	G         int    `gorm:"column:g;not null" json:"G"`
	B         int    `gorm:"column:b;not null" json:"B"`
	Hex       string `gorm:"column:hex;size:7;not null" json:"Hex"`
}

// TableName overrides the table name for ColorKey
func (ColorKey) TableName() string {
	return "color_keys"
}

// TcgTheme is a named map theme, optionally linked to a ColorKey
type TcgTheme struct {
	Base
	ThemeKey     string    `gorm:"size:10;not null;uniqueIndex:idx_tcg_themes_theme_key" json:"theme_key"`
	ThemeName    string    `gorm:"size:100;not null" json:"theme_name"`
	Fill         string    `gorm:"size:3;not null" json:"fill"`
	FillColor    string    `gorm:"size:10;not null;default:''" json:"fill_color"`
	ColorKeyID   *string   `gorm:"type:char(36);index" json:"color_key_id"`
	ColorKey     *ColorKey `gorm:"foreignKey:ColorKeyID" json:"color_key"`
	Transparency string    `gorm:"size:10;not null" json:"transparency"`
	Border       string    `gorm:"size:3;not null" json:"border"`
	Weight       string    `gorm:"size:10;not null" json:"weight"`
	ExcelFill    string    `gorm:"size:10;not null" json:"excel_fill"`
	ExcelText    string    `gorm:"size:10;not null" json:"excel_text"`
}

// TableName overrides the table name for TcgTheme
func (TcgTheme) TableName() string {
	return "tcg_themes"
}
