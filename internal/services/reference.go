package services

import (
	"sort"
	"strconv"

	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/validation"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	colorKeysCacheKey = "color_keys"
	tcgThemesCacheKey = "tcg_themes"
)

// ColorKeyInput is the body of color key create and update requests
type ColorKeyInput struct {
	KeyNumber *string `json:"key_number" validate:"omitnil,min=1,max=10"`
	ColorName *string `json:"color_name" validate:"omitnil,min=1,max=100"`
	R         *int    `json:"R" validate:"omitnil,gte=0,lte=255"`
	G         *int    `json:"G" validate:"omitnil,gte=0,lte=255"`
	B         *int    `json:"B" validate:"omitnil,gte=0,lte=255"`
	Hex       *string `json:"Hex" validate:"omitnil,hexcolor,max=7"`
}

type createColorKeyInput struct {
	KeyNumber *string `json:"key_number" validate:"required"`
	ColorName *string `json:"color_name" validate:"required"`
	R         *int    `json:"R" validate:"required"`
	G         *int    `json:"G" validate:"required"`
	B         *int    `json:"B" validate:"required"`
	Hex       *string `json:"Hex" validate:"required"`
}

// TcgThemeInput is the body of TCG theme create and update requests
type TcgThemeInput struct {
	ThemeKey     *string `json:"theme_key" validate:"omitnil,min=1,max=10"`
	ThemeName    *string `json:"theme_name" validate:"omitnil,min=1,max=100"`
	Fill         *string `json:"fill" validate:"omitnil,oneof=Yes No"`
	FillColor    *string `json:"fill_color" validate:"omitnil,max=10"`
	ColorKeyID   *string `json:"color_key_id" validate:"omitnil,min=1"`
	Transparency *string `json:"transparency" validate:"omitnil,max=10"`
	Border       *string `json:"border" validate:"omitnil,oneof=Yes No"`
	Weight       *string `json:"weight" validate:"omitnil,max=10"`
	ExcelFill    *string `json:"excel_fill" validate:"omitnil,max=10"`
	ExcelText    *string `json:"excel_text" validate:"omitnil,max=10"`
}

type createTcgThemeInput struct {
	ThemeKey     *string `json:"theme_key" validate:"required"`
	ThemeName    *string `json:"theme_name" validate:"required"`
	Fill         *string `json:"fill" validate:"required"`
	Transparency *string `json:"transparency" validate:"required"`
	Border       *string `json:"border" validate:"required"`
	Weight       *string `json:"weight" validate:"required"`
	ExcelFill    *string `json:"excel_fill" validate:"required"`
	ExcelText    *string `json:"excel_text" validate:"required"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// ListColorKeys returns every color key ordered by key number, read through the cache
func ListColorKeys(db *gorm.DB, c *cache.ReferenceCache) ([]models.ColorKey, error) {
	if v, ok := c.Get(colorKeysCacheKey); ok {
		if keys, ok := v.([]models.ColorKey); ok {
			return append([]models.ColorKey(nil), keys...), nil
		}
	}
	gen := c.Generation()
	keys := []models.ColorKey{}
	if err := db.Order("key_number").Find(&keys).Error; err != nil {
		return nil, wrapDB(err, "list color keys")
	}
	// key numbers are numeric strings, so "10" sorts after "9"
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i].KeyNumber)
		b, errB := strconv.Atoi(keys[j].KeyNumber)
		if errA != nil || errB != nil {
			return errA == nil && errB != nil
		}
		return a < b
	})
	c.Set(colorKeysCacheKey, keys, int64(len(keys))+1, gen)
	return append([]models.ColorKey(nil), keys...), nil
}

// GetColorKey returns one color key
func GetColorKey(db *gorm.DB, id string) (*models.ColorKey, error) {
	return findOne[models.ColorKey](db, "color key", id)
}

func colorKeyNumberTaken(tx *gorm.DB, number, exceptID string) (bool, error) {
	query := tx.Model(&models.ColorKey{}).Where("key_number = ?", number)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	return exists(query)
}

// CreateColorKey adds a reference color
func CreateColorKey(db *gorm.DB, c *cache.ReferenceCache, in ColorKeyInput) (*models.ColorKey, error) {
	if err := validation.Struct(&createColorKeyInput{
		KeyNumber: in.KeyNumber, ColorName: in.ColorName, R: in.R, G: in.G, B: in.B, Hex: in.Hex,
	}); err != nil {
		return nil, err
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	key := models.ColorKey{KeyNumber: *in.KeyNumber, ColorName: *in.ColorName, R: *in.R, G: *in.G, B: *in.B, Hex: *in.Hex}
	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := colorKeyNumberTaken(tx, key.KeyNumber, "")
		if err != nil {
			return wrapDB(err, "check key number")
		}
		if taken {
			return types.Conflict("color key %s already exists", key.KeyNumber)
		}
		return wrapDB(tx.Create(&key).Error, "create color key")
	})
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return &key, nil
}

// UpdateColorKey applies a partial update. Linked themes are not rewritten.
func UpdateColorKey(db *gorm.DB, c *cache.ReferenceCache, id string, in ColorKeyInput) (*models.ColorKey, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	var key *models.ColorKey
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if key, err = findOne[models.ColorKey](tx, "color key", id); err != nil {
			return err
		}
		if in.KeyNumber != nil && *in.KeyNumber != key.KeyNumber {
			taken, err := colorKeyNumberTaken(tx, *in.KeyNumber, key.ID)
			if err != nil {
				return wrapDB(err, "check key number")
			}
			if taken {
				return types.Conflict("color key %s already exists", *in.KeyNumber)
			}
		}
		setString(&key.KeyNumber, in.KeyNumber)
		setString(&key.ColorName, in.ColorName)
		setInt(&key.R, in.R)
		setInt(&key.G, in.G)
		setInt(&key.B, in.B)
		setString(&key.Hex, in.Hex)
		return wrapDB(tx.Save(key).Error, "update color key")
	})
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return key, nil
}

// DeleteColorKey removes a color key and unlinks the themes that referenced it
func DeleteColorKey(db *gorm.DB, c *cache.ReferenceCache, id string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		key, err := findOne[models.ColorKey](tx, "color key", id)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.TcgTheme{}).
			Where("color_key_id = ?", key.ID).
			Update("color_key_id", nil).Error; err != nil {
			return wrapDB(err, "unlink themes")
		}
		return wrapDB(tx.Delete(key).Error, "delete color key")
	})
	if err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// ListTcgThemes returns every theme with its color key, ordered by theme key
func ListTcgThemes(db *gorm.DB, c *cache.ReferenceCache) ([]models.TcgTheme, error) {
	if v, ok := c.Get(tcgThemesCacheKey); ok {
		if themes, ok := v.([]models.TcgTheme); ok {
			return append([]models.TcgTheme(nil), themes...), nil
		}
	}
	gen := c.Generation()
	themes := []models.TcgTheme{}
	if err := db.Preload("ColorKey").Order("theme_key").Find(&themes).Error; err != nil {
		return nil, wrapDB(err, "list themes")
	}
	c.Set(tcgThemesCacheKey, themes, int64(len(themes))+1, gen)
	return append([]models.TcgTheme(nil), themes...), nil
}

// GetTcgTheme returns one theme with its color key
func GetTcgTheme(db *gorm.DB, id string) (*models.TcgTheme, error) {
	var theme models.TcgTheme
	err := quiet(db).Preload("ColorKey").Where("id = ?", id).First(&theme).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("tcg theme %s not found", id)
	}
	if err != nil {
		return nil, wrapDB(err, "load tcg theme")
	}
	return &theme, nil
}

// applyThemeColor resolves the color representation of a theme. A color key
// link wins and copies the key number into fill_color; otherwise a non-empty
// fill_color is stored as given and the link is cleared.
func applyThemeColor(tx *gorm.DB, theme *models.TcgTheme, in TcgThemeInput) error {
	if in.ColorKeyID != nil && *in.ColorKeyID != "" {
		var key models.ColorKey
		err := quiet(tx).Where("id = ?", *in.ColorKeyID).First(&key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.FieldError("color_key_id", "Invalid Color Key ID.")
		}
		if err != nil {
			return wrapDB(err, "load color key")
		}
		theme.ColorKeyID = &key.ID
		theme.ColorKey = &key
		theme.FillColor = key.KeyNumber
		return nil
	}
	if in.FillColor != nil && *in.FillColor != "" {
		theme.FillColor = *in.FillColor
		theme.ColorKeyID = nil
		theme.ColorKey = nil
	}
	return nil
}

func themeKeyTaken(tx *gorm.DB, themeKey, exceptID string) (bool, error) {
	query := tx.Model(&models.TcgTheme{}).Where("theme_key = ?", themeKey)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	return exists(query)
}

func (in TcgThemeInput) apply(theme *models.TcgTheme) {
	setString(&theme.ThemeKey, in.ThemeKey)
	setString(&theme.ThemeName, in.ThemeName)
	setString(&theme.Fill, in.Fill)
	setString(&theme.Transparency, in.Transparency)
	setString(&theme.Border, in.Border)
	setString(&theme.Weight, in.Weight)
	setString(&theme.ExcelFill, in.ExcelFill)
	setString(&theme.ExcelText, in.ExcelText)
}

// CreateTcgTheme adds a theme, applying the color rules of applyThemeColor
func CreateTcgTheme(db *gorm.DB, c *cache.ReferenceCache, in TcgThemeInput) (*models.TcgTheme, error) {
	if err := validation.Struct(&createTcgThemeInput{
		ThemeKey: in.ThemeKey, ThemeName: in.ThemeName, Fill: in.Fill, Transparency: in.Transparency,
		Border: in.Border, Weight: in.Weight, ExcelFill: in.ExcelFill, ExcelText: in.ExcelText,
	}); err != nil {
		return nil, err
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var theme models.TcgTheme
	in.apply(&theme)
	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := themeKeyTaken(tx, theme.ThemeKey, "")
		if err != nil {
			return wrapDB(err, "check theme key")
		}
		if taken {
			return types.Conflict("tcg theme %s already exists", theme.ThemeKey)
		}
		if err := applyThemeColor(tx, &theme, in); err != nil {
			return err
		}
		return wrapDB(tx.Omit("ColorKey").Create(&theme).Error, "create tcg theme")
	})
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return &theme, nil
}

// UpdateTcgTheme applies a partial update and the color rules of applyThemeColor
func UpdateTcgTheme(db *gorm.DB, c *cache.ReferenceCache, id string, in TcgThemeInput) (*models.TcgTheme, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	var theme *models.TcgTheme
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if theme, err = GetTcgTheme(tx, id); err != nil {
			return err
		}
		if in.ThemeKey != nil && *in.ThemeKey != theme.ThemeKey {
			taken, err := themeKeyTaken(tx, *in.ThemeKey, theme.ID)
			if err != nil {
				return wrapDB(err, "check theme key")
			}
			if taken {
				return types.Conflict("tcg theme %s already exists", *in.ThemeKey)
			}
		}
		in.apply(theme)
		if err := applyThemeColor(tx, theme, in); err != nil {
			return err
		}
		return wrapDB(tx.Omit("ColorKey").Save(theme).Error, "update tcg theme")
	})
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return theme, nil
}

// DeleteTcgTheme removes one theme
func DeleteTcgTheme(db *gorm.DB, c *cache.ReferenceCache, id string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		theme, err := findOne[models.TcgTheme](tx, "tcg theme", id)
		if err != nil {
			return err
		}
		return wrapDB(tx.Omit("ColorKey").Delete(theme).Error, "delete tcg theme")
	})
	if err != nil {
		return err
	}
	c.Invalidate()
	return nil
}
