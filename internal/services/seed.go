package services

import (
	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/seeds"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SeedResult counts what a seed run created and what already existed
type SeedResult struct {
	ColorKeysCreated int `json:"color_keys_created"`
	ColorKeysSkipped int `json:"color_keys_skipped"`
	ThemesCreated    int `json:"themes_created"`
	ThemesSkipped    int `json:"themes_skipped"`
}

// SeedReferenceData inserts the standard color keys and themes that are not present yet.
// Existing rows are matched by key number and theme key and left unchanged.
func SeedReferenceData(db *gorm.DB, c *cache.ReferenceCache) (SeedResult, error) {
	var result SeedResult
	err := db.Transaction(func(tx *gorm.DB) error {
		keys := make(map[string]models.ColorKey, len(seeds.ColorKeys))
		for _, s := range seeds.ColorKeys {
			var key models.ColorKey
			res := tx.Where("key_number = ?", s.KeyNumber).Limit(1).Find(&key)
			if res.Error != nil {
				return wrapDB(res.Error, "seed color key")
			}
			if res.RowsAffected > 0 {
				result.ColorKeysSkipped++
				keys[key.KeyNumber] = key
				continue
			}
			key = models.ColorKey{KeyNumber: s.KeyNumber, ColorName: s.ColorName, R: s.R, G: s.G, B: s.B, Hex: s.Hex}
			if err := tx.Create(&key).Error; err != nil {
				return wrapDB(err, "seed color key")
			}
			result.ColorKeysCreated++
			keys[key.KeyNumber] = key
		}

		for _, s := range seeds.TcgThemes {
			key, ok := keys[s.ColorKey]
			if !ok {
				log.Warn().Str("theme", s.ThemeKey).Str("color_key", s.ColorKey).Msg("Color key missing, skipping theme")
				continue
			}
			theme := models.TcgTheme{
				ThemeKey:     s.ThemeKey,
				ThemeName:    s.ThemeName,
				Fill:         s.Fill,
				FillColor:    key.KeyNumber,
				ColorKeyID:   &key.ID,
				Transparency: s.Transparency,
				Border:       s.Border,
				Weight:       s.Weight,
				ExcelFill:    s.ExcelFill,
				ExcelText:    s.ExcelText,
			}
			found, err := themeKeyTaken(tx, s.ThemeKey, "")
			if err != nil {
				return wrapDB(err, "seed tcg theme")
			}
			if found {
				result.ThemesSkipped++
				continue
			}
			if err := tx.Omit("ColorKey").Create(&theme).Error; err != nil {
				return wrapDB(err, "seed tcg theme")
			}
			result.ThemesCreated++
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	c.Invalidate()
	log.Info().
		Int("color_keys", result.ColorKeysCreated).
		Int("themes", result.ThemesCreated).
		Msg("Reference data seeded")
	return result, nil
}
