package services_test

import (
	"testing"

	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/seeds"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/testutil"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCache(t *testing.T) *cache.ReferenceCache {
	t.Helper()
	c, err := cache.NewReferenceCache()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func colorKeyInput(number, name, hex string) services.ColorKeyInput {
	return services.ColorKeyInput{
		KeyNumber: testutil.Ptr(number),
		ColorName: testutil.Ptr(name),
		R:         testutil.Ptr(10),
		G:         testutil.Ptr(20),
		B:         testutil.Ptr(30),
		Hex:       testutil.Ptr(hex),
	}
}

func themeInput(key string) services.TcgThemeInput {
	return services.TcgThemeInput{
		ThemeKey:     testutil.Ptr(key),
		ThemeName:    testutil.Ptr("Theme " + key),
		Fill:         testutil.Ptr("Yes"),
		Transparency: testutil.Ptr("65%"),
		Border:       testutil.Ptr("No"),
		Weight:       testutil.Ptr("-"),
		ExcelFill:    testutil.Ptr("1"),
		ExcelText:    testutil.Ptr("White"),
	}
}

func TestThemeColorRules(t *testing.T) {
	db, _ := setup(t)
	c := newCache(t)

	key, err := services.CreateColorKey(db, c, colorKeyInput("7", "Cyan", "#39FFFF"))
	require.NoError(t, err)

	in := themeInput("A")
	in.ColorKeyID = &key.ID
	in.FillColor = testutil.Ptr("#123456")
	theme, err := services.CreateTcgTheme(db, c, in)
	require.NoError(t, err)
	require.NotNil(t, theme.ColorKeyID)
	assert.Equal(t, key.ID, *theme.ColorKeyID)
	assert.Equal(t, "7", theme.FillColor, "a linked key overrides fill_color")

	updated, err := services.UpdateTcgTheme(db, c, theme.ID, services.TcgThemeInput{FillColor: testutil.Ptr("#ABCDEF")})
	require.NoError(t, err)
	assert.Nil(t, updated.ColorKeyID)
	assert.Equal(t, "#ABCDEF", updated.FillColor)

	_, err = services.UpdateTcgTheme(db, c, theme.ID, services.TcgThemeInput{ColorKeyID: testutil.Ptr("missing")})
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid Color Key ID.", appErr.Fields["color_key_id"])

	// an empty update changes neither representation
	same, err := services.UpdateTcgTheme(db, c, theme.ID, services.TcgThemeInput{ThemeName: testutil.Ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "#ABCDEF", same.FillColor)
	assert.Equal(t, "Renamed", same.ThemeName)
}

func TestDeleteColorKeyUnlinksThemes(t *testing.T) {
	db, _ := setup(t)
	c := newCache(t)

	key, err := services.CreateColorKey(db, c, colorKeyInput("1", "Red", "#FF0000"))
	require.NoError(t, err)
	in := themeInput("A")
	in.ColorKeyID = &key.ID
	theme, err := services.CreateTcgTheme(db, c, in)
	require.NoError(t, err)

	require.NoError(t, services.DeleteColorKey(db, c, key.ID))

	kept, err := services.GetTcgTheme(db, theme.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ColorKeyID)
	assert.Nil(t, kept.ColorKey)
	assert.Equal(t, "1", kept.FillColor)
}

func TestReferenceCacheInvalidation(t *testing.T) {
	db, _ := setup(t)
	c := newCache(t)

	_, err := services.CreateColorKey(db, c, colorKeyInput("10", "Green", "#4C7A1D"))
	require.NoError(t, err)
	_, err = services.CreateColorKey(db, c, colorKeyInput("9", "Pink", "#FF47CF"))
	require.NoError(t, err)

	keys, err := services.ListColorKeys(db, c)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "9", keys[0].KeyNumber, "key numbers sort numerically")

	_, err = services.CreateColorKey(db, c, colorKeyInput("11", "Blue", "#054A63"))
	require.NoError(t, err)
	keys, err = services.ListColorKeys(db, c)
	require.NoError(t, err)
	assert.Len(t, keys, 3, "writes invalidate the cached list")

	_, err = services.CreateColorKey(db, c, colorKeyInput("9", "Again", "#000000"))
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestWriteDuringListLoadIsNotCachedStale(t *testing.T) {
	db, _ := setup(t)
	c := newCache(t)

	_, err := services.CreateColorKey(db, c, colorKeyInput("1", "Red", "#FF0000"))
	require.NoError(t, err)

	// a write lands after the list query has read its rows but before the list is cached
	var wrote bool
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:interleave_write", func(tx *gorm.DB) {
		if wrote || tx.Statement.Table != "color_keys" {
			return
		}
		wrote = true
		_, err := services.CreateColorKey(db, c, colorKeyInput("2", "Blue", "#0000FF"))
		require.NoError(t, err)
	}))

	keys, err := services.ListColorKeys(db, c)
	require.NoError(t, err)
	require.True(t, wrote)
	assert.Len(t, keys, 1, "the racing read saw the old rows")

	keys, err = services.ListColorKeys(db, c)
	require.NoError(t, err)
	assert.Len(t, keys, 2, "the stale list was not cached")
}

func TestSeedReferenceDataIsIdempotent(t *testing.T) {
	db, _ := setup(t)
	c := newCache(t)

	first, err := services.SeedReferenceData(db, c)
	require.NoError(t, err)
	assert.Equal(t, len(seeds.ColorKeys), first.ColorKeysCreated)
	assert.Equal(t, len(seeds.TcgThemes), first.ThemesCreated)

	second, err := services.SeedReferenceData(db, c)
	require.NoError(t, err)
	assert.Zero(t, second.ColorKeysCreated)
	assert.Zero(t, second.ThemesCreated)
	assert.Equal(t, len(seeds.TcgThemes), second.ThemesSkipped)

	themes, err := services.ListTcgThemes(db, c)
	require.NoError(t, err)
	require.Len(t, themes, 24)
	assert.Equal(t, "A", themes[0].ThemeKey)
	require.NotNil(t, themes[0].ColorKey)
	assert.Equal(t, "TCG Red", themes[0].ColorKey.ColorName)
	assert.Equal(t, "1", themes[0].FillColor)
}
