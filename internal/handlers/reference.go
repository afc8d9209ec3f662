package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/services"
	"gorm.io/gorm"
)

// ReferenceHandler handles the color key and TCG theme reference data
type ReferenceHandler struct {
	DB    *gorm.DB
	Cache *cache.ReferenceCache
}

// ListColorKeys handles GET /api/color-keys
// @Summary List color keys
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ColorKey
// @Router /color-keys [get]
func (h *ReferenceHandler) ListColorKeys(c *fiber.Ctx) error {
	keys, err := services.ListColorKeys(h.DB, h.Cache)
	if err != nil {
		return err
	}
	return c.JSON(keys)
}

// CreateColorKey handles POST /api/color-keys
// @Summary Create a color key
// @Tags Reference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key body services.ColorKeyInput true "Color key"
// @Success 201 {object} models.ColorKey
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /color-keys [post]
func (h *ReferenceHandler) CreateColorKey(c *fiber.Ctx) error {
	var in services.ColorKeyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	key, err := services.CreateColorKey(h.DB, h.Cache, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(key)
}

// GetColorKey handles GET /api/color-keys/:id
func (h *ReferenceHandler) GetColorKey(c *fiber.Ctx) error {
	key, err := services.GetColorKey(h.DB, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(key)
}

// UpdateColorKey handles PUT and PATCH /api/color-keys/:id
func (h *ReferenceHandler) UpdateColorKey(c *fiber.Ctx) error {
	var in services.ColorKeyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	key, err := services.UpdateColorKey(h.DB, h.Cache, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(key)
}

// DeleteColorKey handles DELETE /api/color-keys/:id
// @Summary Delete a color key
// @Description Themes linked to the key keep their fill color and lose the link
// @Tags Reference
// @Security BearerAuth
// @Param id path string true "Color key ID"
// @Success 204
// @Router /color-keys/{id} [delete]
func (h *ReferenceHandler) DeleteColorKey(c *fiber.Ctx) error {
	if err := services.DeleteColorKey(h.DB, h.Cache, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTcgThemes handles GET /api/tcg-themes
// @Summary List TCG themes with their color keys
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TcgTheme
// @Router /tcg-themes [get]
func (h *ReferenceHandler) ListTcgThemes(c *fiber.Ctx) error {
	themes, err := services.ListTcgThemes(h.DB, h.Cache)
	if err != nil {
		return err
	}
	return c.JSON(themes)
}

// CreateTcgTheme handles POST /api/tcg-themes
func (h *ReferenceHandler) CreateTcgTheme(c *fiber.Ctx) error {
	var in services.TcgThemeInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	theme, err := services.CreateTcgTheme(h.DB, h.Cache, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(theme)
}

// GetTcgTheme handles GET /api/tcg-themes/:id
func (h *ReferenceHandler) GetTcgTheme(c *fiber.Ctx) error {
	theme, err := services.GetTcgTheme(h.DB, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(theme)
}

// UpdateTcgTheme handles PUT and PATCH /api/tcg-themes/:id
// @Summary Update a TCG theme
// @Description A color_key_id links the key and copies its number into fill_color; otherwise a non-empty fill_color clears the link
// @Tags Reference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Theme ID"
// @Param theme body services.TcgThemeInput true "Fields to change"
// @Success 200 {object} models.TcgTheme
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /tcg-themes/{id} [put]
func (h *ReferenceHandler) UpdateTcgTheme(c *fiber.Ctx) error {
	var in services.TcgThemeInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	theme, err := services.UpdateTcgTheme(h.DB, h.Cache, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(theme)
}

// DeleteTcgTheme handles DELETE /api/tcg-themes/:id
func (h *ReferenceHandler) DeleteTcgTheme(c *fiber.Ctx) error {
	if err := services.DeleteTcgTheme(h.DB, h.Cache, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
