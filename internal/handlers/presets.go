package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/services"
)

type presetModel[T any] interface {
	*T
	models.Preset
}

// PresetHandler serves one preset kind. The style and variable preset
// routes are two instances of it.
type PresetHandler[T any, PT presetModel[T]] struct {
	Env
}

// StylePresetHandler handles /api/style-presets
type StylePresetHandler = PresetHandler[models.StylePreset, *models.StylePreset]

// VariablePresetHandler handles /api/variable-presets
type VariablePresetHandler = PresetHandler[models.VariablePreset, *models.VariablePreset]

// ListPresets handles GET /api/{kind}-presets?project=
// @Summary List presets visible to a project
// @Description The project's own presets plus every global preset. Without project, global presets only.
// @Tags Presets
// @Produce json
// @Security BearerAuth
// @Param project query string false "Project ID"
// @Success 200 {array} models.StylePreset
// @Router /style-presets [get]
// @Router /variable-presets [get]
func (h *PresetHandler[T, PT]) ListPresets(c *fiber.Ctx) error {
	presets, err := services.ResolvePresets[T, PT](h.DB, h.access(c), c.Query("project"))
	if err != nil {
		return err
	}
	return c.JSON(presets)
}

// CreatePreset handles POST /api/{kind}-presets
// @Summary Create a preset
// @Tags Presets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param preset body services.PresetInput true "Preset"
// @Success 201 {object} models.StylePreset
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /style-presets [post]
// @Router /variable-presets [post]
func (h *PresetHandler[T, PT]) CreatePreset(c *fiber.Ctx) error {
	var in services.PresetInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	preset, err := services.CreatePreset[T, PT](h.DB, h.access(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(preset)
}

// GetPreset handles GET /api/{kind}-presets/:id
func (h *PresetHandler[T, PT]) GetPreset(c *fiber.Ctx) error {
	preset, err := services.GetPreset[T, PT](h.DB, h.access(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(preset)
}

// UpdatePreset handles PUT and PATCH /api/{kind}-presets/:id
func (h *PresetHandler[T, PT]) UpdatePreset(c *fiber.Ctx) error {
	var in services.PresetInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	preset, err := services.UpdatePreset[T, PT](h.DB, h.access(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(preset)
}

// DeletePreset handles DELETE /api/{kind}-presets/:id
func (h *PresetHandler[T, PT]) DeletePreset(c *fiber.Ctx) error {
	if err := services.DeletePreset[T, PT](h.DB, h.access(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MakeGlobal handles POST /api/{kind}-presets/:id/make-global
// @Summary Promote a preset to global
// @Description Clears the project. Promoting a global preset changes nothing.
// @Tags Presets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Preset ID"
// @Success 200 {object} models.StylePreset
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /style-presets/{id}/make-global [post]
// @Router /variable-presets/{id}/make-global [post]
func (h *PresetHandler[T, PT]) MakeGlobal(c *fiber.Ctx) error {
	preset, err := services.PromoteToGlobal[T, PT](h.DB, h.access(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(preset)
}
