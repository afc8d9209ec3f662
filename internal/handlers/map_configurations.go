package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/validation"
)

// MapConfigurationHandler handles map configuration (tab) routes
type MapConfigurationHandler struct {
	Env
}

// ListMapConfigurations handles GET /api/map-configurations?project=
// @Summary List map configurations
// @Description With project, that project's tabs in display order; otherwise every visible tab
// @Tags MapConfigurations
// @Produce json
// @Security BearerAuth
// @Param project query string false "Project ID"
// @Success 200 {array} models.MapConfiguration
// @Router /map-configurations [get]
func (h *MapConfigurationHandler) ListMapConfigurations(c *fiber.Ctx) error {
	configs, err := services.ListMapConfigurations(h.DB, h.access(c), c.Query("project"))
	if err != nil {
		return err
	}
	return c.JSON(configs)
}

// CreateMapConfiguration handles POST /api/map-configurations
// @Summary Create a map configuration
// @Description An existing tab with the same name in the project is replaced
// @Tags MapConfigurations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param config body services.MapConfigurationInput true "Map configuration"
// @Success 201 {object} models.MapConfiguration
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /map-configurations [post]
func (h *MapConfigurationHandler) CreateMapConfiguration(c *fiber.Ctx) error {
	var in services.MapConfigurationInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cfg, err := services.CreateMapConfiguration(h.DB, h.access(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// GetMapConfiguration handles GET /api/map-configurations/:id
// @Summary Get a map configuration
// @Tags MapConfigurations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Map configuration ID"
// @Success 200 {object} models.MapConfiguration
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /map-configurations/{id} [get]
func (h *MapConfigurationHandler) GetMapConfiguration(c *fiber.Ctx) error {
	cfg, err := services.GetMapConfiguration(h.DB, h.access(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

// UpdateMapConfiguration handles PUT and PATCH /api/map-configurations/:id
// @Summary Update a map configuration
// @Tags MapConfigurations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Map configuration ID"
// @Param config body services.MapConfigurationInput true "Fields to change"
// @Success 200 {object} models.MapConfiguration
// @Router /map-configurations/{id} [put]
func (h *MapConfigurationHandler) UpdateMapConfiguration(c *fiber.Ctx) error {
	var in services.MapConfigurationInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cfg, err := services.UpdateMapConfiguration(h.DB, h.access(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

// DeleteMapConfiguration handles DELETE /api/map-configurations/:id
// @Summary Delete a map configuration
// @Tags MapConfigurations
// @Security BearerAuth
// @Param id path string true "Map configuration ID"
// @Success 204
// @Router /map-configurations/{id} [delete]
func (h *MapConfigurationHandler) DeleteMapConfiguration(c *fiber.Ctx) error {
	if err := services.DeleteMapConfiguration(h.DB, h.access(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderMapConfigurations handles PUT /api/map-configurations/reorder
// @Summary Reorder a project's tabs
// @Tags MapConfigurations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body services.ReorderInput true "Project and ids in the new order"
// @Success 200 {array} models.MapConfiguration
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /map-configurations/reorder [put]
func (h *MapConfigurationHandler) ReorderMapConfigurations(c *fiber.Ctx) error {
	var in services.ReorderInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := validation.Struct(&in); err != nil {
		return err
	}
	configs, err := services.ReorderMapConfigurations(h.DB, h.access(c), in.Project, in.Order)
	if err != nil {
		return err
	}
	return c.JSON(configs)
}
