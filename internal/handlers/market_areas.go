package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/validation"
)

// MarketAreaHandler handles the market area routes nested under a project
type MarketAreaHandler struct {
	Env
}

// ListMarketAreas handles GET /api/projects/:project_id/market-areas
// @Summary List a project's market areas in display order
// @Tags MarketAreas
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Success 200 {array} models.MarketArea
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{project_id}/market-areas [get]
func (h *MarketAreaHandler) ListMarketAreas(c *fiber.Ctx) error {
	areas, err := services.ListMarketAreas(h.DB, h.access(c), c.Params("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(areas)
}

// CreateMarketArea handles POST /api/projects/:project_id/market-areas
// @Summary Create a market area
// @Description Appends after the existing areas unless order is given
// @Tags MarketAreas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param area body services.MarketAreaInput true "Market area"
// @Success 201 {object} models.MarketArea
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /projects/{project_id}/market-areas [post]
func (h *MarketAreaHandler) CreateMarketArea(c *fiber.Ctx) error {
	var in services.MarketAreaInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	area, err := services.CreateMarketArea(h.DB, h.access(c), c.Params("project_id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(area)
}

// GetMarketArea handles GET /api/projects/:project_id/market-areas/:id
// @Summary Get a market area
// @Tags MarketAreas
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param id path string true "Market area ID"
// @Success 200 {object} models.MarketArea
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{project_id}/market-areas/{id} [get]
func (h *MarketAreaHandler) GetMarketArea(c *fiber.Ctx) error {
	area, err := services.GetMarketArea(h.DB, h.access(c), c.Params("project_id"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(area)
}

// UpdateMarketArea handles PUT and PATCH /api/projects/:project_id/market-areas/:id
// @Summary Update a market area
// @Tags MarketAreas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param id path string true "Market area ID"
// @Param area body services.MarketAreaInput true "Fields to change"
// @Success 200 {object} models.MarketArea
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /projects/{project_id}/market-areas/{id} [put]
func (h *MarketAreaHandler) UpdateMarketArea(c *fiber.Ctx) error {
	var in services.MarketAreaInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	area, err := services.UpdateMarketArea(h.DB, h.access(c), c.Params("project_id"), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(area)
}

// DeleteMarketArea handles DELETE /api/projects/:project_id/market-areas/:id
// @Summary Delete a market area
// @Tags MarketAreas
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param id path string true "Market area ID"
// @Success 204
// @Router /projects/{project_id}/market-areas/{id} [delete]
func (h *MarketAreaHandler) DeleteMarketArea(c *fiber.Ctx) error {
	if err := services.DeleteMarketArea(h.DB, h.access(c), c.Params("project_id"), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderMarketAreas handles PUT /api/projects/:project_id/market-areas/reorder
// @Summary Reorder a project's market areas
// @Description order must list every market area of the project exactly once
// @Tags MarketAreas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param order body services.ReorderInput true "Ids in the new order"
// @Success 200 {array} models.MarketArea
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /projects/{project_id}/market-areas/reorder [put]
func (h *MarketAreaHandler) ReorderMarketAreas(c *fiber.Ctx) error {
	var in services.ReorderInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := validation.Struct(&in); err != nil {
		return err
	}
	areas, err := services.ReorderMarketAreas(h.DB, h.access(c), c.Params("project_id"), in.Order)
	if err != nil {
		return err
	}
	return c.JSON(areas)
}
