package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/utils"
)

// LabelHandler handles saved map label positions
type LabelHandler struct {
	Env
}

// ListLabels handles GET /api/label-positions
// @Summary List saved label positions
// @Tags Labels
// @Produce json
// @Security BearerAuth
// @Param project query string false "Project ID"
// @Param map_configuration query string false "Map configuration ID"
// @Success 200 {array} models.LabelPosition
// @Router /label-positions [get]
func (h *LabelHandler) ListLabels(c *fiber.Ctx) error {
	labels, err := services.ListLabels(h.DB, h.access(c), c.Query("project"), c.Query("map_configuration"))
	if err != nil {
		return err
	}
	return c.JSON(labels)
}

// UpsertLabel handles POST /api/label-positions
// @Summary Save one label position
// @Description Updates the label stored under (project, label_id) or creates it
// @Tags Labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param label body services.LabelInput true "Label position"
// @Success 200 {object} models.LabelPosition
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /label-positions [post]
func (h *LabelHandler) UpsertLabel(c *fiber.Ctx) error {
	var in services.LabelInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	label, err := services.UpsertLabel(h.DB, h.access(c), in)
	if err != nil {
		return err
	}
	return c.JSON(label)
}

// GetLabel handles GET /api/label-positions/:id
func (h *LabelHandler) GetLabel(c *fiber.Ctx) error {
	label, err := services.GetLabel(h.DB, h.access(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(label)
}

// UpdateLabel handles PUT /api/label-positions/:id
func (h *LabelHandler) UpdateLabel(c *fiber.Ctx) error {
	var in services.LabelInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	label, err := services.UpdateLabel(h.DB, h.access(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(label)
}

// DeleteLabel handles DELETE /api/label-positions/:id
func (h *LabelHandler) DeleteLabel(c *fiber.Ctx) error {
	if err := services.DeleteLabel(h.DB, h.access(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BatchSave handles POST /api/label-positions/batch-save
// @Summary Save many label positions at once
// @Description labels may be a list or a single object. The whole batch is one transaction.
// @Tags Labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param batch body services.BatchSaveInput true "Labels"
// @Success 200 {array} models.LabelPosition
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /label-positions/batch-save [post]
func (h *LabelHandler) BatchSave(c *fiber.Ctx) error {
	var in services.BatchSaveInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	labels, err := services.BatchSaveLabels(h.DB, h.access(c), in)
	if err != nil {
		return err
	}
	return c.JSON(labels)
}

// ResetAll handles POST /api/label-positions/reset-all
// @Summary Delete a project's saved label positions
// @Tags Labels
// @Produce json
// @Security BearerAuth
// @Param project query string true "Project ID"
// @Param map_configuration query string false "Limit to one map configuration"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /label-positions/reset-all [post]
func (h *LabelHandler) ResetAll(c *fiber.Ctx) error {
	projectID := c.Query("project")
	if projectID == "" {
		return types.FieldError("project", "this field is required")
	}
	deleted, err := services.ResetLabels(h.DB, h.access(c), projectID, c.Query("map_configuration"))
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, deleted)
}
