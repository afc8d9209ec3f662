package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/services"
)

// ProjectHandler handles project routes
type ProjectHandler struct {
	Env
}

// ListProjects handles GET /api/projects
// @Summary List projects
// @Description List the projects visible to the caller, most recently modified first
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := services.ListProjects(h.DB, h.access(c))
	if err != nil {
		return err
	}
	return c.JSON(projects)
}

// CreateProject handles POST /api/projects
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project body services.ProjectInput true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	project, err := services.CreateProject(h.DB, h.access(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProject handles GET /api/projects/:id
// @Summary Get a project with its market areas and members
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	project, err := services.GetProject(h.DB, h.access(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(project)
}

// UpdateProject handles PUT and PATCH /api/projects/:id
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param project body services.ProjectInput true "Fields to change"
// @Success 200 {object} models.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	project, err := services.UpdateProject(h.DB, h.access(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete a project and everything it owns
// @Tags Projects
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	if err := services.DeleteProject(h.DB, h.access(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
