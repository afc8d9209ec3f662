package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/services"
	"gorm.io/gorm"
)

// UserHandler handles registration and the staff user list
type UserHandler struct {
	DB *gorm.DB
}

// Register handles POST /api/user/register
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "Registration"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /user/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := services.Register(h.DB, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB)
	if err != nil {
		return err
	}
	return c.JSON(users)
}
