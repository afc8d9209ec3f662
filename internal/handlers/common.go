package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/middleware"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/types"
	"gorm.io/gorm"
)

// Env carries what every project-scoped handler needs
type Env struct {
	DB     *gorm.DB
	Policy services.ProjectPolicy
}

// access describes the authenticated caller to the services
func (e Env) access(c *fiber.Ctx) services.Access {
	acc := services.Access{Policy: e.Policy}
	if user := middleware.CurrentUser(c); user != nil {
		acc.UserID = user.ID
		acc.IsStaff = user.IsStaff
	}
	return acc
}

// parseBody decodes a JSON request body into out
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return types.Validation("request body is required", nil)
	}
	if err := c.BodyParser(out); err != nil {
		return types.Validation("invalid request body: "+err.Error(), nil)
	}
	return nil
}

// queryList collects a repeatable query parameter, also splitting comma-separated values.
// ?user_id=a&user_id=b,c yields [a b c].
func queryList(c *fiber.Ctx, key string) []string {
	seen := make(map[string]struct{})
	var values []string

	args := c.Context().QueryArgs()
	for _, raw := range args.PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	return values
}
