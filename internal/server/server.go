// Package server assembles the Fiber application: middleware, the error
// envelope and every route of the API.
package server

import (
	"errors"
	"strings"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/handlers"
	"github.com/localnerve/mapsdb/internal/middleware"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/localnerve/mapsdb/internal/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	_ "github.com/localnerve/mapsdb/docs/api" // Swagger docs
)

// Deps are the collaborators shared by every handler
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.ReferenceCache
	Policy services.ProjectPolicy
	Auth   middleware.AuthConfig
}

var (
	prometheusOnce sync.Once
	prometheus     *fiberprometheus.FiberPrometheus
)

// httpMetrics registers the HTTP collectors once per process; tests build many apps
func httpMetrics() *fiberprometheus.FiberPrometheus {
	prometheusOnce.Do(func() {
		prometheus = fiberprometheus.New("mapsdb")
	})
	return prometheus
}

// New returns the configured application
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(deps.Config.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(compress.New())

	// Prometheus metrics
	prom := httpMetrics()
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	registerRoutes(app, deps)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return app
}

func registerRoutes(app *fiber.App, deps Deps) {
	env := handlers.Env{DB: deps.DB, Policy: deps.Policy}

	users := &handlers.UserHandler{DB: deps.DB}
	health := &handlers.HealthHandler{Config: deps.Config, DB: deps.DB}
	projects := &handlers.ProjectHandler{Env: env}
	areas := &handlers.MarketAreaHandler{Env: env}
	mapConfigs := &handlers.MapConfigurationHandler{Env: env}
	stylePresets := &handlers.StylePresetHandler{Env: env}
	variablePresets := &handlers.VariablePresetHandler{Env: env}
	reference := &handlers.ReferenceHandler{DB: deps.DB, Cache: deps.Cache}
	usage := &handlers.UsageHandler{Env: env, WindowDays: deps.Config.UsageWindowDays}
	labels := &handlers.LabelHandler{Env: env}

	api := app.Group("/api")

	// Public routes
	api.Get("/health", health.Health)
	api.Post("/user/register", users.Register)

	// Everything below requires a bearer token
	authed := api.Group("", middleware.Authenticate(deps.DB, deps.Auth))

	authed.Get("/projects", projects.ListProjects)
	authed.Post("/projects", projects.CreateProject)
	authed.Get("/projects/:id", projects.GetProject)
	authed.Put("/projects/:id", projects.UpdateProject)
	authed.Patch("/projects/:id", projects.UpdateProject)
	authed.Delete("/projects/:id", projects.DeleteProject)

	// reorder is registered ahead of /:id so it is not taken for an id
	ma := authed.Group("/projects/:project_id/market-areas")
	ma.Get("/", areas.ListMarketAreas)
	ma.Post("/", areas.CreateMarketArea)
	ma.Put("/reorder", areas.ReorderMarketAreas)
	ma.Get("/:id", areas.GetMarketArea)
	ma.Put("/:id", areas.UpdateMarketArea)
	ma.Patch("/:id", areas.UpdateMarketArea)
	ma.Delete("/:id", areas.DeleteMarketArea)

	mc := authed.Group("/map-configurations")
	mc.Get("/", mapConfigs.ListMapConfigurations)
	mc.Post("/", mapConfigs.CreateMapConfiguration)
	mc.Put("/reorder", mapConfigs.ReorderMapConfigurations)
	mc.Get("/:id", mapConfigs.GetMapConfiguration)
	mc.Put("/:id", mapConfigs.UpdateMapConfiguration)
	mc.Patch("/:id", mapConfigs.UpdateMapConfiguration)
	mc.Delete("/:id", mapConfigs.DeleteMapConfiguration)

	presetRoutes(authed.Group("/style-presets"), stylePresets.ListPresets, stylePresets.CreatePreset,
		stylePresets.GetPreset, stylePresets.UpdatePreset, stylePresets.DeletePreset, stylePresets.MakeGlobal)
	presetRoutes(authed.Group("/variable-presets"), variablePresets.ListPresets, variablePresets.CreatePreset,
		variablePresets.GetPreset, variablePresets.UpdatePreset, variablePresets.DeletePreset, variablePresets.MakeGlobal)

	ck := authed.Group("/color-keys")
	ck.Get("/", reference.ListColorKeys)
	ck.Post("/", reference.CreateColorKey)
	ck.Get("/:id", reference.GetColorKey)
	ck.Put("/:id", reference.UpdateColorKey)
	ck.Patch("/:id", reference.UpdateColorKey)
	ck.Delete("/:id", reference.DeleteColorKey)

	tt := authed.Group("/tcg-themes")
	tt.Get("/", reference.ListTcgThemes)
	tt.Post("/", reference.CreateTcgTheme)
	tt.Get("/:id", reference.GetTcgTheme)
	tt.Put("/:id", reference.UpdateTcgTheme)
	tt.Patch("/:id", reference.UpdateTcgTheme)
	tt.Delete("/:id", reference.DeleteTcgTheme)

	authed.Get("/enrichment", usage.ListMyUsage)
	authed.Post("/enrichment/record-usage", usage.RecordUsage)

	lp := authed.Group("/label-positions")
	lp.Get("/", labels.ListLabels)
	lp.Post("/", labels.UpsertLabel)
	lp.Post("/batch-save", labels.BatchSave)
	lp.Post("/reset-all", labels.ResetAll)
	lp.Get("/:id", labels.GetLabel)
	lp.Put("/:id", labels.UpdateLabel)
	lp.Delete("/:id", labels.DeleteLabel)

	admin := authed.Group("/admin", middleware.RequireStaff())
	admin.Get("/users", users.ListUsers)
	admin.Get("/users/usage-stats-all", usage.UsageStatsAll)
	admin.Get("/users/export-usage-stats", usage.ExportUsageStats)
}

func presetRoutes(r fiber.Router, list, create, get, update, remove, makeGlobal fiber.Handler) {
	r.Get("/", list)
	r.Post("/", create)
	r.Get("/:id", get)
	r.Put("/:id", update)
	r.Patch("/:id", update)
	r.Delete("/:id", remove)
	r.Post("/:id/make-global", makeGlobal)
}

// ErrorHandler renders every error in the standard envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == types.KindInternal {
			log.Error().Err(appErr.Err).Str("request_id", middleware.RequestIDFrom(c)).
				Str("path", c.Path()).Msg("Internal error")
		}
		return utils.ErrorResponse(c, appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if mapped := fromFiberError(fiberErr); mapped != nil {
			return utils.ErrorResponse(c, mapped)
		}
		return utils.StatusErrorResponse(c, fiberErr.Code, fiberErr.Message)
	}

	log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).
		Str("path", c.Path()).Msg("Unhandled error")
	return utils.ErrorResponse(c, types.Internal(err))
}

// fromFiberError maps framework errors onto AppError kinds, or nil to keep the code
func fromFiberError(e *fiber.Error) *types.AppError {
	switch e.Code {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return types.Validation(e.Message, nil)
	case fiber.StatusNotFound:
		return types.NotFound("%s", e.Message)
	case fiber.StatusUnauthorized:
		return types.Unauthorized(e.Message)
	case fiber.StatusForbidden:
		return types.Forbidden(e.Message)
	case fiber.StatusConflict:
		return types.Conflict("%s", e.Message)
	}
	return nil
}
