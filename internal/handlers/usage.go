package handlers

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/services"
)

// UsageHandler handles enrichment usage recording and the staff usage reports
type UsageHandler struct {
	Env
	WindowDays int
}

// ListMyUsage handles GET /api/enrichment
// @Summary List the caller's enrichment usage
// @Tags Enrichment
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.UsageView
// @Router /enrichment [get]
func (h *UsageHandler) ListMyUsage(c *fiber.Ctx) error {
	rows, err := services.ListMyUsage(h.DB, h.access(c))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// RecordUsage handles POST /api/enrichment/record-usage
// @Summary Record an enrichment charge
// @Description Appends one ledger row. cost must be non-negative with at most 2 decimal places.
// @Tags Enrichment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param usage body services.RecordUsageInput true "Charge"
// @Success 201 {object} services.UsageView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /enrichment/record-usage [post]
func (h *UsageHandler) RecordUsage(c *fiber.Ctx) error {
	var in services.RecordUsageInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	row, err := services.RecordUsage(h.DB, h.access(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// UsageStatsAll handles GET /api/admin/users/usage-stats-all
// @Summary Usage totals for every user over the stats window
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.UserUsage
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/users/usage-stats-all [get]
func (h *UsageHandler) UsageStatsAll(c *fiber.Ctx) error {
	stats, err := services.UsageStats(h.DB, h.WindowDays, time.Now())
	if err != nil {
		return err
	}
	rows := make([]services.UserUsage, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Username < rows[j].Username })
	return c.JSON(fiber.Map{
		"window_days": h.WindowDays,
		"users":       rows,
	})
}

// ExportUsageStats handles GET /api/admin/users/export-usage-stats
// @Summary Export the usage ledger as CSV
// @Tags Admin
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string false "First day, YYYY-MM-DD"
// @Param end_date query string false "Last day, YYYY-MM-DD"
// @Param user_id query []string false "Users to include" collectionFormat(multi)
// @Success 200 {string} string "CSV"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /admin/users/export-usage-stats [get]
func (h *UsageHandler) ExportUsageStats(c *fiber.Ctx) error {
	filter, err := services.ParseExportFilter(c.Query("start_date"), c.Query("end_date"), queryList(c, "user_id"))
	if err != nil {
		return err
	}
	// Render fully before any header goes out so a failed export gets the JSON error envelope
	var buf bytes.Buffer
	if err := services.ExportUsage(h.DB, filter, &buf); err != nil {
		return err
	}
	filename := fmt.Sprintf("usage-stats-%s.csv", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
