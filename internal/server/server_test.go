package server_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/server"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/testutil"
	"github.com/localnerve/mapsdb/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	app     *fiber.App
	db      *gorm.DB
	planner models.User
	admin   models.User
	token   string
	staff   string
}

func setupApp(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	refCache, err := cache.NewReferenceCache()
	require.NoError(t, err)
	t.Cleanup(refCache.Close)

	cfg := &config.Config{
		CORSOrigins:       "*",
		DBType:            "sqlite",
		DBDatabase:        "memory",
		JWTSecret:         string(testutil.TestAuth.Secret),
		JWTIssuer:         testutil.TestAuth.Issuer,
		ProjectVisibility: config.VisibilityAll,
		UsageWindowDays:   30,
	}
	app := server.New(server.Deps{
		Config: cfg,
		DB:     db,
		Cache:  refCache,
		Policy: services.AllProjects{},
		Auth:   testutil.TestAuth,
	})

	planner := testutil.CreateUser(t, db, "planner", false)
	admin := testutil.CreateUser(t, db, "admin", true)
	return &fixture{
		app:     app,
		db:      db,
		planner: planner,
		admin:   admin,
		token:   testutil.Token(t, planner.ID),
		staff:   testutil.Token(t, admin.ID),
	}
}

func (f *fixture) createProject(t *testing.T, number string) models.Project {
	t.Helper()
	resp := testutil.Request(t, f.app, http.MethodPost, "/api/projects", f.token, map[string]any{
		"project_number": number,
		"client":         "Acme",
		"location":       "Denver, CO",
	})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var project models.Project
	testutil.ParseJSON(t, resp, &project)
	return project
}

func (f *fixture) createArea(t *testing.T, projectID, name string) models.MarketArea {
	t.Helper()
	resp := testutil.Request(t, f.app, http.MethodPost, "/api/projects/"+projectID+"/market-areas", f.token, map[string]any{
		"name":      name,
		"ma_type":   "zip",
		"locations": []map[string]string{{"id": "80202"}},
	})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var area models.MarketArea
	testutil.ParseJSON(t, resp, &area)
	return area
}

func TestRequiresBearerToken(t *testing.T) {
	f := setupApp(t)

	resp := testutil.Request(t, f.app, http.MethodGet, "/api/projects", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/projects", "not-a-token", nil)
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/projects", f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
}

func TestRegisterIsPublic(t *testing.T) {
	f := setupApp(t)

	body := map[string]string{"username": "newcomer", "email": "newcomer@example.com", "password": "long enough secret"}
	resp := testutil.Request(t, f.app, http.MethodPost, "/api/user/register", "", body)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	raw := testutil.ReadBody(t, resp)
	assert.Contains(t, raw, `"username":"newcomer"`)
	assert.NotContains(t, raw, "password")

	resp = testutil.Request(t, f.app, http.MethodPost, "/api/user/register", "", body)
	testutil.AssertStatus(t, resp, fiber.StatusConflict)
}

func TestMarketAreaReorderEndToEnd(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-1")
	a := f.createArea(t, project.ID, "A")
	b := f.createArea(t, project.ID, "B")
	c := f.createArea(t, project.ID, "C")
	assert.Equal(t, []int{0, 1, 2}, []int{a.Order, b.Order, c.Order})

	base := "/api/projects/" + project.ID + "/market-areas"
	resp := testutil.Request(t, f.app, http.MethodPut, base+"/reorder", f.token, map[string]any{
		"order": []string{c.ID, a.ID, b.ID},
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Request(t, f.app, http.MethodGet, base, f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var listed []models.MarketArea
	testutil.ParseJSON(t, resp, &listed)
	require.Len(t, listed, 3)
	for i, want := range []string{"C", "A", "B"} {
		assert.Equal(t, want, listed[i].Name)
		assert.Equal(t, i, listed[i].Order)
	}
}

func TestMarketAreaReorderRejectsPartialList(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-2")
	a := f.createArea(t, project.ID, "A")
	b := f.createArea(t, project.ID, "B")

	base := "/api/projects/" + project.ID + "/market-areas"
	resp := testutil.Request(t, f.app, http.MethodPut, base+"/reorder", f.token, map[string]any{
		"order": []string{b.ID},
	})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
	var envelope utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &envelope)
	assert.Equal(t, "validation", envelope.Type)
	assert.Contains(t, envelope.Fields, "order")

	resp = testutil.Request(t, f.app, http.MethodGet, base, f.token, nil)
	var listed []models.MarketArea
	testutil.ParseJSON(t, resp, &listed)
	require.Len(t, listed, 2)
	assert.Equal(t, a.ID, listed[0].ID)
	assert.Equal(t, b.ID, listed[1].ID)
}

func TestMarketAreaDuplicateNameConflicts(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-3")
	f.createArea(t, project.ID, "A")

	resp := testutil.Request(t, f.app, http.MethodPost, "/api/projects/"+project.ID+"/market-areas", f.token, map[string]any{
		"name":      "A",
		"ma_type":   "zip",
		"locations": []map[string]string{{"id": "80203"}},
	})
	testutil.AssertStatus(t, resp, fiber.StatusConflict)
}

func TestUnknownProjectIsNotFound(t *testing.T) {
	f := setupApp(t)
	resp := testutil.Request(t, f.app, http.MethodGet, "/api/projects/missing/market-areas", f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestMakeGlobalEndToEnd(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-4")

	resp := testutil.Request(t, f.app, http.MethodPost, "/api/style-presets", f.token, map[string]any{
		"name":    "S1",
		"project": project.ID,
		"styles": map[string]any{
			"zip": map[string]any{"fillColor": "#ff0000", "fillOpacity": 0.4, "borderColor": "#000000", "borderWidth": 1},
		},
	})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var preset models.StylePreset
	testutil.ParseJSON(t, resp, &preset)

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/style-presets", f.token, nil)
	var globals []models.StylePreset
	testutil.ParseJSON(t, resp, &globals)
	assert.Empty(t, globals)

	for i := 0; i < 2; i++ {
		resp = testutil.Request(t, f.app, http.MethodPost, "/api/style-presets/"+preset.ID+"/make-global", f.token, nil)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
	}

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/style-presets", f.token, nil)
	testutil.ParseJSON(t, resp, &globals)
	require.Len(t, globals, 1)
	assert.Equal(t, "S1", globals[0].Name)
	assert.True(t, globals[0].IsGlobal)
	assert.Nil(t, globals[0].ProjectID)
}

func TestPresetRejectsGlobalWithProject(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-5")

	resp := testutil.Request(t, f.app, http.MethodPost, "/api/variable-presets", f.token, map[string]any{
		"name":      "V1",
		"project":   project.ID,
		"is_global": true,
		"variables": []string{"population"},
	})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestRecordUsageAndStats(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-6")

	tests := []struct {
		name   string
		cost   any
		status int
	}{
		{"negative", -1.00, fiber.StatusBadRequest},
		{"three decimals", "3.005", fiber.StatusBadRequest},
		{"valid", 3.00, fiber.StatusCreated},
		{"string amount", "1.50", fiber.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Request(t, f.app, http.MethodPost, "/api/enrichment/record-usage", f.token, map[string]any{
				"project_id": project.ID,
				"cost":       tt.cost,
			})
			testutil.AssertStatus(t, resp, tt.status)
		})
	}

	resp := testutil.Request(t, f.app, http.MethodGet, "/api/admin/users/usage-stats-all", f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/admin/users/usage-stats-all", f.staff, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var stats struct {
		WindowDays int `json:"window_days"`
		Users      []struct {
			Username   string `json:"username"`
			UsageCount int64  `json:"usage_count"`
			TotalCost  string `json:"total_cost"`
		} `json:"users"`
	}
	testutil.ParseJSON(t, resp, &stats)
	assert.Equal(t, 30, stats.WindowDays)
	require.Len(t, stats.Users, 2)

	totals := map[string]string{}
	counts := map[string]int64{}
	for _, u := range stats.Users {
		totals[u.Username] = u.TotalCost
		counts[u.Username] = u.UsageCount
	}
	assert.Equal(t, int64(2), counts["planner"])
	assert.Equal(t, "4.50", totals["planner"])
	assert.Equal(t, int64(0), counts["admin"])
	assert.Equal(t, "0.00", totals["admin"])
}

func TestExportUsageCSV(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-7")
	for _, cost := range []string{"1.50", "2.25"} {
		resp := testutil.Request(t, f.app, http.MethodPost, "/api/enrichment/record-usage", f.token, map[string]any{
			"project_id": project.ID,
			"cost":       cost,
		})
		testutil.AssertStatus(t, resp, fiber.StatusCreated)
	}

	resp := testutil.Request(t, f.app, http.MethodGet, "/api/admin/users/export-usage-stats?user_id="+f.planner.ID, f.staff, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	records, err := csv.NewReader(strings.NewReader(testutil.ReadBody(t, resp))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Email", "Date", "Project Number", "Cost"}, records[0])
	costs := []string{records[1][3], records[2][3]}
	assert.ElementsMatch(t, []string{"1.50", "2.25"}, costs)
	assert.Equal(t, "planner@example.com", records[1][0])
	assert.Equal(t, "X-7", records[1][2])

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/admin/users/export-usage-stats?start_date=yesterday", f.staff, nil)
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestExportUsageFailureKeepsErrorEnvelope(t *testing.T) {
	f := setupApp(t)
	require.NoError(t, f.db.Migrator().DropTable(&models.EnrichmentUsage{}))

	resp := testutil.Request(t, f.app, http.MethodGet, "/api/admin/users/export-usage-stats", f.staff, nil)
	testutil.AssertStatus(t, resp, fiber.StatusInternalServerError)
	assert.Empty(t, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)

	var envelope utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &envelope)
	assert.Equal(t, fiber.StatusInternalServerError, envelope.Status)
	assert.False(t, envelope.Ok)
}

func TestLabelBatchSaveAndReset(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-8")

	batch := map[string]any{
		"project_id": project.ID,
		"labels": []map[string]any{
			{"label_id": "a", "x_offset": 1.5, "y_offset": -2, "text": "Area A"},
			{"label_id": "b", "x_offset": 0, "y_offset": 0, "visibility": false},
		},
	}
	resp := testutil.Request(t, f.app, http.MethodPost, "/api/label-positions/batch-save", f.token, batch)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	// saving label a again updates it in place
	resp = testutil.Request(t, f.app, http.MethodPost, "/api/label-positions/batch-save", f.token, map[string]any{
		"project_id": project.ID,
		"labels":     map[string]any{"label_id": "a", "x_offset": 9},
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/label-positions?project="+project.ID, f.token, nil)
	var labels []models.LabelPosition
	testutil.ParseJSON(t, resp, &labels)
	require.Len(t, labels, 2)
	for _, l := range labels {
		if l.LabelID == "a" {
			assert.Equal(t, 9.0, l.XOffset)
			assert.Equal(t, "Area A", l.Text)
		}
	}

	resp = testutil.Request(t, f.app, http.MethodPost, "/api/label-positions/reset-all", f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	resp = testutil.Request(t, f.app, http.MethodPost, "/api/label-positions/reset-all?project="+project.ID, f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var result utils.SuccessResponseStruct
	testutil.ParseJSON(t, resp, &result)
	assert.Equal(t, int64(2), result.AffectedRows)
}

func TestProjectDeleteCascades(t *testing.T) {
	f := setupApp(t)
	project := f.createProject(t, "X-9")
	f.createArea(t, project.ID, "A")

	resp := testutil.Request(t, f.app, http.MethodDelete, "/api/projects/"+project.ID, f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusNoContent)

	var remaining int64
	require.NoError(t, f.db.Model(&models.MarketArea{}).Where("project_id = ?", project.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	resp = testutil.Request(t, f.app, http.MethodGet, "/api/projects/"+project.ID, f.token, nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	f := setupApp(t)
	resp := testutil.Request(t, f.app, http.MethodGet, "/nowhere", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
	var envelope utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &envelope)
	assert.False(t, envelope.Ok)
	assert.Equal(t, "/nowhere", envelope.URL)
}
