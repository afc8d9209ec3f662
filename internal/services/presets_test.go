package services_test

import (
	"testing"

	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/testutil"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const validStyles = `{"zip":{"fillColor":"#FF0000","fillOpacity":0.5,"borderColor":"#000000","borderWidth":1}}`

func stylePreset(t *testing.T, db *gorm.DB, acc services.Access, name string, projectID *string, global bool) *models.StylePreset {
	t.Helper()
	preset, err := services.CreatePreset[models.StylePreset](db, acc, services.PresetInput{
		Name:     testutil.Ptr(name),
		Project:  projectID,
		IsGlobal: testutil.Ptr(global),
		Styles:   testutil.JSON(validStyles),
	})
	require.NoError(t, err, "create style preset %s", name)
	return preset
}

func presetNames(presets []models.StylePreset) []string {
	out := make([]string, 0, len(presets))
	for _, p := range presets {
		out = append(out, p.Name)
	}
	return out
}

func TestResolvePresets(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")
	p2 := testutil.CreateProject(t, db, acc, "P-2")

	stylePreset(t, db, acc, "S1", &p1.ID, false)
	stylePreset(t, db, acc, "S2", &p2.ID, false)
	stylePreset(t, db, acc, "G1", nil, true)

	visible, err := services.ResolvePresets[models.StylePreset](db, acc, p1.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"S1", "G1"}, presetNames(visible))

	global, err := services.ResolvePresets[models.StylePreset](db, acc, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"G1"}, presetNames(global))

	require.NotNil(t, visible[0].CreatedByUsername)
	assert.Equal(t, "planner", *visible[0].CreatedByUsername)
}

func TestPromoteToGlobalIsIdempotent(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")
	p2 := testutil.CreateProject(t, db, acc, "P-2")
	s1 := stylePreset(t, db, acc, "S1", &p1.ID, false)

	promoted, err := services.PromoteToGlobal[models.StylePreset](db, acc, s1.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsGlobal)
	assert.Nil(t, promoted.ProjectID)

	again, err := services.PromoteToGlobal[models.StylePreset](db, acc, s1.ID)
	require.NoError(t, err)
	assert.True(t, again.IsGlobal)
	assert.Nil(t, again.ProjectID)

	// now visible from every project
	visible, err := services.ResolvePresets[models.StylePreset](db, acc, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, presetNames(visible))
}

func TestPresetScopeValidation(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")

	_, err := services.CreatePreset[models.StylePreset](db, acc, services.PresetInput{
		Name:     testutil.Ptr("both"),
		Project:  &p1.ID,
		IsGlobal: testutil.Ptr(true),
		Styles:   testutil.JSON(validStyles),
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))

	global := stylePreset(t, db, acc, "G1", nil, true)
	_, err = services.UpdatePreset[models.StylePreset](db, acc, global.ID, services.PresetInput{IsGlobal: testutil.Ptr(false)})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestPresetPayloadValidation(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")

	tests := []struct {
		name   string
		styles string
	}{
		{"missing fields", `{"zip":{"fillColor":"#FF0000"}}`},
		{"opacity above one", `{"zip":{"fillColor":"#F00","fillOpacity":1.5,"borderColor":"#000","borderWidth":1}}`},
		{"not an object", `["zip"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.CreatePreset[models.StylePreset](db, acc, services.PresetInput{
				Name:    testutil.Ptr(tt.name),
				Project: &p1.ID,
				Styles:  testutil.JSON(tt.styles),
			})
			require.Error(t, err)
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, "styles")
		})
	}

	_, err := services.CreatePreset[models.VariablePreset](db, acc, services.PresetInput{
		Name:      testutil.Ptr("empty"),
		Project:   &p1.ID,
		Variables: testutil.JSON(`[]`),
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))

	vars, err := services.CreatePreset[models.VariablePreset](db, acc, services.PresetInput{
		Name:      testutil.Ptr("population"),
		Project:   &p1.ID,
		Variables: testutil.JSON(`["TOTPOP_CY","MEDHINC_CY"]`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, vars.VariableCount)
}

func TestPresetNameConflicts(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")
	p2 := testutil.CreateProject(t, db, acc, "P-2")

	stylePreset(t, db, acc, "Shared", &p1.ID, false)
	// same name in another project is fine
	s2 := stylePreset(t, db, acc, "Shared", &p2.ID, false)

	_, err := services.CreatePreset[models.StylePreset](db, acc, services.PresetInput{
		Name:    testutil.Ptr("Shared"),
		Project: &p1.ID,
		Styles:  testutil.JSON(validStyles),
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict))

	stylePreset(t, db, acc, "Corporate", nil, true)
	_, err = services.CreatePreset[models.StylePreset](db, acc, services.PresetInput{
		Name:     testutil.Ptr("Corporate"),
		IsGlobal: testutil.Ptr(true),
		Styles:   testutil.JSON(validStyles),
	})
	assert.True(t, types.IsKind(err, types.KindConflict))

	// once one "Shared" is global the other cannot follow it
	_, err = services.PromoteToGlobal[models.StylePreset](db, acc, s2.ID)
	require.NoError(t, err)
	list, err := services.ResolvePresets[models.StylePreset](db, acc, p1.ID)
	require.NoError(t, err)
	var local string
	for _, p := range list {
		if !p.IsGlobal && p.Name == "Shared" {
			local = p.ID
		}
	}
	require.NotEmpty(t, local)
	_, err = services.PromoteToGlobal[models.StylePreset](db, acc, local)
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestDeletePreset(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")
	s1 := stylePreset(t, db, acc, "S1", &p1.ID, false)

	require.NoError(t, services.DeletePreset[models.StylePreset](db, acc, s1.ID))
	_, err := services.GetPreset[models.StylePreset](db, acc, s1.ID)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestGlobalPresetNamesUniqueInDatabase(t *testing.T) {
	db, acc := setup(t)
	p1 := testutil.CreateProject(t, db, acc, "P-1")
	stylePreset(t, db, acc, "Corporate", nil, true)
	promoted := stylePreset(t, db, acc, "Regional", &p1.ID, false)
	_, err := services.PromoteToGlobal[models.StylePreset](db, acc, promoted.ID)
	require.NoError(t, err)

	// writes that skip the service check still hit the unique index
	for _, name := range []string{"Corporate", "Regional"} {
		dup := &models.StylePreset{}
		dup.SetFields(models.PresetFields{Name: name, IsGlobal: true, Payload: *testutil.JSON(validStyles)})
		assert.Error(t, db.Create(dup).Error, name)
	}
	dupVars := &models.VariablePreset{}
	dupVars.SetFields(models.PresetFields{Name: "Vars", IsGlobal: true})
	require.NoError(t, db.Create(dupVars).Error)
	again := &models.VariablePreset{}
	again.SetFields(models.PresetFields{Name: "Vars", IsGlobal: true})
	assert.Error(t, db.Create(again).Error)

	// the same name under a project stays allowed
	local := &models.StylePreset{}
	local.SetFields(models.PresetFields{Name: "Corporate", ProjectID: &p1.ID, Payload: *testutil.JSON(validStyles)})
	assert.NoError(t, db.Create(local).Error)
}
