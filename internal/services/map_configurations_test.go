package services_test

import (
	"testing"

	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/testutil"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMapConfigurationReplacesTab(t *testing.T) {
	db, acc := setup(t)
	project := testutil.CreateProject(t, db, acc, "P-1")

	first, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project:            &project.ID,
		TabName:            testutil.Ptr("Overview"),
		AreaType:           testutil.Ptr("zip"),
		LayerConfiguration: testutil.JSON(`{"layers":["v1"]}`),
	})
	require.NoError(t, err)
	label, err := services.UpsertLabel(db, acc, services.LabelInput{
		Project: &project.ID, MapConfiguration: &first.ID, LabelID: testutil.Ptr("title"),
	})
	require.NoError(t, err)

	second, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project:            &project.ID,
		TabName:            testutil.Ptr("Overview"),
		AreaType:           testutil.Ptr("county"),
		LayerConfiguration: testutil.JSON(`{"layers":["v2"]}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	configs, err := services.ListMapConfigurations(db, acc, project.ID)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, second.ID, configs[0].ID)
	assert.Equal(t, "county", configs[0].AreaType)
	assert.JSONEq(t, `{"layers":["v2"]}`, string(configs[0].LayerConfiguration.JSON))

	_, err = services.GetMapConfiguration(db, acc, first.ID)
	assert.True(t, types.IsKind(err, types.KindNotFound))

	kept, err := services.GetLabel(db, acc, label.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.MapConfigurationID)
}

func TestMapConfigurationRules(t *testing.T) {
	db, acc := setup(t)
	project := testutil.CreateProject(t, db, acc, "P-1")
	other := testutil.CreateProject(t, db, acc, "P-2")

	_, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{Project: &project.ID})
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "tab_name")
	assert.Contains(t, appErr.Fields, "area_type")

	a, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project: &project.ID, TabName: testutil.Ptr("A"), AreaType: testutil.Ptr("zip"),
	})
	require.NoError(t, err)
	b, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project: &project.ID, TabName: testutil.Ptr("B"), AreaType: testutil.Ptr("zip"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)

	_, err = services.UpdateMapConfiguration(db, acc, b.ID, services.MapConfigurationInput{TabName: testutil.Ptr("A")})
	assert.True(t, types.IsKind(err, types.KindConflict))

	_, err = services.UpdateMapConfiguration(db, acc, b.ID, services.MapConfigurationInput{Project: &other.ID})
	assert.True(t, types.IsKind(err, types.KindValidation))

	renamed, err := services.UpdateMapConfiguration(db, acc, b.ID, services.MapConfigurationInput{
		TabName:           testutil.Ptr("Trade Areas"),
		VisualizationType: testutil.Ptr("choropleth"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Trade Areas", renamed.TabName)
	require.NotNil(t, renamed.VisualizationType)
	assert.Equal(t, "choropleth", *renamed.VisualizationType)

	_, err = services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project: &other.ID, TabName: testutil.Ptr("A"), AreaType: testutil.Ptr("state"),
	})
	require.NoError(t, err)
	all, err := services.ListMapConfigurations(db, acc, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, services.DeleteMapConfiguration(db, acc, a.ID))
	var count int64
	require.NoError(t, db.Model(&models.MapConfiguration{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
