package services_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/testutil"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertLabelKeyedByProjectAndLabel(t *testing.T) {
	db, acc := setup(t)
	project := testutil.CreateProject(t, db, acc, "P-1")

	created, err := services.UpsertLabel(db, acc, services.LabelInput{
		Project: &project.ID, LabelID: testutil.Ptr("area-1"), XOffset: testutil.Ptr(4.5),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, created.FontSize)
	assert.True(t, created.Visibility)
	require.NotNil(t, created.CreatedByID)

	moved, err := services.UpsertLabel(db, acc, services.LabelInput{
		Project: &project.ID, LabelID: testutil.Ptr("area-1"), YOffset: testutil.Ptr(-2.0), Visibility: testutil.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, moved.ID)
	assert.Equal(t, 4.5, moved.XOffset)
	assert.Equal(t, -2.0, moved.YOffset)
	assert.False(t, moved.Visibility)

	labels, err := services.ListLabels(db, acc, project.ID, "")
	require.NoError(t, err)
	assert.Len(t, labels, 1)
}

func TestBatchSaveLabels(t *testing.T) {
	db, acc := setup(t)
	project := testutil.CreateProject(t, db, acc, "P-1")
	other := testutil.CreateProject(t, db, acc, "P-2")
	cfg, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project: &project.ID, TabName: testutil.Ptr("Main"), AreaType: testutil.Ptr("zip"),
	})
	require.NoError(t, err)

	var in services.BatchSaveInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"project_id": "`+project.ID+`",
		"map_configuration_id": "`+cfg.ID+`",
		"labels": [
			{"label_id": "a", "x_offset": 1, "y_offset": 2, "text": "Alpha"},
			{"label_id": "b", "font_size": 16}
		]
	}`), &in))
	saved, err := services.BatchSaveLabels(db, acc, in)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Alpha", saved[0].Text)
	assert.Equal(t, 16, saved[1].FontSize)
	require.NotNil(t, saved[0].MapConfigurationID)
	assert.Equal(t, cfg.ID, *saved[0].MapConfigurationID)

	// a single object is accepted in place of a list
	var single services.BatchSaveInput
	require.NoError(t, json.Unmarshal([]byte(`{"project_id":"`+project.ID+`","labels":{"label_id":"a","text":"Updated"}}`), &single))
	saved, err = services.BatchSaveLabels(db, acc, single)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Updated", saved[0].Text)
	assert.Nil(t, saved[0].MapConfigurationID)

	// a map configuration from another project is rejected and nothing is written
	_, err = services.BatchSaveLabels(db, acc, services.BatchSaveInput{
		ProjectID:          other.ID,
		MapConfigurationID: &cfg.ID,
		Labels:             []services.LabelInput{{LabelID: testutil.Ptr("z")}},
	})
	assert.True(t, types.IsKind(err, types.KindValidation))

	_, err = services.BatchSaveLabels(db, acc, services.BatchSaveInput{ProjectID: project.ID})
	assert.True(t, types.IsKind(err, types.KindValidation))

	labels, err := services.ListLabels(db, acc, "", "")
	require.NoError(t, err)
	assert.Len(t, labels, 2)
}

func TestResetLabels(t *testing.T) {
	db, acc := setup(t)
	project := testutil.CreateProject(t, db, acc, "P-1")
	cfg, err := services.CreateMapConfiguration(db, acc, services.MapConfigurationInput{
		Project: &project.ID, TabName: testutil.Ptr("Main"), AreaType: testutil.Ptr("zip"),
	})
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		_, err := services.UpsertLabel(db, acc, services.LabelInput{Project: &project.ID, MapConfiguration: &cfg.ID, LabelID: testutil.Ptr(id)})
		require.NoError(t, err)
	}
	_, err = services.UpsertLabel(db, acc, services.LabelInput{Project: &project.ID, LabelID: testutil.Ptr("loose")})
	require.NoError(t, err)

	deleted, err := services.ResetLabels(db, acc, project.ID, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = services.ResetLabels(db, acc, project.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = services.ResetLabels(db, acc, "", "")
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestUpdateAndDeleteLabel(t *testing.T) {
	db, acc := setup(t)
	project := testutil.CreateProject(t, db, acc, "P-1")
	label, err := services.UpsertLabel(db, acc, services.LabelInput{Project: &project.ID, LabelID: testutil.Ptr("a")})
	require.NoError(t, err)

	_, err = services.UpdateLabel(db, acc, label.ID, services.LabelInput{LabelID: testutil.Ptr("b")})
	assert.True(t, types.IsKind(err, types.KindValidation))

	updated, err := services.UpdateLabel(db, acc, label.ID, services.LabelInput{FontSize: testutil.Ptr(18), Text: testutil.Ptr("Denver")})
	require.NoError(t, err)
	assert.Equal(t, 18, updated.FontSize)

	require.NoError(t, services.DeleteLabel(db, acc, label.ID))
	_, err = services.GetLabel(db, acc, label.ID)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}
