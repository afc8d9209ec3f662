package types

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label struct {
	LabelID string `json:"label_id"`
}

func TestFlexListAcceptsObjectOrArray(t *testing.T) {
	var one FlexList[label]
	require.NoError(t, json.Unmarshal([]byte(`{"label_id":"a"}`), &one))
	assert.Equal(t, []label{{LabelID: "a"}}, one.Slice())

	var many FlexList[label]
	require.NoError(t, json.Unmarshal([]byte(` [{"label_id":"a"},{"label_id":"b"}]`), &many))
	assert.Len(t, many, 2)

	var none FlexList[label]
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))
	assert.Empty(t, none)
}

func TestFlexListInsideStruct(t *testing.T) {
	var body struct {
		Labels FlexList[label] `json:"labels"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"labels":{"label_id":"x"}}`), &body))
	assert.Equal(t, "x", body.Labels[0].LabelID)
}

func TestAppErrorStatus(t *testing.T) {
	assert.Equal(t, 400, FieldError("cost", "bad").Status())
	assert.Equal(t, 404, NotFound("project %s not found", "p").Status())
	assert.Equal(t, 409, Conflict("dup").Status())
	assert.Equal(t, 401, Unauthorized("no token").Status())
	assert.Equal(t, 403, Forbidden("staff only").Status())
	assert.Equal(t, 500, Internal(errors.New("boom")).Status())
}

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := errors.Wrap(Internal(cause), "saving")

	assert.True(t, IsKind(err, KindInternal))
	assert.False(t, IsKind(err, KindConflict))
	assert.ErrorIs(t, err, cause)

	v := Validation("validation failed", map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "validation: validation failed [a: one; b: two]", v.Error())
	assert.Equal(t, "not_found: project p not found", NotFound("project %s not found", "p").Error())
}
