package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cdo/internal/source"
)

func TestGet_Text(t *testing.T) {
	out, _, err := execute(t, "get", vehiclesFile, "4")
	require.NoError(t, err)

	assert.Contains(t, out, "#4 car")
	assert.Contains(t, out, "description: a second car")
	assert.Contains(t, out, "master: #1")
	assert.Contains(t, out, "colour: red")
	assert.Contains(t, out, "wheels: 4")
	assert.Contains(t, out, "digest: ")
}

func TestGet_JSON(t *testing.T) {
	out, _, err := execute(t, "get", vehiclesFile, "2", "--format", "json")
	require.NoError(t, err)

	var view RecordView
	resp := decodeResponse(t, out, &view)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(2), view.ID)
	assert.Equal(t, "car", view.Name)
	assert.Empty(t, view.Description, "description equal to the name is omitted")
	require.NotNil(t, view.Master)
	assert.Equal(t, int64(1), *view.Master)
	assert.Equal(t, map[string]any{"wheels": float64(4)}, view.Attributes)
}

func TestGet_NotFound(t *testing.T) {
	out, _, err := execute(t, "get", vehiclesFile, "99", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRecordNotFound, resp.Error.Code)
}

func TestGet_InvalidID(t *testing.T) {
	out, _, err := execute(t, "get", vehiclesFile, "two")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestGet_MissingFile(t *testing.T) {
	out, _, err := execute(t, "get", "testdata/missing.yaml", "1", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, source.ErrCodeNotFound, resp.Error.Code)
}

func TestGet_UnsupportedExtension(t *testing.T) {
	out, _, err := execute(t, "get", "testdata/vehicles.txt", "1")
	require.Error(t, err)
	assert.Contains(t, out, "Error ["+source.ErrCodeUnsupported+"]")
}

func TestGet_WrongArgCount(t *testing.T) {
	_, _, err := execute(t, "get", vehiclesFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}

func TestFind(t *testing.T) {
	out, _, err := execute(t, "find", vehiclesFile, "car", "--format", "json")
	require.NoError(t, err)

	var list RecordList
	decodeResponse(t, out, &list)
	require.Len(t, list.Records, 2)
	assert.Equal(t, int64(2), list.Records[0].ID)
	assert.Equal(t, int64(4), list.Records[1].ID)
	assert.Equal(t, `name "car"`, list.Query)
}

func TestFind_DigestsFollowContent(t *testing.T) {
	out, _, err := execute(t, "find", vehiclesFile, "car", "--format", "json")
	require.NoError(t, err)

	var list RecordList
	decodeResponse(t, out, &list)
	require.Len(t, list.Records, 2)
	assert.Len(t, list.Records[0].Digest, 64)
	assert.NotEqual(t, list.Records[0].Digest, list.Records[1].Digest, "records 2 and 4 differ in content")

	out, _, err = execute(t, "get", vehiclesFile, "2", "--format", "json")
	require.NoError(t, err)
	var view RecordView
	decodeResponse(t, out, &view)
	assert.Equal(t, list.Records[0].Digest, view.Digest)
}

func TestFind_NoMatchText(t *testing.T) {
	out, _, err := execute(t, "find", vehiclesFile, "boat")
	require.NoError(t, err)
	assert.Contains(t, out, `No records match name "boat".`)
}

func TestFind_Text(t *testing.T) {
	out, _, err := execute(t, "find", vehiclesFile, "bike")
	require.NoError(t, err)
	assert.Contains(t, out, "#3\tbike")
	assert.Contains(t, out, `1 record(s) match name "bike"`)
}

func TestGroup(t *testing.T) {
	out, _, err := execute(t, "group", vehiclesFile, "1", "--format", "json")
	require.NoError(t, err)

	var list RecordList
	decodeResponse(t, out, &list)
	ids := make([]int64, len(list.Records))
	for i, r := range list.Records {
		ids[i] = r.ID
	}
	assert.Equal(t, []int64{2, 3, 4}, ids)
}

func TestGroup_LeafHasNoMembers(t *testing.T) {
	out, _, err := execute(t, "group", vehiclesFile, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "No records match master #3.")
}

func TestGroup_UnknownMaster(t *testing.T) {
	_, _, err := execute(t, "group", vehiclesFile, "42")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
