package types_test

import (
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/types"
)

func TestParseFolderFilter(t *testing.T) {
	cases := map[string]model.FolderFilterKind{
		"":       model.FilterRoot,
		"null":   model.FilterRoot,
		"ROOT":   model.FilterRoot,
		" all ":  model.FilterAll,
		"01ABCD": model.FilterSpecific,
	}

	for raw, want := range cases {
		assert.Equal(t, want, types.ParseFolderFilter(raw).Kind(), raw)
	}

	assert.Equal(t, "01ABCD", types.ParseFolderFilter(" 01ABCD ").ID())
}

func TestParseStatus(t *testing.T) {
	s, err := types.ParseStatus("")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = types.ParseStatus("Archived")
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, *s)

	_, err = types.ParseStatus("deleted")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestUpdateReportPatchTriState(t *testing.T) {
	var absent types.UpdateReportRequest
	require.NoError(t, sonic.Unmarshal([]byte(`{"title":"Q3"}`), &absent))

	p := absent.Patch()
	assert.False(t, p.FolderIDSet)
	assert.Equal(t, "Q3", *p.Title)

	var toRoot types.UpdateReportRequest
	require.NoError(t, sonic.Unmarshal([]byte(`{"folder_id":null}`), &toRoot))

	p = toRoot.Patch()
	assert.True(t, p.FolderIDSet)
	assert.Nil(t, p.FolderID)

	var toFolder types.UpdateReportRequest
	require.NoError(t, sonic.Unmarshal([]byte(`{"folder_id":"f1"}`), &toFolder))

	p = toFolder.Patch()
	assert.True(t, p.FolderIDSet)
	require.NotNil(t, p.FolderID)
	assert.Equal(t, "f1", *p.FolderID)
	assert.False(t, p.Empty())
}

func TestBulkMoveSelection(t *testing.T) {
	var req types.BulkMoveRequest
	require.NoError(t, sonic.Unmarshal([]byte(`{"folder_ids":["a"],"report_ids":["r"],"target_folder_id":""}`), &req))

	sel := req.Selection()
	assert.Equal(t, []string{"a"}, sel.FolderIDs)
	assert.Equal(t, []string{"r"}, sel.ReportIDs)
	assert.Nil(t, sel.TargetFolderID)
}
