package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

func TestBulkRestorePartialSuccess(t *testing.T) {
	e := newEnv(t)

	f1 := e.folder(t, "One", nil)
	f2 := e.folder(t, "Two", nil)
	clash := e.folder(t, "Three", nil)
	r1 := e.report(t, "1.pdf", nil)
	r2 := e.report(t, "2.pdf", nil)

	req := service.BulkRequest{
		FolderIDs: []string{f1.ID, clash.ID, f2.ID},
		ReportIDs: []string{r1.ID, r2.ID},
	}

	archived, err := e.svc.Bulk.Archive(e.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSuccess, archived.Outcome)
	assert.Equal(t, "Archived 3 folders and 2 files.", archived.Message)

	// 占用名称，使恢复 clash 时冲突
	e.folder(t, "Three", nil)

	res, err := e.svc.Bulk.Restore(e.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Folders)
	assert.Equal(t, 2, res.Reports)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, clash.ID, res.Errors[0].ID)
	assert.Equal(t, service.KindFolder, res.Errors[0].Kind)
	assert.Equal(t, service.OutcomePartial, res.Outcome)
	assert.Equal(t, `A folder named "Three" already exists in this location.`, res.FirstError)
	assert.Equal(t,
		`Restored 2 folders and 2 files. 1 item failed: A folder named "Three" already exists in this location.`,
		res.Message)

	assert.Equal(t, model.StatusArchived, e.loadFolder(t, clash.ID).Status)
	assert.Equal(t, model.StatusActive, e.loadFolder(t, f1.ID).Status)
	assert.Equal(t, model.StatusActive, e.loadFolder(t, f2.ID).Status)
}

func TestBulkRestoreAllFailed(t *testing.T) {
	e := newEnv(t)

	f := e.folder(t, "X", nil)
	_, err := e.svc.Folders.Archive(e.ctx, f.ID)
	require.NoError(t, err)
	e.folder(t, "X", nil)

	res, err := e.svc.Bulk.Restore(e.ctx, service.BulkRequest{FolderIDs: []string{f.ID, "missing"}})
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFailed, res.Outcome)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, `Could not restore the selected items: A folder named "X" already exists in this location.`, res.Message)
}

func TestBulkValidation(t *testing.T) {
	e := newEnv(t, func(d *service.Deps) { d.Bulk = configs.BulkConfig{MaxItems: 2} })

	_, err := e.svc.Bulk.Delete(e.ctx, service.BulkRequest{})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.svc.Bulk.Archive(e.ctx, service.BulkRequest{FolderIDs: []string{"a", "b"}, ReportIDs: []string{"c"}})
	require.ErrorIs(t, err, service.ErrValidation)

	// 重复 ID 只计一次
	res, err := e.svc.Bulk.Archive(e.ctx, service.BulkRequest{FolderIDs: []string{"a", "a", " "}, ReportIDs: []string{"c"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
}

func TestBulkDeleteSkipsCascaded(t *testing.T) {
	e := newEnv(t)

	parent := e.folder(t, "Parent", nil)
	child := e.folder(t, "Child", parent)
	inChild := e.report(t, "c.pdf", child)
	loose := e.report(t, "l.pdf", nil)

	res, err := e.svc.Bulk.Delete(e.ctx, service.BulkRequest{
		FolderIDs: []string{parent.ID, child.ID},
		ReportIDs: []string{inChild.ID, loose.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Folders)
	assert.Equal(t, 1, res.Reports)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.Failed)
	assert.Equal(t, service.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "Deleted 1 folder and 1 file. 2 items already removed.", res.Message)

	assert.EqualValues(t, 0, e.countFolders(t, "1 = 1"))
	assert.EqualValues(t, 0, e.countReports(t, "1 = 1"))
}

func TestBulkMoveForgiving(t *testing.T) {
	e := newEnv(t)

	dest := e.folder(t, "Dest", nil)
	a := e.folder(t, "A", nil)
	clash := e.folder(t, "Clash", nil)
	e.folder(t, "Clash", dest)
	inner := e.folder(t, "Inner", dest)
	r := e.report(t, "r.pdf", nil)

	res, err := e.svc.Bulk.Move(e.ctx, service.BulkMoveRequest{
		BulkRequest:    service.BulkRequest{FolderIDs: []string{a.ID, clash.ID, dest.ID}, ReportIDs: []string{r.ID}},
		TargetFolderID: &inner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, service.OutcomePartial, res.Outcome)
	assert.Equal(t, 2, res.Folders)
	assert.Equal(t, 1, res.Reports)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "Cannot move a folder into itself or one of its subfolders.", res.FirstError)

	assert.Equal(t, inner.ID, *e.loadFolder(t, a.ID).ParentID)
	assert.Equal(t, inner.ID, *e.loadFolder(t, clash.ID).ParentID)
	assert.Nil(t, e.loadFolder(t, dest.ID).ParentID)
}

func TestBulkMoveFailFast(t *testing.T) {
	e := newEnv(t, func(d *service.Deps) { d.Bulk.FailFast = true })

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", a)
	c := e.folder(t, "C", nil)

	res, err := e.svc.Bulk.Move(e.ctx, service.BulkMoveRequest{
		BulkRequest:    service.BulkRequest{FolderIDs: []string{a.ID, c.ID}},
		TargetFolderID: &b.ID,
	})
	require.ErrorIs(t, err, service.ErrCycle)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, service.OutcomeFailed, res.Outcome)
	assert.Nil(t, e.loadFolder(t, c.ID).ParentID, "remaining items are not processed")
}

func TestBulkMoveMissingTarget(t *testing.T) {
	e := newEnv(t)

	r1 := e.report(t, "1.pdf", nil)
	r2 := e.report(t, "2.pdf", nil)

	res, err := e.svc.Bulk.Move(e.ctx, service.BulkMoveRequest{
		BulkRequest:    service.BulkRequest{ReportIDs: []string{r1.ID, r2.ID}},
		TargetFolderID: ptr("missing"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, service.OutcomeFailed, res.Outcome)
	assert.Equal(t, "Folder not found.", res.FirstError)
}

func TestBulkArchiveNamesakes(t *testing.T) {
	e := newEnv(t)

	old := e.folder(t, "Q1", nil)
	_, err := e.svc.Folders.Archive(e.ctx, old.ID)
	require.NoError(t, err)

	current := e.folder(t, "Q1", nil)

	res, err := e.svc.Bulk.Archive(e.ctx, service.BulkRequest{FolderIDs: []string{current.ID}})
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 1, res.Folders)
	assert.Equal(t, model.StatusArchived, e.loadFolder(t, current.ID).Status)
}

func TestBulkMoveCountsReportsAlreadyInTarget(t *testing.T) {
	e := newEnv(t)

	dest := e.folder(t, "Dest", nil)
	inside := e.report(t, "in.pdf", dest)
	outside := e.report(t, "out.pdf", nil)

	res, err := e.svc.Bulk.Move(e.ctx, service.BulkMoveRequest{
		BulkRequest:    service.BulkRequest{ReportIDs: []string{inside.ID, outside.ID, "missing"}},
		TargetFolderID: &dest.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, res.Reports)
	assert.Equal(t, "Moved 0 folders and 2 files.", res.Message)
	assert.EqualValues(t, 2, e.countReports(t, "folder_id = ?", dest.ID))
}
