package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

func TestListRootIsExact(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", nil)

	loose1 := e.report(t, "loose1.pdf", nil)
	loose2 := e.report(t, "loose2.pdf", nil)
	e.report(t, "a.pdf", a)
	e.report(t, "b.pdf", b)

	root, err := e.svc.Reports.ListByFolder(e.ctx, model.RootFilter(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{loose1.ID, loose2.ID}, reportIDs(root))

	all, err := e.svc.Reports.ListByFolder(e.ctx, model.AllFilter(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	inA, err := e.svc.Reports.ListByFolder(e.ctx, model.SpecificFilter(a.ID), nil)
	require.NoError(t, err)
	require.Len(t, inA, 1)
	assert.Equal(t, "a.pdf", inA[0].FileName)
	assert.Empty(t, inA[0].FileData, "list must not load content")
}

func TestListStatusFilter(t *testing.T) {
	e := newEnv(t)

	r1 := e.report(t, "1.pdf", nil)
	e.report(t, "2.pdf", nil)

	_, err := e.svc.Reports.SetStatus(e.ctx, r1.ID, model.StatusArchived)
	require.NoError(t, err)

	archived := model.StatusArchived
	got, err := e.svc.Reports.ListByFolder(e.ctx, model.RootFilter(), &archived)
	require.NoError(t, err)
	assert.Equal(t, []string{r1.ID}, reportIDs(got))

	active := model.StatusActive
	got, err = e.svc.Reports.ListByFolder(e.ctx, model.RootFilter(), &active)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReportNamesAreNotUnique(t *testing.T) {
	e := newEnv(t)

	dest := e.folder(t, "Dest", nil)
	e.report(t, "same.pdf", dest)
	e.report(t, "same.pdf", dest)
	other := e.report(t, "same.pdf", nil)

	n, err := e.svc.Reports.MoveMany(e.ctx, []string{other.ID}, &dest.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 3, e.countReports(t, "folder_id = ? AND file_name = ?", dest.ID, "same.pdf"))
}

func TestMoveMany(t *testing.T) {
	e := newEnv(t)

	dest := e.folder(t, "Dest", nil)
	r1 := e.report(t, "1.pdf", nil)
	r2 := e.report(t, "2.pdf", nil)

	n, err := e.svc.Reports.MoveMany(e.ctx, []string{r1.ID, r2.ID, r1.ID, "missing"}, &dest.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.EqualValues(t, 2, e.countReports(t, "folder_id = ?", dest.ID))

	n, err = e.svc.Reports.MoveMany(e.ctx, []string{r1.ID}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 1, e.countReports(t, "folder_id IS NULL"))

	_, err = e.svc.Reports.MoveMany(e.ctx, []string{r1.ID}, ptr("missing"))
	require.ErrorIs(t, err, service.ErrNotFound)

	n, err = e.svc.Reports.MoveMany(e.ctx, nil, &dest.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// 已在目标目录中的报告也计入
	n, err = e.svc.Reports.MoveMany(e.ctx, []string{r2.ID, r1.ID, "missing"}, &dest.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = e.svc.Reports.MoveMany(e.ctx, []string{"missing"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdatePatch(t *testing.T) {
	e := newEnv(t)

	dest := e.folder(t, "Dest", nil)
	r := e.report(t, "draft.pdf", dest)

	got, err := e.svc.Reports.Update(e.ctx, r.ID, service.ReportPatch{Title: ptr("Final")})
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, dest.ID, *got.FolderID, "unset folder must stay")

	got, err = e.svc.Reports.Update(e.ctx, r.ID, service.ReportPatch{FolderIDSet: true})
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	_, err = e.svc.Reports.Update(e.ctx, r.ID, service.ReportPatch{FolderIDSet: true, FolderID: ptr("missing")})
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.Reports.Update(e.ctx, r.ID, service.ReportPatch{Title: ptr("  ")})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.svc.Reports.Update(e.ctx, "missing", service.ReportPatch{Title: ptr("x")})
	require.ErrorIs(t, err, service.ErrNotFound)

	got, err = e.svc.Reports.Update(e.ctx, r.ID, service.ReportPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
}

func TestCreateReport(t *testing.T) {
	e := newEnv(t)

	r, err := e.svc.Reports.Create(e.ctx, service.CreateReportInput{
		FileName:   "  summary.txt ",
		Data:       []byte("hello"),
		UploadedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "summary.txt", r.Title)
	assert.Equal(t, "application/octet-stream", r.FileType)
	assert.EqualValues(t, 5, r.FileSize)
	assert.Equal(t, service.Checksum([]byte("hello")), r.Checksum)
	assert.Equal(t, model.StatusActive, r.Status)

	_, data, err := e.svc.Reports.Download(e.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = e.svc.Reports.Create(e.ctx, service.CreateReportInput{FileName: "x", UploadedBy: "a", FolderID: ptr("missing")})
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.Reports.Create(e.ctx, service.CreateReportInput{FileName: "x"})
	require.ErrorIs(t, err, service.ErrValidation)

	assert.Empty(t, e.activity.links)
}

func TestCreateReportPayloadLimit(t *testing.T) {
	e := newEnv(t, func(d *service.Deps) { d.Report = configs.ReportConfig{MaxPayloadBytes: 4} })

	_, err := e.svc.Reports.Create(e.ctx, service.CreateReportInput{FileName: "big", Data: []byte("12345"), UploadedBy: "a"})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateReportNotifiesActivity(t *testing.T) {
	e := newEnv(t)

	r, err := e.svc.Reports.Create(e.ctx, service.CreateReportInput{
		FileName:   "submission.pdf",
		Data:       []byte("x"),
		UploadedBy: "bob",
		ActivityID: ptr("act-42"),
	})
	require.NoError(t, err)

	require.Len(t, e.activity.links, 1)
	assert.Equal(t, "act-42", e.activity.links[0].ActivityID)
	assert.Equal(t, r.ID, e.activity.links[0].ReportID)
	assert.Equal(t, "bob", e.activity.links[0].UploadedBy)
}

func TestActivityFailureKeepsReport(t *testing.T) {
	e := newEnv(t)
	e.activity.err = errors.New("activity service down")

	r, err := e.svc.Reports.Create(e.ctx, service.CreateReportInput{
		FileName: "s.pdf", UploadedBy: "bob", ActivityID: ptr("act-1"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.countReports(t, "id = ?", r.ID))
}

func TestDeleteReport(t *testing.T) {
	e := newEnv(t)

	r := e.report(t, "gone.pdf", nil)

	require.NoError(t, e.svc.Reports.Delete(e.ctx, r.ID))
	assert.EqualValues(t, 0, e.countReports(t, "id = ?", r.ID))

	require.ErrorIs(t, e.svc.Reports.Delete(e.ctx, r.ID), service.ErrNotFound)
	assert.Contains(t, e.audit.actions(), service.ActionReportDeleted)
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) PutBytes(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = append([]byte(nil), data...)

	return nil
}

func (m *memObjects) GetBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}

	return b, nil
}

func (m *memObjects) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)

	return nil
}

func TestS3BlobStore(t *testing.T) {
	objects := &memObjects{objects: map[string][]byte{}}
	e := newEnv(t, func(d *service.Deps) { d.Blobs = service.NewS3BlobStore(objects, "reports/") })

	folder := e.folder(t, "F", nil)
	r := e.report(t, "in-s3.pdf", folder)

	var stored model.Report
	require.NoError(t, e.db.Where("id = ?", r.ID).Take(&stored).Error)
	assert.True(t, service.IsExternalRef(stored.FileData))
	assert.Contains(t, objects.objects, "reports/"+r.ID)

	_, data, err := e.svc.Reports.Download(e.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-in-s3.pdf", string(data))

	_, err = e.svc.Folders.Delete(e.ctx, folder.ID)
	require.NoError(t, err)
	assert.Empty(t, objects.objects)
}

func TestInlineBlobStoreRejectsExternalRef(t *testing.T) {
	_, err := service.InlineBlobStore{}.Get(context.Background(), "s3:reports/x")
	require.Error(t, err)
}

func reportIDs(reports []model.Report) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}

	return out
}
