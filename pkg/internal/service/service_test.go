package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/testutil"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []service.AuditEntry
	err     error
}

func (a *recordingAudit) Record(_ context.Context, e service.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = append(a.entries, e)

	return a.err
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}

	return out
}

type recordingActivity struct {
	mu    sync.Mutex
	links []service.ActivityLink
	err   error
}

func (a *recordingActivity) ReportLinked(_ context.Context, l service.ActivityLink) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.links = append(a.links, l)

	return a.err
}

type env struct {
	ctx      context.Context
	db       *gorm.DB
	svc      *service.Services
	audit    *recordingAudit
	activity *recordingActivity
}

func newEnv(t *testing.T, opts ...func(*service.Deps)) *env {
	t.Helper()

	e := &env{
		ctx:      context.Background(),
		db:       testutil.NewDB(t),
		audit:    &recordingAudit{},
		activity: &recordingActivity{},
	}

	d := service.Deps{
		DB:   e.db,
		Tree: configs.TreeConfig{MaxDepth: 64, MaxNameLength: 255},
		Bulk: configs.BulkConfig{MaxItems: 100},
		Collaborators: service.Collaborators{
			Audit:    e.audit,
			Activity: e.activity,
		},
	}
	for _, o := range opts {
		o(&d)
	}

	e.svc = service.NewServices(d)

	return e
}

func ptr(s string) *string { return &s }

func (e *env) folder(t *testing.T, name string, parent *model.Folder) *model.Folder {
	t.Helper()

	var parentID *string
	if parent != nil {
		parentID = &parent.ID
	}

	f, err := e.svc.Folders.Create(e.ctx, service.CreateFolderInput{Name: name, ParentID: parentID, CreatedBy: "alice"})
	require.NoError(t, err)

	return f
}

func (e *env) report(t *testing.T, name string, folder *model.Folder) *model.Report {
	t.Helper()

	var folderID *string
	if folder != nil {
		folderID = &folder.ID
	}

	r, err := e.svc.Reports.Create(e.ctx, service.CreateReportInput{
		FileName:   name,
		FileType:   "application/pdf",
		Data:       []byte("%PDF-" + name),
		FolderID:   folderID,
		UploadedBy: "alice",
	})
	require.NoError(t, err)

	return r
}

func (e *env) loadFolder(t *testing.T, id string) *model.Folder {
	t.Helper()

	var f model.Folder
	require.NoError(t, e.db.Where("id = ?", id).Take(&f).Error)

	return &f
}

func (e *env) countFolders(t *testing.T, where string, args ...any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.Folder{}).Where(where, args...).Count(&n).Error)

	return n
}

func (e *env) countReports(t *testing.T, where string, args ...any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.Report{}).Where(where, args...).Count(&n).Error)

	return n
}

// insertRaw 绕过服务写入目录，用于构造损坏数据.
func (e *env) insertRaw(t *testing.T, f model.Folder) {
	t.Helper()

	if f.Status == "" {
		f.Status = model.StatusActive
	}

	if f.CreatedBy == "" {
		f.CreatedBy = "import"
	}

	require.NoError(t, e.db.Create(&f).Error)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		status   int
		message  string
	}{
		{&service.DuplicateNameError{Name: "Q1"}, service.ErrDuplicateName, 409, `A folder named "Q1" already exists in this location.`},
		{&service.CycleError{FolderID: "a", TargetID: "b"}, service.ErrCycle, 409, "Cannot move a folder into itself or one of its subfolders."},
		{&service.CycleError{FolderID: "a", TargetID: "a", Self: true}, service.ErrInvalidOperation, 400, "A folder cannot be moved into itself."},
		{&service.NotFoundError{Kind: service.KindFolder, ID: "x"}, service.ErrNotFound, 404, "Folder not found."},
		{&service.NotFoundError{Kind: service.KindReport, ID: "x"}, service.ErrNotFound, 404, "Report not found."},
		{&service.ValidationError{Field: "name", Message: "bad"}, service.ErrValidation, 400, "bad"},
	}

	for _, c := range cases {
		wrapped := errors.Join(errors.New("context"), c.err)
		require.ErrorIs(t, wrapped, c.sentinel)
		require.Equal(t, c.status, service.StatusCode(wrapped))
		require.Equal(t, c.message, service.PublicMessage(c.err))
		require.True(t, service.IsDomainError(c.err))
	}

	internal := errors.New("dial tcp: connection refused")
	require.Equal(t, 500, service.StatusCode(internal))
	require.Equal(t, "Internal server error.", service.PublicMessage(internal))
	require.False(t, service.IsDomainError(internal))
}
