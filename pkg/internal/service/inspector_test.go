package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

func TestInspectorHealthyTree(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	e.folder(t, "B", a)
	e.report(t, "r.pdf", a)
	e.report(t, "loose.pdf", nil)

	res, err := e.svc.Inspector.Scan(e.ctx)
	require.NoError(t, err)
	assert.True(t, res.Healthy())
	assert.Equal(t, 2, res.Folders)
	assert.Equal(t, 2, res.Reports)
	assert.Equal(t, 0, res.Counts()[service.AnomalyCycle])
}

func TestInspectorFindsCorruption(t *testing.T) {
	e := newEnv(t)

	// 环 c1 -> c2 -> c3 -> c1，以及挂在环上的 tail
	e.insertRaw(t, model.Folder{ID: "c1", Name: "c1", ParentID: ptr("c3")})
	e.insertRaw(t, model.Folder{ID: "c2", Name: "c2", ParentID: ptr("c1")})
	e.insertRaw(t, model.Folder{ID: "c3", Name: "c3", ParentID: ptr("c2")})
	e.insertRaw(t, model.Folder{ID: "tail", Name: "tail", ParentID: ptr("c1")})

	e.insertRaw(t, model.Folder{ID: "dangling", Name: "d", ParentID: ptr("gone")})

	e.insertRaw(t, model.Folder{ID: "dup1", Name: "Same"})
	e.insertRaw(t, model.Folder{ID: "dup2", Name: "Same"})
	e.insertRaw(t, model.Folder{ID: "dup3", Name: "Same", Status: model.StatusArchived})

	require.NoError(t, e.db.Create(&model.Report{
		ID: "orphan", Title: "o", FileName: "o.pdf", FolderID: ptr("gone"),
		Status: model.StatusActive, UploadedBy: "u",
	}).Error)

	res, err := e.svc.Inspector.Scan(e.ctx)
	require.NoError(t, err)
	assert.False(t, res.Healthy())

	counts := res.Counts()
	assert.Equal(t, 3, counts[service.AnomalyCycle])
	assert.Equal(t, 1, counts[service.AnomalyDanglingParent])
	assert.Equal(t, 1, counts[service.AnomalyDuplicateName])
	assert.Equal(t, 1, counts[service.AnomalyOrphanReport])

	byKind := map[service.AnomalyKind][]string{}
	for _, a := range res.Anomalies {
		byKind[a.Kind] = append(byKind[a.Kind], a.ID)
	}

	assert.Equal(t, []string{"c1", "c2", "c3"}, byKind[service.AnomalyCycle])
	assert.Equal(t, []string{"dangling"}, byKind[service.AnomalyDanglingParent])
	assert.Equal(t, []string{"dup1"}, byKind[service.AnomalyDuplicateName])
	assert.Equal(t, []string{"orphan"}, byKind[service.AnomalyOrphanReport])
}

func TestInspectorRootsAreNotCycles(t *testing.T) {
	e := newEnv(t)

	// 按 id 顺序先访问叶子，沿父链一直走到根
	e.insertRaw(t, model.Folder{ID: "r", Name: "root"})
	e.insertRaw(t, model.Folder{ID: "m", Name: "mid", ParentID: ptr("r")})
	e.insertRaw(t, model.Folder{ID: "l", Name: "leaf", ParentID: ptr("m")})
	e.insertRaw(t, model.Folder{ID: "a1", Name: "Old", Status: model.StatusArchived})
	e.insertRaw(t, model.Folder{ID: "a2", Name: "Old", Status: model.StatusArchived})
	e.insertRaw(t, model.Folder{ID: "a3", Name: "Old"})

	res, err := e.svc.Inspector.Scan(e.ctx)
	require.NoError(t, err)
	assert.True(t, res.Healthy(), "%v", res.Anomalies)
	assert.Equal(t, 6, res.Folders)
}
