package service_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

func TestCreateDuplicateAtRoot(t *testing.T) {
	e := newEnv(t)

	first := e.folder(t, "Reports", nil)

	_, err := e.svc.Folders.Create(e.ctx, service.CreateFolderInput{Name: "Reports", CreatedBy: "bob"})
	require.ErrorIs(t, err, service.ErrDuplicateName)
	assert.Equal(t, `A folder named "Reports" already exists in this location.`, err.Error())

	list, err := e.svc.Folders.List(e.ctx, model.RootFilter(), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "alice", list[0].CreatedBy)
}

func TestCreateSameNameDifferentParents(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", nil)

	e.folder(t, "Q1", a)
	e.folder(t, "Q1", b)
	e.folder(t, "Q1", nil)

	assert.EqualValues(t, 3, e.countFolders(t, "name = ?", "Q1"))
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)

	cases := map[string]service.CreateFolderInput{
		"empty name":     {Name: "   ", CreatedBy: "alice"},
		"slash":          {Name: "a/b", CreatedBy: "alice"},
		"dot":            {Name: "..", CreatedBy: "alice"},
		"too long":       {Name: strings.Repeat("x", 256), CreatedBy: "alice"},
		"missing author": {Name: "ok"},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.svc.Folders.Create(e.ctx, in)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}

	assert.EqualValues(t, 0, e.countFolders(t, "1 = 1"))
}

func TestCreateTrimsName(t *testing.T) {
	e := newEnv(t)

	f := e.folder(t, "  Budget  ", nil)
	assert.Equal(t, "Budget", f.Name)

	_, err := e.svc.Folders.Create(e.ctx, service.CreateFolderInput{Name: "Budget", CreatedBy: "alice"})
	require.ErrorIs(t, err, service.ErrDuplicateName)
}

func TestCreateMissingParent(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Folders.Create(e.ctx, service.CreateFolderInput{Name: "x", ParentID: ptr("nope"), CreatedBy: "alice"})
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, "Folder not found.", err.Error())
}

func TestConcurrentCreateKeepsNamesUnique(t *testing.T) {
	e := newEnv(t)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		dups int
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := e.svc.Folders.Create(e.ctx, service.CreateFolderInput{Name: "Shared", CreatedBy: "alice"})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				oks++
			case assert.ErrorIs(t, err, service.ErrDuplicateName):
				dups++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, oks)
	assert.Equal(t, 7, dups)
	assert.EqualValues(t, 1, e.countFolders(t, "name = ?", "Shared"))
}

func TestRename(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	e.folder(t, "B", nil)

	_, err := e.svc.Folders.Rename(e.ctx, a.ID, "B")
	require.ErrorIs(t, err, service.ErrDuplicateName)
	assert.Equal(t, "A", e.loadFolder(t, a.ID).Name)

	got, err := e.svc.Folders.Rename(e.ctx, a.ID, "C")
	require.NoError(t, err)
	assert.Equal(t, "C", got.Name)
	assert.Equal(t, "C", e.loadFolder(t, a.ID).Name)

	// 与自身同名不算冲突
	_, err = e.svc.Folders.Rename(e.ctx, a.ID, "C")
	require.NoError(t, err)

	_, err = e.svc.Folders.Rename(e.ctx, "missing", "D")
	require.ErrorIs(t, err, service.ErrNotFound)

	assert.Equal(t, []string{
		service.ActionFolderCreated,
		service.ActionFolderCreated,
		service.ActionFolderRenamed,
	}, e.audit.actions())
}

func TestRenameIgnoresArchivedSiblings(t *testing.T) {
	e := newEnv(t)

	old := e.folder(t, "Old", nil)
	_, err := e.svc.Folders.Archive(e.ctx, old.ID)
	require.NoError(t, err)

	a := e.folder(t, "A", nil)
	_, err = e.svc.Folders.Rename(e.ctx, a.ID, "Old")
	require.NoError(t, err)
}

func TestMoveIntoDescendantIsCycle(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", a)
	c := e.folder(t, "C", b)

	for _, target := range []string{b.ID, c.ID} {
		_, err := e.svc.Folders.Move(e.ctx, a.ID, &target)
		require.ErrorIs(t, err, service.ErrCycle)
	}

	assert.Nil(t, e.loadFolder(t, a.ID).ParentID)
	assert.Equal(t, a.ID, *e.loadFolder(t, b.ID).ParentID)
}

func TestMoveIntoSelf(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)

	_, err := e.svc.Folders.Move(e.ctx, a.ID, &a.ID)
	require.ErrorIs(t, err, service.ErrInvalidOperation)
	require.ErrorIs(t, err, service.ErrCycle)
	assert.Nil(t, e.loadFolder(t, a.ID).ParentID)
}

func TestMove(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", nil)
	child := e.folder(t, "Child", a)

	moved, err := e.svc.Folders.Move(e.ctx, a.ID, &b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, *moved.ParentID)

	// 子目录随之移动，自身的 parent_id 不变
	path, err := e.svc.Folders.GetPath(e.ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "Child"}, names(path))

	_, err = e.svc.Folders.Move(e.ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, e.loadFolder(t, a.ID).ParentID)

	_, err = e.svc.Folders.Move(e.ctx, a.ID, ptr("missing"))
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestMoveNameClashAtTarget(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "Q1", nil)
	dest := e.folder(t, "Dest", nil)
	e.folder(t, "Q1", dest)

	_, err := e.svc.Folders.Move(e.ctx, a.ID, &dest.ID)
	require.ErrorIs(t, err, service.ErrDuplicateName)
	assert.Nil(t, e.loadFolder(t, a.ID).ParentID)
}

func TestMoveTerminatesOnCorruptedChain(t *testing.T) {
	e := newEnv(t)

	// x -> y -> x 的环，与被移动的目录无关
	e.insertRaw(t, model.Folder{ID: "x", Name: "x", ParentID: ptr("y")})
	e.insertRaw(t, model.Folder{ID: "y", Name: "y", ParentID: ptr("x")})
	// z 的父目录不存在
	e.insertRaw(t, model.Folder{ID: "z", Name: "z", ParentID: ptr("gone")})

	a := e.folder(t, "A", nil)

	_, err := e.svc.Folders.Move(e.ctx, a.ID, ptr("x"))
	require.NoError(t, err)

	_, err = e.svc.Folders.Move(e.ctx, a.ID, ptr("z"))
	require.NoError(t, err)
}

func TestMoveRejectsTooDeepHierarchy(t *testing.T) {
	e := newEnv(t, func(d *service.Deps) { d.Tree.MaxDepth = 3 })

	parent := e.folder(t, "L0", nil)
	for i := 1; i < 5; i++ {
		parent = e.folder(t, fmt.Sprintf("L%d", i), parent)
	}

	a := e.folder(t, "A", nil)

	_, err := e.svc.Folders.Move(e.ctx, a.ID, &parent.ID)
	require.ErrorIs(t, err, service.ErrInvalidOperation)
}

func TestGetPath(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", a)
	c := e.folder(t, "C", b)

	first, err := e.svc.Folders.GetPath(e.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(first))

	second, err := e.svc.Folders.GetPath(e.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	root, err := e.svc.Folders.GetPath(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(root))

	_, err = e.svc.Folders.GetPath(e.ctx, "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetPathTerminatesOnCorruption(t *testing.T) {
	e := newEnv(t)

	e.insertRaw(t, model.Folder{ID: "a", Name: "a", ParentID: ptr("b")})
	e.insertRaw(t, model.Folder{ID: "b", Name: "b", ParentID: ptr("a")})
	e.insertRaw(t, model.Folder{ID: "c", Name: "c", ParentID: ptr("missing")})

	path, err := e.svc.Folders.GetPath(e.ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(path))

	path, err = e.svc.Folders.GetPath(e.ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names(path))
}

func TestDeleteRemovesSubtree(t *testing.T) {
	e := newEnv(t)

	root := e.folder(t, "Root", nil)
	a := e.folder(t, "A", root)
	b := e.folder(t, "B", a)
	sibling := e.folder(t, "Sibling", nil)

	e.report(t, "root.pdf", root)
	e.report(t, "a.pdf", a)
	e.report(t, "b1.pdf", b)
	e.report(t, "b2.pdf", b)
	keep := e.report(t, "keep.pdf", sibling)
	loose := e.report(t, "loose.pdf", nil)

	res, err := e.svc.Folders.Delete(e.ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DeleteResult{Folders: 3, Reports: 4}, res)

	ids := []string{root.ID, a.ID, b.ID}
	assert.EqualValues(t, 0, e.countFolders(t, "id IN ? OR parent_id IN ?", ids, ids))
	assert.EqualValues(t, 0, e.countReports(t, "folder_id IN ?", ids))
	assert.EqualValues(t, 1, e.countFolders(t, "1 = 1"))
	assert.EqualValues(t, 1, e.countReports(t, "id = ?", keep.ID))
	assert.EqualValues(t, 1, e.countReports(t, "id = ?", loose.ID))

	_, err = e.svc.Folders.Delete(e.ctx, root.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteTerminatesOnCorruptedChildren(t *testing.T) {
	e := newEnv(t)

	e.insertRaw(t, model.Folder{ID: "p", Name: "p", ParentID: ptr("q")})
	e.insertRaw(t, model.Folder{ID: "q", Name: "q", ParentID: ptr("p")})

	res, err := e.svc.Folders.Delete(e.ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Folders)
	assert.EqualValues(t, 0, e.countFolders(t, "1 = 1"))
}

func TestArchiveRestore(t *testing.T) {
	e := newEnv(t)

	parent := e.folder(t, "Parent", nil)
	child := e.folder(t, "Child", parent)

	archived, err := e.svc.Folders.Archive(e.ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, archived.Status)
	// 归档不级联
	assert.Equal(t, model.StatusActive, e.loadFolder(t, child.ID).Status)

	// 归档后可以创建同名的活动目录，恢复时冲突
	e.folder(t, "Parent", nil)

	_, err = e.svc.Folders.Restore(e.ctx, parent.ID)
	require.ErrorIs(t, err, service.ErrDuplicateName)
	assert.Equal(t, model.StatusArchived, e.loadFolder(t, parent.ID).Status)

	_, err = e.svc.Folders.SetStatus(e.ctx, parent.ID, "deleted")
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestSiblingUniquenessAcrossOperations(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	b := e.folder(t, "B", nil)
	inner := e.folder(t, "A", b)

	_, _ = e.svc.Folders.Move(e.ctx, inner.ID, nil)
	_, _ = e.svc.Folders.Rename(e.ctx, b.ID, "A")
	_, _ = e.svc.Folders.Archive(e.ctx, a.ID)
	_, _ = e.svc.Folders.Move(e.ctx, inner.ID, nil)
	_, _ = e.svc.Folders.Restore(e.ctx, a.ID)
	_, _ = e.svc.Folders.Rename(e.ctx, b.ID, "A")

	var all []model.Folder
	require.NoError(t, e.db.Find(&all).Error)

	seen := map[string]bool{}

	for _, f := range all {
		if f.Status != model.StatusActive {
			continue
		}

		key := f.ParentKey() + "/" + f.Name
		assert.False(t, seen[key], "duplicate active sibling %s", key)
		seen[key] = true
	}
}

func TestListFilters(t *testing.T) {
	e := newEnv(t)

	a := e.folder(t, "A", nil)
	e.folder(t, "B", nil)
	e.folder(t, "Inner", a)

	root, err := e.svc.Folders.List(e.ctx, model.RootFilter(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(root))

	all, err := e.svc.Folders.List(e.ctx, model.AllFilter(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inside, err := e.svc.Folders.List(e.ctx, model.SpecificFilter(a.ID), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inner"}, names(inside))

	_, err = e.svc.Folders.Archive(e.ctx, a.ID)
	require.NoError(t, err)

	archived := model.StatusArchived
	onlyArchived, err := e.svc.Folders.List(e.ctx, model.AllFilter(), &archived)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(onlyArchived))
}

func TestAuditFailureDoesNotRollBack(t *testing.T) {
	e := newEnv(t)
	e.audit.err = assert.AnError

	f := e.folder(t, "Kept", nil)
	assert.Equal(t, "Kept", e.loadFolder(t, f.ID).Name)
}

func names(folders []model.Folder) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		out = append(out, f.Name)
	}

	return out
}

func TestArchiveAllowsArchivedNamesakes(t *testing.T) {
	e := newEnv(t)

	first := e.folder(t, "Q1", nil)
	_, err := e.svc.Folders.Archive(e.ctx, first.ID)
	require.NoError(t, err)

	second := e.folder(t, "Q1", nil)
	archived, err := e.svc.Folders.Archive(e.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, archived.Status)

	assert.EqualValues(t, 2, e.countFolders(t, "name = ? AND status = ?", "Q1", model.StatusArchived))

	// 恢复一个可以，另一个与之冲突
	_, err = e.svc.Folders.Restore(e.ctx, first.ID)
	require.NoError(t, err)

	_, err = e.svc.Folders.Restore(e.ctx, second.ID)
	require.ErrorIs(t, err, service.ErrDuplicateName)
	assert.Equal(t, model.StatusArchived, e.loadFolder(t, second.ID).Status)
}
