package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/store"
	"github.com/yeisme/reportvault/pkg/internal/testutil"
)

func ptr(s string) *string { return &s }

func TestTableCRUD(t *testing.T) {
	ctx := context.Background()
	folders := store.For[model.Folder](testutil.NewDB(t))

	f := &model.Folder{ID: model.NewID(), Name: "Reports", Status: model.StatusActive, CreatedBy: "alice"}
	require.NoError(t, folders.Create(ctx, f))

	got, err := folders.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reports", got.Name)
	assert.Nil(t, got.ParentID)

	n, err := folders.Update(ctx, f.ID, map[string]any{"name": "Q1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, _ = folders.Get(ctx, f.ID)
	assert.Equal(t, "Q1", got.Name)

	n, err = folders.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = folders.Get(ctx, f.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNullableEq(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	folders := store.For[model.Folder](db)
	reports := store.For[model.Report](db)

	parent := &model.Folder{ID: model.NewID(), Name: "P", Status: model.StatusActive, CreatedBy: "u"}
	require.NoError(t, folders.Create(ctx, parent))

	for i, folderID := range []*string{nil, nil, ptr(parent.ID)} {
		r := &model.Report{
			ID: model.NewID(), Title: "r", FileName: "a.pdf", FolderID: folderID,
			Status: model.StatusActive, UploadedBy: "u",
		}
		require.NoError(t, reports.Create(ctx, r), i)
	}

	atRoot, err := reports.Find(ctx, store.NullableEq("folder_id", nil))
	require.NoError(t, err)
	assert.Len(t, atRoot, 2)

	inParent, err := reports.Find(ctx, store.NullableEq("folder_id", &parent.ID))
	require.NoError(t, err)
	assert.Len(t, inParent, 1)
}

func TestExistsAndPluck(t *testing.T) {
	ctx := context.Background()
	folders := store.For[model.Folder](testutil.NewDB(t))

	for _, name := range []string{"b", "a"} {
		require.NoError(t, folders.Create(ctx, &model.Folder{
			ID: model.NewID(), Name: name, Status: model.StatusActive, CreatedBy: "u",
		}))
	}

	ok, err := folders.Exists(ctx, store.Eq("name", "a"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = folders.Exists(ctx, store.Eq("name", "zzz"))
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := folders.Pluck(ctx, "name", store.OrderBy("name"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestDeleteWhereRequiresScope(t *testing.T) {
	_, err := store.For[model.Report](testutil.NewDB(t)).DeleteWhere(context.Background())
	assert.Error(t, err)
}
