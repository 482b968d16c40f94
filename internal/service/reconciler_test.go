package service

import (
	"context"
	"regexp"
	"testing"

	"agencydesk/creator-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderSlug(t *testing.T) {
	re := regexp.MustCompile(`^best-of-2025-[a-z0-9]{6}$`)
	assert.Regexp(t, re, FolderSlug("Best of 2025!"))

	// Names that slug away entirely still get a usable id
	assert.Regexp(t, regexp.MustCompile(`^folder-[a-z0-9]{6}$`), FolderSlug("!!!"))

	// Two folders with the same display name get distinct ids
	assert.NotEqual(t, FolderSlug("drops"), FolderSlug("drops"))
}

func TestCreateFolderAttachesFiles(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	b := seedMedia(t, conn, "c1", "b1", "b.png")

	folder, err := r.CreateFolder(context.Background(), "drops", []string{a.ID, b.ID}, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{a.ID, b.ID}, memberIDs(t, conn, folder.ID))
}

// A missing file must fail the whole call and roll the folder row back.
func TestCreateFolderAtomicOnBadFile(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")

	_, err := r.CreateFolder(context.Background(), "drops", []string{a.ID, "nope"}, nil)
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&model.Folder{}).Count(&count).Error)
	assert.Zero(t, count, "failed create must not leave a folder row behind")
}

func TestCreateFolderUnknownCategory(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	missing := "nope"
	_, err := r.CreateFolder(context.Background(), "drops", nil, &missing)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestAddFilesToFolderIdempotent(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	folder, err := r.CreateFolder(context.Background(), "drops", []string{a.ID}, nil)
	require.NoError(t, err)

	require.NoError(t, r.AddFilesToFolder(context.Background(), []string{a.ID}, folder.ID))
	assert.Len(t, memberIDs(t, conn, folder.ID), 1)
}

func TestAddFilesToFolderUnknownFolder(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	err := r.AddFilesToFolder(context.Background(), []string{a.ID}, "nope")
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestRemoveFilesFromFolder(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	b := seedMedia(t, conn, "c1", "b1", "b.png")
	folder, err := r.CreateFolder(context.Background(), "drops", []string{a.ID, b.ID}, nil)
	require.NoError(t, err)

	require.NoError(t, r.RemoveFilesFromFolder(context.Background(), []string{a.ID}, folder.ID))
	assert.Equal(t, []string{b.ID}, memberIDs(t, conn, folder.ID))

	// The detached file itself survives
	var count int64
	require.NoError(t, conn.Model(&model.MediaFile{}).Where("id = ?", a.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteFolderKeepsFiles(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	folder, err := r.CreateFolder(context.Background(), "drops", []string{a.ID}, nil)
	require.NoError(t, err)

	require.NoError(t, r.DeleteFolder(context.Background(), folder.ID))

	assert.Empty(t, memberIDs(t, conn, folder.ID))

	var count int64
	require.NoError(t, conn.Model(&model.MediaFile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, r.DeleteFolder(context.Background(), folder.ID), ErrFolderNotFound)
}

func TestDeleteCategoryCascades(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	cat, err := r.CreateCategory(context.Background(), "Verified")
	require.NoError(t, err)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	folder, err := r.CreateFolder(context.Background(), "drops", []string{a.ID}, &cat.ID)
	require.NoError(t, err)

	other, err := r.CreateFolder(context.Background(), "keep", []string{a.ID}, nil)
	require.NoError(t, err)

	require.NoError(t, r.DeleteCategory(context.Background(), cat.ID))

	var count int64
	require.NoError(t, conn.Model(&model.Folder{}).Where("id = ?", folder.ID).Count(&count).Error)
	assert.Zero(t, count, "child folder must go with its category")

	assert.Empty(t, memberIDs(t, conn, folder.ID))
	assert.Equal(t, []string{a.ID}, memberIDs(t, conn, other.ID), "unrelated memberships stay")

	require.NoError(t, conn.Model(&model.MediaFile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "member files survive the cascade")
}

func TestRenameFolderAndCategory(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	folder, err := r.CreateFolder(context.Background(), "drops", nil, nil)
	require.NoError(t, err)

	require.NoError(t, r.RenameFolder(context.Background(), folder.ID, "best drops"))

	var got model.Folder
	require.NoError(t, conn.First(&got, "id = ?", folder.ID).Error)
	assert.Equal(t, "best drops", got.Name)
	assert.Equal(t, folder.ID, got.ID, "renames never change the id")

	assert.ErrorIs(t, r.RenameFolder(context.Background(), "nope", "x"), ErrFolderNotFound)
	assert.ErrorIs(t, r.RenameCategory(context.Background(), "nope", "x"), ErrCategoryNotFound)
}

func TestFolderIDs(t *testing.T) {
	conn := newTestDB(t)
	r := NewReconciler(conn)

	a := seedMedia(t, conn, "c1", "b1", "a.png")
	f1, err := r.CreateFolder(context.Background(), "one", []string{a.ID}, nil)
	require.NoError(t, err)
	f2, err := r.CreateFolder(context.Background(), "two", []string{a.ID}, nil)
	require.NoError(t, err)

	ids, err := r.FolderIDs(context.Background(), a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f1.ID, f2.ID}, ids)
}
