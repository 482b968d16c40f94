package service

import (
	"context"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNameFreeNameUnchanged(t *testing.T) {
	conn := newTestDB(t)
	seedMedia(t, conn, "c1", "b1", "other.png")

	got, err := ResolveName(context.Background(), conn, "clip.mp4", "", "c1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got)
}

func TestResolveNameCollisionKeepsExtension(t *testing.T) {
	conn := newTestDB(t)
	seedMedia(t, conn, "c1", "b1", "clip.mp4")

	got, err := ResolveName(context.Background(), conn, "clip.mp4", "", "c1", "b1")
	require.NoError(t, err)

	assert.NotEqual(t, "clip.mp4", got)
	assert.Equal(t, ".mp4", path.Ext(got))
	assert.True(t, strings.HasPrefix(got, "clip-"), "suffix goes before the extension, got %q", got)
}

func TestResolveNameCaseInsensitive(t *testing.T) {
	conn := newTestDB(t)
	seedMedia(t, conn, "c1", "b1", "Clip.MP4")

	got, err := ResolveName(context.Background(), conn, "clip.mp4", "", "c1", "b1")
	require.NoError(t, err)
	assert.NotEqual(t, "clip.mp4", got)
}

// The same name may exist in different folders, for different creators or in
// different buckets; only the exact scope collides.
func TestResolveNameScoping(t *testing.T) {
	conn := newTestDB(t)
	rec := seedMedia(t, conn, "c1", "b1", "clip.mp4")

	r := NewReconciler(conn)
	folder, err := r.CreateFolder(context.Background(), "drops", []string{rec.ID}, nil)
	require.NoError(t, err)

	// Taken inside the folder
	got, err := ResolveName(context.Background(), conn, "clip.mp4", folder.ID, "c1", "b1")
	require.NoError(t, err)
	assert.NotEqual(t, "clip.mp4", got)

	// Free at the root: the only clip.mp4 is a folder member now
	got, err = ResolveName(context.Background(), conn, "clip.mp4", "", "c1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got)

	// Free in another folder
	other, err := r.CreateFolder(context.Background(), "other", nil, nil)
	require.NoError(t, err)

	got, err = ResolveName(context.Background(), conn, "clip.mp4", other.ID, "c1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got)

	// Free for another creator and another bucket
	got, err = ResolveName(context.Background(), conn, "clip.mp4", folder.ID, "c2", "b1")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got)

	got, err = ResolveName(context.Background(), conn, "clip.mp4", folder.ID, "c1", "b2")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got)
}
