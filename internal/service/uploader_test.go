package service

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/storage"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore stands in for the S3 client. Keys ending in failExt reject the
// transfer, which lets a test fail one file in a batch while the rest go
// through.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failExt string
}

func (s *fakeStore) Put(ctx context.Context, in storage.PutInput) error {
	if s.failExt != "" && strings.HasSuffix(in.Key, s.failExt) {
		return errors.New("simulated storage failure")
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[in.Key] = data

	return nil
}

func (s *fakeStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.objects, k)
	}

	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}

func payloadFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func newTestUploader(t *testing.T, store *fakeStore) (*Uploader, *gorm.DB) {
	t.Helper()

	conn := newTestDB(t)
	return NewUploader(conn, store, nil, NewReconciler(conn)), conn
}

func TestUploaderSingleFileSuccess(t *testing.T) {
	store := &fakeStore{}
	u, conn := newTestUploader(t, store)

	var completed []string
	b, err := u.Run(context.Background(), BatchInput{
		CreatorID: "c1",
		Bucket:    "b1",
		Files: []FileInput{{
			Name:     "cover.png",
			MimeType: "image/png",
			Size:     int64(len("png bytes")),
			Path:     payloadFile(t, "png bytes"),
		}},
	}, func(ids []string) { completed = ids })
	require.NoError(t, err)

	b.Wait()

	require.Len(t, completed, 1)

	var rec model.MediaFile
	require.NoError(t, conn.First(&rec, "id = ?", completed[0]).Error)
	assert.Equal(t, model.StatusComplete, rec.Status)
	assert.Equal(t, "cover.png", rec.Filename)
	assert.Equal(t, "c1", rec.CreatorID)

	var pending int64
	require.NoError(t, conn.Model(&model.PendingUpload{}).Count(&pending).Error)
	assert.Zero(t, pending, "a completed upload leaves no pending row")

	assert.Equal(t, "png bytes", string(store.objects[rec.BucketKey]))

	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, model.StatusComplete, snap[0].Status)
	assert.EqualValues(t, 100, snap[0].Progress)
	assert.EqualValues(t, 100, b.Progress())
}

func TestUploaderTargetFolderMembership(t *testing.T) {
	store := &fakeStore{}
	u, conn := newTestUploader(t, store)

	folder, err := u.Reconciler.CreateFolder(context.Background(), "drops", nil, nil)
	require.NoError(t, err)

	b, err := u.Run(context.Background(), BatchInput{
		CreatorID: "c1",
		FolderID:  folder.ID,
		Bucket:    "b1",
		Files: []FileInput{{
			Name:     "cover.png",
			MimeType: "image/png",
			Size:     1,
			Path:     payloadFile(t, "x"),
		}},
	}, nil)
	require.NoError(t, err)

	b.Wait()

	ids := b.CompletedIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, ids, memberIDs(t, conn, folder.ID))
}

// One file failing its transfer must not drag the rest of the batch down,
// and its record must land in error state with the pending row gone.
func TestUploaderFailuresAreIndependent(t *testing.T) {
	store := &fakeStore{failExt: ".mov"}
	u, conn := newTestUploader(t, store)

	b, err := u.Run(context.Background(), BatchInput{
		CreatorID: "c1",
		Bucket:    "b1",
		Files: []FileInput{
			{Name: "good.png", MimeType: "image/png", Size: 1, Path: payloadFile(t, "x")},
			{Name: "bad.mov", MimeType: "video/quicktime", Size: 1, Path: payloadFile(t, "x")},
		},
	}, nil)
	require.NoError(t, err)

	b.Wait()

	require.Len(t, b.CompletedIDs(), 1)

	var good model.MediaFile
	require.NoError(t, conn.First(&good, "filename = ?", "good.png").Error)
	assert.Equal(t, model.StatusComplete, good.Status)

	var bad model.MediaFile
	require.NoError(t, conn.First(&bad, "filename = ?", "bad.mov").Error)
	assert.Equal(t, model.StatusError, bad.Status, "a dead transfer must never leave its record in uploading")

	var pending int64
	require.NoError(t, conn.Model(&model.PendingUpload{}).Count(&pending).Error)
	assert.Zero(t, pending)

	for _, p := range b.Snapshot() {
		if p.Name == "bad.mov" {
			assert.Equal(t, model.StatusError, p.Status)
			assert.NotEmpty(t, p.Error)
		}
	}
}

// An archive without a category fails the whole call before any record or
// object exists.
func TestUploaderArchiveNeedsCategory(t *testing.T) {
	store := &fakeStore{}
	u, conn := newTestUploader(t, store)

	_, err := u.Run(context.Background(), BatchInput{
		CreatorID: "c1",
		Bucket:    "b1",
		Files: []FileInput{
			{Name: "good.png", MimeType: "image/png", Size: 1, Path: payloadFile(t, "x")},
			{Name: "pack.zip", MimeType: "application/zip", Size: 1, Path: payloadFile(t, "x")},
		},
	}, nil)
	assert.ErrorIs(t, err, ErrZipNeedsCategory)

	assert.Zero(t, store.count())

	var count int64
	require.NoError(t, conn.Model(&model.MediaFile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploaderArchiveExtraction(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	store := &fakeStore{}
	u, conn := newTestUploader(t, store)

	cat, err := u.Reconciler.CreateCategory(context.Background(), "Verified")
	require.NoError(t, err)

	zipPath := filepath.Join(t.TempDir(), "summer-drop.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)

	zw := zip.NewWriter(zf)
	for name, content := range map[string]string{
		"photos/one.png": "first",
		"photos/two.png": "second",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	stat, err := os.Stat(zipPath)
	require.NoError(t, err)

	b, err := u.Run(context.Background(), BatchInput{
		CreatorID:  "c1",
		CategoryID: &cat.ID,
		Bucket:     "b1",
		Files: []FileInput{{
			Name:     "summer-drop.zip",
			MimeType: "application/zip",
			Size:     stat.Size(),
			Path:     zipPath,
		}},
	}, nil)
	require.NoError(t, err)

	b.Wait()

	// The archive became a folder named after it, inside the category
	var folder model.Folder
	require.NoError(t, conn.First(&folder, "name = ?", "summer-drop").Error)
	require.NotNil(t, folder.CategoryID)
	assert.Equal(t, cat.ID, *folder.CategoryID)

	ids := b.CompletedIDs()
	assert.Len(t, ids, 2)
	assert.ElementsMatch(t, ids, memberIDs(t, conn, folder.ID))

	var names []string
	require.NoError(t, conn.Model(&model.MediaFile{}).Where("status = ?", model.StatusComplete).Pluck("filename", &names).Error)
	assert.ElementsMatch(t, []string{"one.png", "two.png"}, names)

	assert.Equal(t, 2, store.count())
}

func TestBatchCancelDropsFileFromView(t *testing.T) {
	b := &Batch{done: make(chan struct{})}

	one := b.newItem(context.Background(), "one.png")
	two := b.newItem(context.Background(), "two.png")

	b.set(one, func(it *item) { it.progress = 40 })
	b.set(two, func(it *item) { it.progress = 80 })
	assert.EqualValues(t, 60, b.Progress())

	require.True(t, b.Cancel(two.trackID))
	assert.Error(t, two.ctx.Err(), "cancelling must abort the file's context")

	assert.EqualValues(t, 40, b.Progress(), "cancelled files leave the aggregate")

	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "one.png", snap[0].Name)

	assert.False(t, b.Cancel(two.trackID), "second cancel is a miss")
	assert.False(t, b.Cancel("nope"))
}
