package service

import (
	"testing"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCleanupExpiresStaleRecords(t *testing.T) {
	conn := newTestDB(t)

	stale := seedMedia(t, conn, "c1", "b1", "stale.png")
	require.NoError(t, conn.Model(stale).Updates(map[string]any{
		"status":     model.StatusUploading,
		"created_at": time.Now().Add(-2 * time.Hour),
	}).Error)
	require.NoError(t, conn.Create(&model.PendingUpload{
		ID:        uuid.NewString(),
		MediaID:   stale.ID,
		CreatorID: "c1",
		Filename:  "stale.png",
		Bucket:    "b1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}).Error)

	fresh := seedMedia(t, conn, "c1", "b1", "fresh.png")
	require.NoError(t, conn.Model(fresh).Update("status", model.StatusUploading).Error)

	done := seedMedia(t, conn, "c1", "b1", "done.png")
	require.NoError(t, conn.Model(done).Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	UploadCleanup(10*time.Millisecond, time.Hour, conn)

	assert.Eventually(t, func() bool {
		var got model.MediaFile
		if err := conn.First(&got, "id = ?", stale.ID).Error; err != nil {
			return false
		}
		return got.Status == model.StatusError
	}, 2*time.Second, 20*time.Millisecond, "stale uploading record should be expired")

	var pending int64
	require.NoError(t, conn.Model(&model.PendingUpload{}).Where("media_id = ?", stale.ID).Count(&pending).Error)
	assert.Zero(t, pending)

	var got model.MediaFile
	require.NoError(t, conn.First(&got, "id = ?", fresh.ID).Error)
	assert.Equal(t, model.StatusUploading, got.Status, "records inside the ttl stay put")

	got = model.MediaFile{}
	require.NoError(t, conn.First(&got, "id = ?", done.ID).Error)
	assert.Equal(t, model.StatusComplete, got.Status, "complete records are never touched")
}
