package service

import (
	"path/filepath"
	"testing"
	"time"

	"agencydesk/creator-api/db"
	"agencydesk/creator-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	return conn
}

func seedMedia(t *testing.T, conn *gorm.DB, creatorID, bucket, filename string) *model.MediaFile {
	t.Helper()

	rec := &model.MediaFile{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Bucket:    bucket,
		BucketKey: creatorID + "/" + uuid.NewString(),
		Filename:  filename,
		MimeType:  "image/png",
		SizeBytes: 1,
		Status:    model.StatusComplete,
		CreatedAt: time.Now(),
	}
	require.NoError(t, conn.Create(rec).Error)

	return rec
}

func memberIDs(t *testing.T, conn *gorm.DB, folderID string) []string {
	t.Helper()

	var ids []string
	err := conn.Table("media_folders").
		Where("folder_id = ?", folderID).
		Pluck("media_file_id", &ids).
		Error
	require.NoError(t, err)

	return ids
}
