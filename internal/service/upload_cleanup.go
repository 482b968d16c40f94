package service

import (
	"time"

	"agencydesk/creator-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadCleanup periodically expires media records stuck in uploading or
// processing longer than ttl. Their transfer died without reaching the
// error-update path (process crash, lost client), so the sweeper finishes
// the job: record to error, pending row removed. Errored records are never
// resurrected, a retry means a fresh upload.
func UploadCleanup(tick, ttl time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(tick)

	zap.L().Debug("Upload cleanup attached", zap.Duration("tick_every", tick))

	go func() {
		for range ticker.C {
			cutoff := time.Now().Add(-ttl)

			var staleIDs []string
			err := db.
				Model(model.MediaFile{}).
				Where("status IN ? AND created_at < ?", []string{model.StatusUploading, model.StatusProcessing}, cutoff).
				Pluck("id", &staleIDs).
				Error
			if err != nil {
				zap.L().Error("Failed to query db for stale uploads", zap.Error(err))
				continue
			}

			if len(staleIDs) == 0 {
				continue
			}

			zap.L().Debug("Expiring stale uploads", zap.Int("count", len(staleIDs)))

			err = db.Transaction(func(tx *gorm.DB) error {
				err := tx.Model(model.MediaFile{}).
					Where("id IN ?", staleIDs).
					Update("status", model.StatusError).
					Error
				if err != nil {
					return err
				}

				return tx.Where("media_id IN ?", staleIDs).Delete(model.PendingUpload{}).Error
			})
			if err != nil {
				zap.L().Error("Failed to expire stale uploads", zap.Error(err))
			}
		}
	}()
}
