package api

import (
	"net/http"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MediaDelete removes a file: objects first, then the record and its folder
// memberships. A failed object delete leaves the record in place so the
// file stays visible instead of silently leaking storage.
func (a *API) MediaDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	profile := c.MustGet("profile").(*model.Profile)

	if !service.EffectivePermissions(profile.PrimaryRole, profile.AdditionalRoles, nil).CanDelete {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "You are not allowed to delete files",
			"requestID": requestID,
		})
		return
	}

	var file model.MediaFile
	err := a.DB.Where("id = ?", c.Param("id")).First(&file).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query media record", zap.Error(err))
		return
	}

	keys := []string{file.BucketKey}
	if file.ThumbKey != "" {
		keys = append(keys, file.ThumbKey)
	}

	if err := a.S3.Remove(c.Request.Context(), keys...); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to delete file from storage",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete objects", zap.Error(err))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("media_folders").Where("media_file_id = ?", file.ID).Delete(nil).Error; err != nil {
			return err
		}

		if err := tx.Where("media_id = ?", file.ID).Delete(&model.PendingUpload{}).Error; err != nil {
			return err
		}

		return tx.Delete(&file).Error
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete media record", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}
