package api

import (
	"net/http"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MediaDownload hands out a short-lived signed URL for the binary. Only
// complete files are downloadable.
func (a *API) MediaDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

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

	if file.Status != model.StatusComplete {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "File is not ready for download",
			"requestID": requestID,
		})
		return
	}

	url, err := a.S3.SignedURL(c.Request.Context(), file.BucketKey, 15*time.Minute)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to presign download", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"filename": file.Filename,
	})
}
