package api

import (
	"net/http"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaPending lists uploads whose binary never finished landing. Clients
// use it to re-offer the original files after a reload; the rows hold
// metadata only, never file content.
func (a *API) MediaPending(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	q := a.DB.Model(&model.PendingUpload{})
	if v := c.Query("creator_id"); v != "" {
		q = q.Where("creator_id = ?", v)
	}

	var pending []model.PendingUpload
	if err := q.Order("created_at DESC").Find(&pending).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query pending uploads", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending})
}
