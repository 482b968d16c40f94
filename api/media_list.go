package api

import (
	"net/http"
	"strconv"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaList returns media records filtered by creator, folder or status.
// folder=none selects files outside any folder.
func (a *API) MediaList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	q := a.DB.Model(&model.MediaFile{}).Preload("Folders")

	if v := c.Query("creator_id"); v != "" {
		q = q.Where("creator_id = ?", v)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	members := a.DB.Table("media_folders").Select("media_file_id")
	switch folder := c.Query("folder"); folder {
	case "":
	case "none":
		q = q.Where("id NOT IN (?)", members)
	default:
		q = q.Where("id IN (?)", members.Where("folder_id = ?", folder))
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var files []model.MediaFile
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&files).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query media files", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
