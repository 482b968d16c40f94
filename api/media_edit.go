package api

import (
	"net/http"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mediaEditRequest struct {
	Filename    *string `json:"filename"`
	Description *string `json:"description"`
}

func (a *API) MediaEdit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	profile := c.MustGet("profile").(*model.Profile)

	if !service.EffectivePermissions(profile.PrimaryRole, profile.AdditionalRoles, nil).CanEdit {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "You are not allowed to edit files",
			"requestID": requestID,
		})
		return
	}

	var req mediaEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{}
	if req.Filename != nil && *req.Filename != "" {
		updates["filename"] = *req.Filename
	}
	if req.Description != nil {
		if len(*req.Description) > 200 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Description can't be longer than 200 characters",
				"requestID": requestID,
			})
			return
		}
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	res := a.DB.Model(&model.MediaFile{}).Where("id = ?", c.Param("id")).Updates(updates)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update media record", zap.Error(res.Error))
		return
	}

	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": requestID,
		})
		return
	}

	var file model.MediaFile
	if err := a.DB.Preload("Folders").First(&file, "id = ?", c.Param("id")).Error; err != nil && err != gorm.ErrRecordNotFound {
		zap.L().Error("Failed to reload media record", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"file": file})
}
