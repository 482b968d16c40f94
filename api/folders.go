package api

import (
	"errors"
	"net/http"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type folderCreateRequest struct {
	Name       string   `json:"name" binding:"required"`
	FileIDs    []string `json:"file_ids"`
	CategoryID *string  `json:"category_id"`
}

func (a *API) FolderCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req folderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	folder, err := a.Reconciler.CreateFolder(c.Request.Context(), req.Name, req.FileIDs, req.CategoryID)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Category not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create folder", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"folder": folder})
}

func (a *API) FolderList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	q := a.DB.Model(&model.Folder{})
	if v := c.Query("category_id"); v != "" {
		q = q.Where("category_id = ?", v)
	}

	var folders []model.Folder
	if err := q.Order("name").Find(&folders).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query folders", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

type folderRenameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (a *API) FolderRename(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req folderRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if err := a.Reconciler.RenameFolder(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		a.folderError(c, requestID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type folderFilesRequest struct {
	FileIDs []string `json:"file_ids" binding:"required"`
}

func (a *API) FolderAddFiles(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req folderFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if err := a.Reconciler.AddFilesToFolder(c.Request.Context(), req.FileIDs, c.Param("id")); err != nil {
		a.folderError(c, requestID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) FolderRemoveFiles(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req folderFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if err := a.Reconciler.RemoveFilesFromFolder(c.Request.Context(), req.FileIDs, c.Param("id")); err != nil {
		a.folderError(c, requestID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FolderDelete detaches every member file and removes the folder. The files
// themselves are untouched.
func (a *API) FolderDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	if err := a.Reconciler.DeleteFolder(c.Request.Context(), c.Param("id")); err != nil {
		a.folderError(c, requestID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) folderError(c *gin.Context, requestID string, err error) {
	if errors.Is(err, service.ErrFolderNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Folder not found",
			"requestID": requestID,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error("Folder operation failed", zap.Error(err))
}
