package api

import (
	"errors"
	"net/http"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (a *API) CategoryCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	cat, err := a.Reconciler.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create category", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

func (a *API) CategoryList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var categories []model.Category
	if err := a.DB.Preload("Folders").Order("name").Find(&categories).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query categories", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (a *API) CategoryRename(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if err := a.Reconciler.RenameCategory(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		a.categoryError(c, requestID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CategoryDelete cascades: child folders and their memberships go with the
// category, member files stay.
func (a *API) CategoryDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	if err := a.Reconciler.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		a.categoryError(c, requestID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) categoryError(c *gin.Context, requestID string, err error) {
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

	zap.L().Error("Category operation failed", zap.Error(err))
}
