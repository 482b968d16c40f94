package api

import (
	"net/http"
	"slices"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var customStatuses = []string{
	model.CustomPending,
	model.CustomPartiallyPaid,
	model.CustomFullyPaid,
	model.CustomDelivered,
	model.CustomCancelled,
}

func (a *API) CustomList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	q := a.DB.Model(&model.Custom{})
	if v := c.Query("creator_id"); v != "" {
		q = q.Where("creator_id = ?", v)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var customs []model.Custom
	if err := q.Order("created_at DESC").Find(&customs).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query customs", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"customs": customs})
}

type customCreateRequest struct {
	CreatorID   string     `json:"creator_id" binding:"required"`
	Description string     `json:"description" binding:"required"`
	DueDate     *time.Time `json:"due_date"`
	Downpayment float64    `json:"downpayment"`
	FullPrice   float64    `json:"full_price" binding:"required"`
	Attachments []string   `json:"attachments"`
	SaleBy      string     `json:"sale_by"`
}

func (a *API) CustomCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req customCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	custom := &model.Custom{
		ID:          uuid.NewString(),
		CreatorID:   req.CreatorID,
		Description: req.Description,
		Status:      model.CustomPending,
		DueDate:     req.DueDate,
		Downpayment: req.Downpayment,
		FullPrice:   req.FullPrice,
		Attachments: req.Attachments,
		SaleBy:      req.SaleBy,
		CreatedAt:   time.Now(),
	}

	if err := a.DB.Create(custom).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create custom order", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"custom": custom})
}

type customEditRequest struct {
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      *string    `json:"status"`
	Downpayment *float64   `json:"downpayment"`
}

// CustomEdit updates an order. Description and due date are locked unless
// the order is partially or fully paid; status moves are always allowed.
func (a *API) CustomEdit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req customEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	var custom model.Custom
	err := a.DB.Where("id = ?", c.Param("id")).First(&custom).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Order not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query custom order", zap.Error(err))
		return
	}

	updates := map[string]any{}

	if req.Description != nil || req.DueDate != nil {
		if !custom.Editable() {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "Order details can only be edited while partially or fully paid",
				"requestID": requestID,
			})
			return
		}

		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.DueDate != nil {
			updates["due_date"] = *req.DueDate
		}
	}

	if req.Status != nil {
		if !slices.Contains(customStatuses, *req.Status) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid status",
				"requestID": requestID,
			})
			return
		}
		updates["status"] = *req.Status
	}

	if req.Downpayment != nil {
		updates["downpayment"] = *req.Downpayment
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	if err := a.DB.Model(&custom).Updates(updates).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update custom order", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"custom": custom})
}
