package api

import (
	"net/http"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) OnboardingList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	q := a.DB.Model(&model.OnboardingSubmission{})
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var submissions []model.OnboardingSubmission
	if err := q.Order("created_at DESC").Find(&submissions).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query submissions", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

type onboardingRequest struct {
	Email   string            `json:"email" binding:"required,email"`
	Name    string            `json:"name" binding:"required"`
	Answers map[string]string `json:"answers"`
}

func (a *API) OnboardingCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req onboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	sub := &model.OnboardingSubmission{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Answers:   req.Answers,
		Status:    model.SubmissionOpen,
		CreatedAt: time.Now(),
	}

	if err := a.DB.Create(sub).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create submission", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// OnboardingApprove turns an open submission into a creator row. Both
// writes happen in one transaction so an approved submission always has its
// creator.
func (a *API) OnboardingApprove(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var creator *model.Creator

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var sub model.OnboardingSubmission
		if err := tx.Where("id = ?", c.Param("id")).First(&sub).Error; err != nil {
			return err
		}

		if sub.Status != model.SubmissionOpen {
			return gorm.ErrInvalidData
		}

		creator = &model.Creator{
			ID:          uuid.NewString(),
			Name:        sub.Name,
			CreatorType: model.CreatorTypeReal,
			NeedsReview: true,
			CreatedAt:   time.Now(),
		}

		if err := tx.Create(creator).Error; err != nil {
			return err
		}

		return tx.Model(&sub).Update("status", model.SubmissionApproved).Error
	})
	if err != nil {
		switch err {
		case gorm.ErrRecordNotFound:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Submission not found",
				"requestID": requestID,
			})
		case gorm.ErrInvalidData:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "Submission already handled",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to approve submission", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"creator": creator})
}
