package api

import (
	"net/http"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (a *API) CreatorList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	q := a.DB.Model(&model.Creator{})
	if v := c.Query("team"); v != "" {
		q = q.Where("team = ?", v)
	}
	if v := c.Query("needs_review"); v == "true" {
		q = q.Where("needs_review = ?", true)
	}

	var creators []model.Creator
	if err := q.Order("name").Find(&creators).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query creators", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"creators": creators})
}

type creatorRequest struct {
	Name              string            `json:"name" binding:"required"`
	Gender            string            `json:"gender"`
	Team              string            `json:"team"`
	CreatorType       string            `json:"creator_type"`
	SocialLinks       map[string]string `json:"social_links"`
	MarketingStrategy []string          `json:"marketing_strategy"`
}

func (a *API) CreatorCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req creatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if req.CreatorType == "" {
		req.CreatorType = model.CreatorTypeReal
	}
	if req.CreatorType != model.CreatorTypeReal && req.CreatorType != model.CreatorTypeAI {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid creator type",
			"requestID": requestID,
		})
		return
	}

	creator := &model.Creator{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Gender:            req.Gender,
		Team:              req.Team,
		CreatorType:       req.CreatorType,
		SocialLinks:       req.SocialLinks,
		MarketingStrategy: req.MarketingStrategy,
		CreatedAt:         time.Now(),
	}

	if err := a.DB.Create(creator).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create creator", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"creator": creator})
}

type creatorEditRequest struct {
	Name              *string           `json:"name"`
	Gender            *string           `json:"gender"`
	Team              *string           `json:"team"`
	SocialLinks       map[string]string `json:"social_links"`
	MarketingStrategy []string          `json:"marketing_strategy"`
	NeedsReview       *bool             `json:"needs_review"`
}

func (a *API) CreatorEdit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req creatorEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Team != nil {
		updates["team"] = *req.Team
	}
	if req.SocialLinks != nil {
		updates["social_links"] = model.StringMap(req.SocialLinks)
	}
	if req.MarketingStrategy != nil {
		updates["marketing_strategy"] = model.StringSlice(req.MarketingStrategy)
	}
	if req.NeedsReview != nil {
		updates["needs_review"] = *req.NeedsReview
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	res := a.DB.Model(&model.Creator{}).Where("id = ?", c.Param("id")).Updates(updates)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update creator", zap.Error(res.Error))
		return
	}

	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Creator not found",
			"requestID": requestID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) SocialLoginList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var logins []model.SocialMediaLogin
	err := a.DB.Where("creator_id = ?", c.Param("id")).Find(&logins).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query social logins", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"logins": logins})
}

type socialLoginRequest struct {
	Platform string `json:"platform" binding:"required"`
	Username string `json:"username" binding:"required"`
	Secret   string `json:"secret"`
}

func (a *API) SocialLoginCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req socialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	login := &model.SocialMediaLogin{
		ID:        uuid.NewString(),
		CreatorID: c.Param("id"),
		Platform:  req.Platform,
		Username:  req.Username,
		Secret:    req.Secret,
		CreatedAt: time.Now(),
	}

	if err := a.DB.Create(login).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create social login", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"login": login})
}
