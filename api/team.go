package api

import (
	"net/http"
	"slices"
	"time"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validPrimaryRoles = []string{model.RoleAdmin, model.RoleManager, model.RoleEmployee}

func (a *API) TeamList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var members []model.Profile
	if err := a.DB.Order("name").Find(&members).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query profiles", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

type teamCreateRequest struct {
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=10"`
	Name            string   `json:"name" binding:"required"`
	Phone           string   `json:"phone"`
	Telegram        string   `json:"telegram"`
	PrimaryRole     string   `json:"primary_role" binding:"required"`
	AdditionalRoles []string `json:"additional_roles"`
}

// TeamCreate provisions a staff account. Additional roles go through the
// exclusivity rules so the stored set always satisfies them.
func (a *API) TeamCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req teamCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if !slices.Contains(validPrimaryRoles, req.PrimaryRole) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid primary role",
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(req.Password)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err))
		return
	}

	member := &model.Profile{
		ID:              uuid.NewString(),
		Email:           req.Email,
		Name:            req.Name,
		Phone:           req.Phone,
		Telegram:        req.Telegram,
		PasswordHash:    hash,
		PrimaryRole:     req.PrimaryRole,
		AdditionalRoles: service.NormalizeRoles(req.AdditionalRoles),
		Status:          "active",
		CreatedAt:       time.Now(),
	}

	if err := a.DB.Create(member).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "A member with this email already exists",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create profile", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

type teamRolesRequest struct {
	PrimaryRole     string   `json:"primary_role" binding:"required"`
	AdditionalRoles []string `json:"additional_roles"`
}

// TeamUpdateRoles replaces a member's roles. The additional set is replayed
// through the add-role transitions, so a payload that violates exclusivity
// normalizes to what a role-editing UI would have produced.
func (a *API) TeamUpdateRoles(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req teamRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	if !slices.Contains(validPrimaryRoles, req.PrimaryRole) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid primary role",
			"requestID": requestID,
		})
		return
	}

	roles := service.NormalizeRoles(req.AdditionalRoles)

	res := a.DB.Model(&model.Profile{}).
		Where("id = ?", c.Param("id")).
		Updates(map[string]any{
			"primary_role":     req.PrimaryRole,
			"additional_roles": model.StringSlice(roles),
		})
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update roles", zap.Error(res.Error))
		return
	}

	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Member not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"primary_role":     req.PrimaryRole,
		"additional_roles": roles,
	})
}
