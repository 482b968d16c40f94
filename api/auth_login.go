package api

import (
	"net/http"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *API) AuthLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	var profile model.Profile
	err := a.DB.Where("email = ?", req.Email).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid email or password",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query profile", zap.Error(err))
		return
	}

	ok, err := a.Argon.VerifyPasswd(req.Password, profile.PasswordHash)
	if err != nil || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid email or password",
			"requestID": requestID,
		})
		return
	}

	exp := time.Now().Add(24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": profile.ID,
		"exp":     exp.Unix(),
	})

	signed, err := token.SignedString([]byte(viper.GetString("jwt.secret")))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to sign token", zap.Error(err))
		return
	}

	c.SetCookie("auth_token", signed, int(time.Until(exp).Seconds()), "/", viper.GetString("host.domain"), false, true)
	c.JSON(http.StatusOK, gin.H{
		"id":           profile.ID,
		"primary_role": profile.PrimaryRole,
	})
}
