package api

import (
	"net/http"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
)

func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate only runs after the JWT middleware, so reaching it means the
// token was fine
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Me returns the caller's profile together with their derived permissions,
// so clients never compute capabilities on their own.
func (a *API) Me(c *gin.Context) {
	profile := c.MustGet("profile").(*model.Profile)

	c.JSON(http.StatusOK, gin.H{
		"profile":     profile,
		"permissions": service.EffectivePermissions(profile.PrimaryRole, profile.AdditionalRoles, nil),
	})
}
