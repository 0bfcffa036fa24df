package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/constants"
	apierrors "github.com/yukikurage/kanban-board-api/internal/errors"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		username, _ := session.Get(constants.ContextKeyUsername).(string)
		role, _ := session.Get(constants.ContextKeyRole).(string)

		if username == "" || !models.Role(role).Valid() {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store the actor in context for easy access in handlers
		c.Set(constants.ContextKeyUsername, username)
		c.Set(constants.ContextKeyRole, models.Role(role))
		c.Next()
	}
}

// RequirePasswordCurrent rejects sessions of users that still hold a default
// or administratively reset password. Must run after RequireAuth.
func RequirePasswordCurrent() gin.HandlerFunc {
	return func(c *gin.Context) {
		mustReset, _ := sessions.Default(c).Get(constants.SessionKeyMustReset).(bool)
		if mustReset {
			apierrors.AbortWithError(c, http.StatusForbidden, apierrors.NewAPIError(
				apierrors.ErrCodePasswordChangeRequired,
				"Password change required before using the board",
			))
			return
		}
		c.Next()
	}
}

// GetActor retrieves the authenticated user from context
func GetActor(c *gin.Context) (models.Actor, bool) {
	username := c.GetString(constants.ContextKeyUsername)
	if username == "" {
		return models.Actor{}, false
	}

	value, exists := c.Get(constants.ContextKeyRole)
	if !exists {
		return models.Actor{}, false
	}

	var role models.Role
	switch v := value.(type) {
	case models.Role:
		role = v
	case string:
		role = models.Role(v)
	default:
		return models.Actor{}, false
	}

	if !role.Valid() {
		return models.Actor{}, false
	}
	return models.Actor{Username: username, Role: role}, true
}
