package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/kanban-board-api/internal/errors"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

// RequireElevated allows any role above the baseline collaborator
func RequireElevated() gin.HandlerFunc {
	return requireRole("An elevated role is required", func(actor models.Actor) bool {
		return actor.IsElevated()
	})
}

// RequireAdmin allows only admins
func RequireAdmin() gin.HandlerFunc {
	return requireRole("Only an admin can perform this action", func(actor models.Actor) bool {
		return actor.Role == models.RoleAdmin
	})
}

func requireRole(message string, allowed func(models.Actor) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !allowed(actor) {
			apierrors.InsufficientPermissions(c, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
