package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

const actorKey = "actor"

// Auth validates the bearer token and resolves the caller into an Actor
// once, so downstream handlers never rediscover the role from the
// database.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.Unauthorized(c, "Missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.LogDebug("Token validation failed: %v", err)
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Unauthorized(c, "Account no longer exists")
			} else {
				utils.LogError("User lookup failed in auth middleware: %v", err)
				utils.InternalServerError(c, "Internal server error")
			}
			c.Abort()
			return
		}

		c.Set(actorKey, models.NewActor(&user))
		c.Next()
	}
}

// RequireRoles aborts unless the resolved actor has one of the given roles
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		utils.Forbidden(c, "Insufficient permissions")
		c.Abort()
	}
}

// GetActor returns the actor resolved by Auth for this request
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
