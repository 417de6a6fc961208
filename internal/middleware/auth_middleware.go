package middleware

import (
	"net/http"
	"strings"

	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/utils"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware validates the JWT and resolves the actor: the fresh User row
// is loaded on every request so role changes and deletions take effect
// immediately, not at token expiry.
func AuthMiddleware(jwtSecret string, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		user, err := users.GetByID(claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			c.Abort()
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "account no longer exists",
			})
			c.Abort()
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

// RequireRoles is the coarse route-level gate: the actor's role must be in
// the allowed set. Fine-grained ownership checks stay inside the services.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error": "insufficient role",
		})
		c.Abort()
	}
}

// CurrentUser returns the actor resolved by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the login cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != authHeader {
			return token
		}
		return ""
	}

	cookie, err := c.Cookie("token")
	if err != nil {
		return ""
	}
	return cookie
}
