package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classpulse/engagement-service/internal/auth"
	"github.com/classpulse/engagement-service/internal/models"
)

// Context keys populated by the auth middleware.
const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
	ContextEmailKey  = "user_email"
)

// JWTAuthMiddleware resolves the bearer token to (userID, role) or aborts
// with 401. It never touches domain tables: the token carries everything.
type JWTAuthMiddleware struct {
	jwt *auth.JWTService
}

func NewJWTAuthMiddleware(jwt *auth.JWTService) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{jwt: jwt}
}

func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status:  "error",
				Message: "Missing authorization header",
			})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status:  "error",
				Message: "Authorization header must be a bearer token",
			})
			return
		}

		claims, err := m.jwt.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status:  "error",
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

// RequireRoleMiddleware gates a route group to one role. Must run after
// AuthMiddleware.
func (m *JWTAuthMiddleware) RequireRoleMiddleware(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status:  "error",
				Message: "User not authenticated",
			})
			return
		}
		if have, ok := v.(models.UserRole); !ok || have != role {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Status:  "error",
				Message: "Insufficient role",
			})
			return
		}
		c.Next()
	}
}
