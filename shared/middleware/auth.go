package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/utils"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// RequireAuth validates the bearer token, rejects revoked tokens and loads
// the caller's identity into the gin context.
func RequireAuth(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.UnauthorizedResponse(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.UnauthorizedResponse(c, "Authorization header must be a bearer token")
			c.Abort()
			return
		}
		tokenStr := parts[1]

		claims, err := tm.Parse(tokenStr)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if utils.IsTokenRevoked(tokenStr) {
			utils.UnauthorizedResponse(c, "Token has been revoked")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Set("token", tokenStr)
		c.Next()
	}
}

// RequireRole restricts a route group to the listed roles. super_admin
// always passes.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserInfo(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			c.Abort()
			return
		}
		if user.IsSuperAdmin() {
			c.Next()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		utils.ForbiddenResponse(c, "Insufficient role for this operation")
		c.Abort()
	}
}

// GetUserInfo extracts the request identity set by RequireAuth.
func GetUserInfo(c *gin.Context) (*models.UserInfo, bool) {
	rawID, ok := c.Get(ContextUserID)
	if !ok {
		return nil, false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		return nil, false
	}

	info := &models.UserInfo{ID: userID}
	if email, ok := c.Get(ContextEmail); ok {
		info.Email, _ = email.(string)
	}
	if role, ok := c.Get(ContextRole); ok {
		info.Role, _ = role.(models.Role)
	}
	return info, true
}
