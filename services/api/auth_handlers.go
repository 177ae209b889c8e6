package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/middleware"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/utils"
)

// SignupRequest creates an account. super_admin and agent accounts cannot
// be self-provisioned; agents come through the application flow.
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func selfServiceRole(role string) bool {
	switch models.Role(role) {
	case models.RoleOwner, models.RoleAgency, models.RoleManager, models.RoleTenant, models.RoleMaintenance:
		return true
	}
	return false
}

func handleSignup(db *gorm.DB, tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if !models.ValidRole(req.Role) || !selfServiceRole(req.Role) {
			utils.BadRequestResponse(c, "Role cannot be self-registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to hash password")
			return
		}

		user := &models.User{
			FullName:     req.FullName,
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: string(hash),
			Role:         models.Role(req.Role),
			IsActive:     true,
		}
		if err := db.Create(user).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				utils.ConflictResponse(c, "An account with this email already exists")
				return
			}
			utils.InternalServerErrorResponse(c, "Failed to create account")
			return
		}

		token, exp, err := tm.Generate(user)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue token")
			return
		}
		utils.CreatedResponse(c, "Account created successfully", AuthResponse{
			Token:     token,
			ExpiresAt: exp,
			User:      user,
		})
	}
}

func handleLogin(db *gorm.DB, tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			// Same message for unknown email and wrong password.
			utils.UnauthorizedResponse(c, "Invalid email or password")
			return
		}
		if !user.IsActive {
			utils.UnauthorizedResponse(c, "Account is deactivated")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			utils.UnauthorizedResponse(c, "Invalid email or password")
			return
		}

		now := time.Now()
		db.Model(&user).Update("last_login_at", now)

		token, exp, err := tm.Generate(&user)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue token")
			return
		}
		utils.OKResponse(c, "Login successful", AuthResponse{
			Token:     token,
			ExpiresAt: exp,
			User:      &user,
		})
	}
}

// handleLogout revokes the presented token until its natural expiry.
func handleLogout(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get("token")
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}
		tokenStr, _ := raw.(string)

		claims, err := tm.Parse(tokenStr)
		if err == nil && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := utils.RevokeToken(tokenStr, ttl); err != nil {
				utils.InternalServerErrorResponse(c, "Failed to revoke token")
				return
			}
		}
		utils.OKResponse(c, "Logged out successfully", nil)
	}
}

func handleGetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := middleware.GetUserInfo(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}
		var user models.User
		if err := db.Where("id = ?", info.ID).First(&user).Error; err != nil {
			utils.NotFoundResponse(c, "User not found")
			return
		}
		utils.OKResponse(c, "Profile retrieved successfully", user)
	}
}
