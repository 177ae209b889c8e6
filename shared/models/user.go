package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the single role attached to a user account. Role is immutable
// after signup except via administrative migration.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleAgency      Role = "agency"
	RoleOwner       Role = "owner"
	RoleManager     Role = "manager"
	RoleTenant      Role = "tenant"
	RoleMaintenance Role = "maintenance"
	RoleAgent       Role = "agent"
)

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSuperAdmin, RoleAgency, RoleOwner, RoleManager, RoleTenant, RoleMaintenance, RoleAgent:
		return true
	}
	return false
}

// User represents an authenticated account
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName     string     `json:"full_name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;index"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserInfo is the request-scoped identity extracted from JWT claims.
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

func (ui *UserInfo) IsSuperAdmin() bool {
	return ui.Role == RoleSuperAdmin
}
