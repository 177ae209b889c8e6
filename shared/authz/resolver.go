package authz

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/utils"
)

// AccessScope is the resolved set of rows a request may touch. An empty
// scope is a valid answer, never an error: a manager with no active
// assignments simply sees empty result sets.
type AccessScope struct {
	UserID       uuid.UUID                                `json:"user_id"`
	Role         models.Role                              `json:"role"`
	IsSuperAdmin bool                                     `json:"is_super_admin"`
	PropertyIDs  []uuid.UUID                              `json:"property_ids"`
	Permissions  map[uuid.UUID]models.ManagerPermissions  `json:"permissions,omitempty"`
	TenantID     *uuid.UUID                               `json:"tenant_id,omitempty"`
}

// ContainsProperty reports whether the property is inside the scope.
// super_admin is unrestricted.
func (s *AccessScope) ContainsProperty(id uuid.UUID) bool {
	if s.IsSuperAdmin {
		return true
	}
	for _, pid := range s.PropertyIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// HasCapability gates a manager verb on one property. Non-manager roles in
// scope are not capability-restricted.
func (s *AccessScope) HasCapability(propertyID uuid.UUID, cap models.Capability) bool {
	if s.IsSuperAdmin {
		return true
	}
	if s.Role != models.RoleManager {
		return s.ContainsProperty(propertyID)
	}
	perms, ok := s.Permissions[propertyID]
	if !ok {
		return false
	}
	return perms.Has(cap)
}

// Resolver loads a user's scope from the database, with a short-lived Redis
// cache for manager scopes (invalidated when an assignment row changes).
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

const managerScopeTTL = 5 * time.Minute

// Resolve determines the caller's property scope from their role.
func (r *Resolver) Resolve(user *models.UserInfo) (*AccessScope, error) {
	scope := &AccessScope{
		UserID: user.ID,
		Role:   user.Role,
	}

	switch user.Role {
	case models.RoleSuperAdmin:
		scope.IsSuperAdmin = true

	case models.RoleOwner, models.RoleAgency:
		var ids []uuid.UUID
		err := r.db.Model(&models.Property{}).
			Where("is_deleted = ?", false).
			Where(r.db.Where("user_id = ?", user.ID).Or("agency_id = ?", user.ID)).
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
		scope.PropertyIDs = ids

	case models.RoleManager:
		if cached, err := utils.CacheGet(utils.ManagerScopeKey(user.ID.String())); err == nil {
			var s AccessScope
			if json.Unmarshal([]byte(cached), &s) == nil && s.UserID == user.ID {
				return &s, nil
			}
		}

		var rows []models.PropertyManager
		err := r.db.Where("manager_id = ? AND status = ?", user.ID, models.ManagerActive).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		scope.Permissions = make(map[uuid.UUID]models.ManagerPermissions, len(rows))
		for _, row := range rows {
			scope.PropertyIDs = append(scope.PropertyIDs, row.PropertyID)
			scope.Permissions[row.PropertyID] = row.Permissions
		}

		if data, err := json.Marshal(scope); err == nil {
			_ = utils.CacheSet(utils.ManagerScopeKey(user.ID.String()), string(data), managerScopeTTL)
		}

	case models.RoleTenant:
		var tenant models.Tenant
		err := r.db.Where("user_account_id = ?", user.ID).First(&tenant).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// Account exists but no tenant row is linked yet; empty scope.
				return scope, nil
			}
			return nil, err
		}
		scope.TenantID = &tenant.ID

	case models.RoleAgent, models.RoleMaintenance:
		// No property scope. Agent surfaces filter by agent_id and
		// maintenance surfaces by assigned_to.
	}

	return scope, nil
}
