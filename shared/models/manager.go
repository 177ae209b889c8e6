package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ManagerPermissions is the fixed set of capability flags on a
// manager-to-property assignment. It is persisted as a JSON column; the
// struct keeps the shape explicit so a missing key can never silently
// widen access.
type ManagerPermissions struct {
	CanViewTenants       bool `json:"canViewTenants"`
	CanEditTenants       bool `json:"canEditTenants"`
	CanViewPayments      bool `json:"canViewPayments"`
	CanRecordPayments    bool `json:"canRecordPayments"`
	CanViewMaintenance   bool `json:"canViewMaintenance"`
	CanManageMaintenance bool `json:"canManageMaintenance"`
	CanEditProperty      bool `json:"canEditProperty"`
}

// DefaultManagerPermissions is the minimum-privilege default applied when an
// owner invites a manager: view-only, no mutating capabilities.
func DefaultManagerPermissions() ManagerPermissions {
	return ManagerPermissions{
		CanViewTenants:     true,
		CanViewPayments:    true,
		CanViewMaintenance: true,
	}
}

func (p *ManagerPermissions) Scan(value interface{}) error {
	if value == nil {
		*p = ManagerPermissions{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan ManagerPermissions: %v", value)
	}
	return json.Unmarshal(bytes, p)
}

func (p ManagerPermissions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Capability names a single permission bit on a manager assignment.
type Capability string

const (
	CapViewTenants       Capability = "canViewTenants"
	CapEditTenants       Capability = "canEditTenants"
	CapViewPayments      Capability = "canViewPayments"
	CapRecordPayments    Capability = "canRecordPayments"
	CapViewMaintenance   Capability = "canViewMaintenance"
	CapManageMaintenance Capability = "canManageMaintenance"
	CapEditProperty      Capability = "canEditProperty"
)

// Has is a direct field lookup with no inheritance or merging; a manager
// can hold at most one active assignment per property.
func (p ManagerPermissions) Has(cap Capability) bool {
	switch cap {
	case CapViewTenants:
		return p.CanViewTenants
	case CapEditTenants:
		return p.CanEditTenants
	case CapViewPayments:
		return p.CanViewPayments
	case CapRecordPayments:
		return p.CanRecordPayments
	case CapViewMaintenance:
		return p.CanViewMaintenance
	case CapManageMaintenance:
		return p.CanManageMaintenance
	case CapEditProperty:
		return p.CanEditProperty
	}
	return false
}

// ManagerStatus is the lifecycle state of an assignment. Only active rows
// grant scope; pending and revoked grant nothing.
type ManagerStatus string

const (
	ManagerPending ManagerStatus = "pending"
	ManagerActive  ManagerStatus = "active"
	ManagerRevoked ManagerStatus = "revoked"
)

// PropertyManager links a manager user to a property. The (property_id,
// manager_id) pair is unique at the database level; that constraint, not the
// application pre-check, is the real guard against concurrent invitations.
type PropertyManager struct {
	ID          uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PropertyID  uuid.UUID          `json:"property_id" gorm:"type:uuid;not null;uniqueIndex:idx_property_manager"`
	ManagerID   uuid.UUID          `json:"manager_id" gorm:"type:uuid;not null;uniqueIndex:idx_property_manager"`
	Permissions ManagerPermissions `json:"permissions" gorm:"type:jsonb"`
	InvitedBy   uuid.UUID          `json:"invited_by" gorm:"type:uuid;not null"`
	Status      ManagerStatus      `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (PropertyManager) TableName() string {
	return "property_managers"
}
