package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is a rental property owned by a landlord (or registered under an
// agency). Soft-deleted rows are hidden from default queries but stay
// joinable for historical payment and tenancy records.
type Property struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID             uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	AgencyID           *uuid.UUID `json:"agency_id,omitempty" gorm:"type:uuid;index"`
	PerformedByAgentID *uuid.UUID `json:"performed_by_agent_id,omitempty" gorm:"type:uuid;index"`
	Name               string     `json:"name" gorm:"not null"`
	Address            string     `json:"address" gorm:"not null"`
	District           string     `json:"district"`
	IsDeleted          bool       `json:"is_deleted" gorm:"default:false;index"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
	DeletedBy          *uuid.UUID `json:"deleted_by,omitempty" gorm:"type:uuid"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Units []Unit `json:"units,omitempty" gorm:"foreignKey:PropertyID"`
}

func (Property) TableName() string {
	return "properties"
}

// UnitStatus must reflect whether an active tenant is currently assigned.
type UnitStatus string

const (
	UnitVacant      UnitStatus = "vacant"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

// Unit is a rentable space inside exactly one property.
type Unit struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PropertyID  uuid.UUID       `json:"property_id" gorm:"type:uuid;not null;index"`
	Label       string          `json:"label" gorm:"not null"`
	Status      UnitStatus      `json:"status" gorm:"type:varchar(20);default:'vacant'"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Unit) TableName() string {
	return "units"
}
