package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEntityType names the table a document is attached to. The
// association is polymorphic, so the referenced row is validated by an
// explicit lookup at write time; the database cannot enforce it.
type DocumentEntityType string

const (
	EntityTenant   DocumentEntityType = "tenant"
	EntityProperty DocumentEntityType = "property"
	EntityUnit     DocumentEntityType = "unit"
	EntityPayment  DocumentEntityType = "payment"
)

func ValidDocumentEntityType(s string) bool {
	switch DocumentEntityType(s) {
	case EntityTenant, EntityProperty, EntityUnit, EntityPayment:
		return true
	}
	return false
}

// DocumentOwner is the tagged owner reference resolved through a per-type
// lookup rather than an unconstrained foreign key.
type DocumentOwner struct {
	Type DocumentEntityType
	ID   uuid.UUID
}

const DocTypeLeaseAgreement = "lease_agreement"

// SignatureStatus: draft -> pending_signature -> {signed, rejected}.
// Both signed and rejected are terminal; re-submission after rejection
// requires a new document record.
type SignatureStatus string

const (
	SignatureDraft    SignatureStatus = "draft"
	SignaturePending  SignatureStatus = "pending_signature"
	SignatureSigned   SignatureStatus = "signed"
	SignatureRejected SignatureStatus = "rejected"
)

// Document is a stored file attached to a tenant, property, unit or payment.
// Only lease_agreement documents participate in the signature workflow.
type Document struct {
	ID                   uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EntityType           DocumentEntityType `json:"entity_type" gorm:"type:varchar(20);not null;index:idx_document_owner"`
	EntityID             uuid.UUID          `json:"entity_id" gorm:"type:uuid;not null;index:idx_document_owner"`
	DocumentType         string             `json:"document_type" gorm:"not null"`
	URL                  string             `json:"url" gorm:"not null"`
	Size                 int64              `json:"size"`
	MimeType             string             `json:"mime_type"`
	UploadedBy           uuid.UUID          `json:"uploaded_by" gorm:"type:uuid;not null"`
	Status               SignatureStatus    `json:"status" gorm:"type:varchar(30);default:'draft'"`
	RequestedSignatureAt *time.Time         `json:"requested_signature_at,omitempty"`
	SignedBy             *uuid.UUID         `json:"signed_by,omitempty" gorm:"type:uuid"`
	SignedAt             *time.Time         `json:"signed_at,omitempty"`
	SignatureMethod      string             `json:"signature_method,omitempty"`
	Notes                string             `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
