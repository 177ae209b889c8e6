package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
)

// DocumentRepository stores file metadata attached to tenants, properties,
// units and payments, and drives the lease signature workflow. The owner
// reference is polymorphic, so every write validates the referenced row
// with an explicit per-type lookup.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// resolveOwner validates that the owner row exists and returns the property
// it scopes through. A nil property id means the owner has no property
// context (a tenant not assigned to a unit); such documents are reachable
// by the record's owning user and super_admin only.
func (r *DocumentRepository) resolveOwner(owner models.DocumentOwner) (*uuid.UUID, *uuid.UUID, error) {
	switch owner.Type {
	case models.EntityProperty:
		var property models.Property
		if err := r.db.Where("id = ?", owner.ID).First(&property).Error; err != nil {
			return nil, nil, ownerLookupErr(err)
		}
		return &property.ID, &property.UserID, nil

	case models.EntityUnit:
		var unit models.Unit
		if err := r.db.Where("id = ?", owner.ID).First(&unit).Error; err != nil {
			return nil, nil, ownerLookupErr(err)
		}
		return &unit.PropertyID, nil, nil

	case models.EntityTenant:
		var tenant models.Tenant
		if err := r.db.Where("id = ?", owner.ID).First(&tenant).Error; err != nil {
			return nil, nil, ownerLookupErr(err)
		}
		if tenant.UnitID == nil {
			return nil, &tenant.UserID, nil
		}
		var unit models.Unit
		if err := r.db.Where("id = ?", *tenant.UnitID).First(&unit).Error; err != nil {
			return nil, nil, ownerLookupErr(err)
		}
		return &unit.PropertyID, &tenant.UserID, nil

	case models.EntityPayment:
		var payment models.Payment
		if err := r.db.Where("id = ?", owner.ID).First(&payment).Error; err != nil {
			return nil, nil, ownerLookupErr(err)
		}
		var unit models.Unit
		if err := r.db.Where("id = ?", payment.UnitID).First(&unit).Error; err != nil {
			return nil, nil, ownerLookupErr(err)
		}
		return &unit.PropertyID, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown entity type", ErrValidation)
}

func ownerLookupErr(err error) error {
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: referenced entity not found", ErrValidation)
	}
	return err
}

// inScope checks whether a document's owner is reachable by the caller.
func (r *DocumentRepository) inScope(scope *authz.AccessScope, owner models.DocumentOwner) error {
	if scope.IsSuperAdmin {
		return nil
	}

	if scope.Role == models.RoleTenant {
		// Tenants reach documents attached to their own record or unit.
		if scope.TenantID == nil {
			return ErrNotFound
		}
		if owner.Type == models.EntityTenant && owner.ID == *scope.TenantID {
			return nil
		}
		var tenant models.Tenant
		if err := r.db.Where("id = ?", *scope.TenantID).First(&tenant).Error; err != nil {
			return translate(err)
		}
		if owner.Type == models.EntityUnit && tenant.UnitID != nil && owner.ID == *tenant.UnitID {
			return nil
		}
		return ErrNotFound
	}

	propertyID, ownerUserID, err := r.resolveOwner(owner)
	if err != nil {
		return err
	}
	if propertyID != nil && scope.ContainsProperty(*propertyID) {
		return nil
	}
	if ownerUserID != nil && *ownerUserID == scope.UserID {
		return nil
	}
	return ErrNotFound
}

// Create attaches a document record after owner validation. The order is
// scope first, then existence validation of the referenced row.
func (r *DocumentRepository) Create(scope *authz.AccessScope, doc *models.Document) error {
	if !models.ValidDocumentEntityType(string(doc.EntityType)) {
		return fmt.Errorf("%w: unknown entity type", ErrValidation)
	}
	owner := models.DocumentOwner{Type: doc.EntityType, ID: doc.EntityID}
	if err := r.inScope(scope, owner); err != nil {
		return err
	}
	if doc.DocumentType == "" {
		return fmt.Errorf("%w: document type is required", ErrValidation)
	}
	if doc.URL == "" {
		return fmt.Errorf("%w: document url is required", ErrValidation)
	}
	doc.Status = models.SignatureDraft
	return translate(r.db.Create(doc).Error)
}

func (r *DocumentRepository) Get(scope *authz.AccessScope, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, translate(err)
	}
	owner := models.DocumentOwner{Type: doc.EntityType, ID: doc.EntityID}
	if err := r.inScope(scope, owner); err != nil {
		// Existence must not leak through the error class.
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (r *DocumentRepository) ListForOwner(scope *authz.AccessScope, owner models.DocumentOwner) ([]models.Document, error) {
	if !models.ValidDocumentEntityType(string(owner.Type)) {
		return nil, fmt.Errorf("%w: unknown entity type", ErrValidation)
	}
	if err := r.inScope(scope, owner); err != nil {
		return nil, err
	}
	var docs []models.Document
	err := r.db.Where("entity_type = ? AND entity_id = ?", owner.Type, owner.ID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(scope *authz.AccessScope, id uuid.UUID) error {
	doc, err := r.Get(scope, id)
	if err != nil {
		return err
	}
	if doc.Status == models.SignaturePending || doc.Status == models.SignatureSigned {
		return fmt.Errorf("%w: document is part of an active signature workflow", ErrValidation)
	}
	return translate(r.db.Delete(&models.Document{}, "id = ?", id).Error)
}

// RequestSignature moves a draft lease agreement into pending_signature.
// Only lease_agreement documents participate in the workflow.
func (r *DocumentRepository) RequestSignature(scope *authz.AccessScope, id uuid.UUID) (*models.Document, error) {
	doc, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if doc.DocumentType != models.DocTypeLeaseAgreement {
		return nil, fmt.Errorf("%w: only lease agreements can be sent for signature", ErrValidation)
	}
	if doc.Status != models.SignatureDraft {
		return nil, fmt.Errorf("%w: cannot request signature from status %s", ErrValidation, doc.Status)
	}

	now := time.Now()
	err = r.transition(id, models.SignatureDraft, map[string]interface{}{
		"status":                 models.SignaturePending,
		"requested_signature_at": now,
	})
	if err != nil {
		return nil, err
	}
	doc.Status = models.SignaturePending
	doc.RequestedSignatureAt = &now
	return doc, nil
}

// Sign completes the workflow. Signing is a tenant-side action on a
// pending document.
func (r *DocumentRepository) Sign(scope *authz.AccessScope, id uuid.UUID, signedBy uuid.UUID, method string) (*models.Document, error) {
	doc, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.SignaturePending {
		return nil, fmt.Errorf("%w: cannot sign a document in status %s", ErrValidation, doc.Status)
	}
	if method == "" {
		method = "checkbox"
	}

	now := time.Now()
	err = r.transition(id, models.SignaturePending, map[string]interface{}{
		"status":           models.SignatureSigned,
		"signed_by":        signedBy,
		"signed_at":        now,
		"signature_method": method,
	})
	if err != nil {
		return nil, err
	}
	doc.Status = models.SignatureSigned
	doc.SignedBy = &signedBy
	doc.SignedAt = &now
	doc.SignatureMethod = method
	return doc, nil
}

// Reject terminates the workflow. A rejected document cannot re-enter it;
// a fresh lease draft must be uploaded instead.
func (r *DocumentRepository) Reject(scope *authz.AccessScope, id uuid.UUID, reason string) (*models.Document, error) {
	doc, err := r.Get(scope, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.SignaturePending {
		return nil, fmt.Errorf("%w: cannot reject a document in status %s", ErrValidation, doc.Status)
	}

	err = r.transition(id, models.SignaturePending, map[string]interface{}{
		"status": models.SignatureRejected,
		"notes":  reason,
	})
	if err != nil {
		return nil, err
	}
	doc.Status = models.SignatureRejected
	doc.Notes = reason
	return doc, nil
}

// transition applies a guarded status update; the expected-status
// precondition defends against concurrent workflow actions.
func (r *DocumentRepository) transition(id uuid.UUID, from models.SignatureStatus, updates map[string]interface{}) error {
	res := r.db.Model(&models.Document{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: document status changed concurrently", ErrConflict)
	}
	return nil
}
