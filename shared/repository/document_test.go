package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestDocumentOwnerMustExist(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	doc := &models.Document{
		EntityType:   models.EntityUnit,
		EntityID:     uuid.New(),
		DocumentType: "photo",
		URL:          "s3://renta-documents/x.jpg",
		UploadedBy:   owner.ID,
	}
	err := repo.Create(scope, doc)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignatureWorkflowHappyPath(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	doc := &models.Document{
		EntityType:   models.EntityProperty,
		EntityID:     property.ID,
		DocumentType: models.DocTypeLeaseAgreement,
		URL:          "s3://renta-documents/lease.pdf",
		UploadedBy:   owner.ID,
	}
	require.NoError(t, repo.Create(scope, doc))
	assert.Equal(t, models.SignatureDraft, doc.Status)

	pending, err := repo.RequestSignature(scope, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SignaturePending, pending.Status)
	assert.NotNil(t, pending.RequestedSignatureAt)

	signer := seedUser(t, db, models.RoleTenant)
	signed, err := repo.Sign(scope, doc.ID, signer.ID, "otp")
	require.NoError(t, err)
	assert.Equal(t, models.SignatureSigned, signed.Status)
	require.NotNil(t, signed.SignedBy)
	assert.Equal(t, signer.ID, *signed.SignedBy)
	assert.Equal(t, "otp", signed.SignatureMethod)
}

func TestOnlyLeaseAgreementsEnterWorkflow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	doc := &models.Document{
		EntityType:   models.EntityProperty,
		EntityID:     property.ID,
		DocumentType: "inspection_report",
		URL:          "s3://renta-documents/report.pdf",
		UploadedBy:   owner.ID,
	}
	require.NoError(t, repo.Create(scope, doc))

	_, err := repo.RequestSignature(scope, doc.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRejectedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	doc := &models.Document{
		EntityType:   models.EntityProperty,
		EntityID:     property.ID,
		DocumentType: models.DocTypeLeaseAgreement,
		URL:          "s3://renta-documents/lease.pdf",
		UploadedBy:   owner.ID,
	}
	require.NoError(t, repo.Create(scope, doc))
	_, err := repo.RequestSignature(scope, doc.ID)
	require.NoError(t, err)

	rejected, err := repo.Reject(scope, doc.ID, "rent amount is wrong")
	require.NoError(t, err)
	assert.Equal(t, models.SignatureRejected, rejected.Status)
	assert.Equal(t, "rent amount is wrong", rejected.Notes)
	assert.Nil(t, rejected.SignedBy)

	// No verb leaves the rejected state.
	_, err = repo.RequestSignature(scope, doc.ID)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = repo.Sign(scope, doc.ID, owner.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = repo.Reject(scope, doc.ID, "again")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignFromDraftIsRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	doc := &models.Document{
		EntityType:   models.EntityProperty,
		EntityID:     property.ID,
		DocumentType: models.DocTypeLeaseAgreement,
		URL:          "s3://renta-documents/lease.pdf",
		UploadedBy:   owner.ID,
	}
	require.NoError(t, repo.Create(scope, doc))

	_, err := repo.Sign(scope, doc.ID, owner.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentOutOfScopeIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)

	owner := seedUser(t, db, models.RoleOwner)
	intruder := seedUser(t, db, models.RoleOwner)
	property := seedProperty(t, db, owner.ID)
	scope := ownerScope(owner, property.ID)

	doc := &models.Document{
		EntityType:   models.EntityProperty,
		EntityID:     property.ID,
		DocumentType: "photo",
		URL:          "s3://renta-documents/x.jpg",
		UploadedBy:   owner.ID,
	}
	require.NoError(t, repo.Create(scope, doc))

	_, err := repo.Get(ownerScope(intruder), doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
