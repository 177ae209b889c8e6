package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

const maxDocumentSize = 20 << 20 // 20 MiB

type RejectSignatureRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type SignDocumentRequest struct {
	Method string `json:"method"`
}

// handleUploadDocument accepts a multipart upload, stores the blob in S3
// and records the metadata row. Form fields: file, entity_type, entity_id,
// document_type.
func handleUploadDocument(repo *repository.DocumentRepository, resolver *authz.Resolver, store *utils.DocumentStore, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionCreate) {
			return
		}

		entityType := c.PostForm("entity_type")
		if !models.ValidDocumentEntityType(entityType) {
			utils.BadRequestResponse(c, "Unknown entity type")
			return
		}
		entityID, err := uuid.Parse(c.PostForm("entity_id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid entity_id")
			return
		}
		documentType := c.PostForm("document_type")
		if documentType == "" {
			utils.BadRequestResponse(c, "document_type is required")
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.BadRequestResponse(c, "File is required")
			return
		}
		if fileHeader.Size > maxDocumentSize {
			utils.BadRequestResponse(c, "File exceeds the maximum size of 20MB")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to read uploaded file")
			return
		}
		defer file.Close()
		body, err := io.ReadAll(file)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to read uploaded file")
			return
		}

		mimeType := fileHeader.Header.Get("Content-Type")
		key := fmt.Sprintf("%s/%s/%s-%s", entityType, entityID, uuid.New().String(), fileHeader.Filename)
		url, err := store.Upload(key, body, mimeType)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to store document")
			return
		}

		doc := &models.Document{
			EntityType:   models.DocumentEntityType(entityType),
			EntityID:     entityID,
			DocumentType: documentType,
			URL:          url,
			Size:         fileHeader.Size,
			MimeType:     mimeType,
			UploadedBy:   user.ID,
		}
		if err := repo.Create(scope, doc); err != nil {
			// Roll the blob back so storage does not accumulate orphans.
			_ = store.Delete(key)
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "document.upload", "document", &doc.ID, map[string]interface{}{
			"entity_type":   entityType,
			"entity_id":     entityID,
			"document_type": documentType,
		})
		utils.CreatedResponse(c, "Document uploaded successfully", doc)
	}
}

func handleListDocuments(repo *repository.DocumentRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionRead) {
			return
		}

		entityType := c.Query("entity_type")
		entityID, err := uuid.Parse(c.Query("entity_id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid entity_id")
			return
		}

		owner := models.DocumentOwner{Type: models.DocumentEntityType(entityType), ID: entityID}
		docs, err := repo.ListForOwner(scope, owner)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Documents retrieved successfully", docs)
	}
}

// handleDownloadDocument returns a time-limited presigned URL.
func handleDownloadDocument(repo *repository.DocumentRepository, resolver *authz.Resolver, store *utils.DocumentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionRead) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		doc, err := repo.Get(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}

		key := storageKey(doc.URL)
		url, err := store.PresignDownload(key, 15*time.Minute)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate download link")
			return
		}
		utils.OKResponse(c, "Download link generated", gin.H{
			"url":        url,
			"expires_in": int((15 * time.Minute).Seconds()),
		})
	}
}

func handleDeleteDocument(repo *repository.DocumentRepository, resolver *authz.Resolver, store *utils.DocumentStore, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionDelete) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		doc, err := repo.Get(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		if err := repo.Delete(scope, id); err != nil {
			writeRepoError(c, err)
			return
		}
		_ = store.Delete(storageKey(doc.URL))
		audit.Record(user.ID, "document.delete", "document", &id, nil)
		utils.OKResponse(c, "Document deleted successfully", nil)
	}
}

func handleRequestSignature(repo *repository.DocumentRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		doc, err := repo.RequestSignature(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "document.request_signature", "document", &id, nil)
		producer.Publish(NotificationEvent{
			UserID: doc.UploadedBy,
			Type:   "signature_requested",
			Title:  "Lease agreement awaiting signature",
			Body:   "A lease agreement has been sent for signature.",
		})
		utils.OKResponse(c, "Signature requested", doc)
	}
}

func handleSignDocument(repo *repository.DocumentRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req SignDocumentRequest
		_ = c.ShouldBindJSON(&req)

		doc, err := repo.Sign(scope, id, user.ID, req.Method)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "document.sign", "document", &id, map[string]interface{}{
			"method": doc.SignatureMethod,
		})
		producer.Publish(NotificationEvent{
			UserID: doc.UploadedBy,
			Type:   "document_signed",
			Title:  "Lease agreement signed",
			Body:   "The lease agreement has been signed.",
		})
		utils.OKResponse(c, "Document signed", doc)
	}
}

func handleRejectSignature(repo *repository.DocumentRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResDocument, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req RejectSignatureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "A rejection reason is required")
			return
		}

		doc, err := repo.Reject(scope, id, req.Reason)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "document.reject_signature", "document", &id, map[string]interface{}{
			"reason": req.Reason,
		})
		producer.Publish(NotificationEvent{
			UserID: doc.UploadedBy,
			Type:   "signature_rejected",
			Title:  "Lease agreement rejected",
			Body:   "The signature request was declined: " + req.Reason,
		})
		utils.OKResponse(c, "Signature rejected", doc)
	}
}

// storageKey strips the s3://bucket/ prefix from a stored document URL.
func storageKey(url string) string {
	trimmed := strings.TrimPrefix(url, "s3://")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
