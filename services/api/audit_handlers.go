package main

import (
	"github.com/gin-gonic/gin"

	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

// handleListAuditLogs is a super_admin surface, gated at the route level.
func handleListAuditLogs(repo *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := uuidQuery(c, "actor_id")
		if !ok {
			return
		}

		filter := repository.AuditFilter{
			ActorID:    actorID,
			Action:     c.Query("action"),
			EntityType: c.Query("entity_type"),
			Page:       intQuery(c, "page", 1),
			Limit:      intQuery(c, "limit", 50),
		}
		entries, pagination, err := repo.List(filter)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Audit log retrieved successfully", listPayload("entries", entries, pagination))
	}
}
