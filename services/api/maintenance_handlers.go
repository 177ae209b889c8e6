package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

type CreateTicketRequest struct {
	UnitID      uuid.UUID `json:"unit_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignTicketRequest struct {
	AssignedTo uuid.UUID `json:"assigned_to" binding:"required"`
}

func handleListTickets(repo *repository.MaintenanceRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResMaintenance, authz.ActionRead) {
			return
		}
		propertyID, ok := uuidQuery(c, "property_id")
		if !ok {
			return
		}

		filter := repository.MaintenanceFilter{
			PropertyID: propertyID,
			Status:     c.Query("status"),
			Priority:   c.Query("priority"),
			Page:       intQuery(c, "page", 1),
			Limit:      intQuery(c, "limit", 20),
		}
		tickets, pagination, err := repo.List(scope, filter)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Tickets retrieved successfully", listPayload("tickets", tickets, pagination))
	}
}

func handleGetTicket(repo *repository.MaintenanceRepository, resolver *authz.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResMaintenance, authz.ActionRead) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		ticket, err := repo.Get(scope, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Ticket retrieved successfully", ticket)
	}
}

func handleCreateTicket(repo *repository.MaintenanceRepository, resolver *authz.Resolver, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResMaintenance, authz.ActionCreate) {
			return
		}

		var req CreateTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		ticket := &models.MaintenanceTicket{
			UnitID:      req.UnitID,
			Title:       req.Title,
			Description: req.Description,
			Priority:    models.TicketPriority(req.Priority),
		}
		if err := repo.Create(scope, ticket); err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "maintenance.create", "maintenance_ticket", &ticket.ID, map[string]interface{}{
			"unit_id": req.UnitID,
			"title":   req.Title,
		})
		utils.CreatedResponse(c, "Ticket created successfully", ticket)
	}
}

func handleUpdateTicketStatus(repo *repository.MaintenanceRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResMaintenance, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req UpdateTicketStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		ticket, err := repo.UpdateStatus(scope, id, models.TicketStatus(req.Status))
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "maintenance.status", "maintenance_ticket", &id, map[string]interface{}{
			"status": req.Status,
		})
		if ticket.AssignedTo != nil && *ticket.AssignedTo != user.ID {
			producer.Publish(NotificationEvent{
				UserID: *ticket.AssignedTo,
				Type:   "ticket_status",
				Title:  "Maintenance ticket updated",
				Body:   "Ticket \"" + ticket.Title + "\" is now " + string(ticket.Status) + ".",
			})
		}
		utils.OKResponse(c, "Ticket status updated", ticket)
	}
}

func handleAssignTicket(repo *repository.MaintenanceRepository, resolver *authz.Resolver, audit *repository.AuditRepository, producer *NotificationProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, scope, ok := requireScope(c, resolver)
		if !ok {
			return
		}
		if !requirePolicy(c, user, authz.ResMaintenance, authz.ActionUpdate) {
			return
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}

		var req AssignTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		ticket, err := repo.Assign(scope, id, req.AssignedTo)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		audit.Record(user.ID, "maintenance.assign", "maintenance_ticket", &id, map[string]interface{}{
			"assigned_to": req.AssignedTo,
		})
		producer.Publish(NotificationEvent{
			UserID: req.AssignedTo,
			Type:   "ticket_assigned",
			Title:  "New maintenance assignment",
			Body:   "You have been assigned to ticket \"" + ticket.Title + "\".",
		})
		utils.OKResponse(c, "Ticket assigned successfully", ticket)
	}
}
