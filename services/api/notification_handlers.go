package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/renta-rw/renta-backend/shared/middleware"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

func handleListNotifications(repo *repository.NotificationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserInfo(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}

		unreadOnly := c.Query("unread") == "true"
		notifications, pagination, err := repo.List(user.ID, unreadOnly, intQuery(c, "page", 1), intQuery(c, "limit", 20))
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Notifications retrieved successfully", listPayload("notifications", notifications, pagination))
	}
}

func handleUnreadCount(repo *repository.NotificationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserInfo(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}

		count, err := repo.UnreadCount(user.ID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Unread count retrieved", gin.H{"unread": count})
	}
}

func handleMarkNotificationRead(repo *repository.NotificationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserInfo(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid id parameter")
			return
		}

		notification, err := repo.MarkRead(user.ID, id)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "Notification marked as read", notification)
	}
}

func handleMarkAllNotificationsRead(repo *repository.NotificationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserInfo(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}

		updated, err := repo.MarkAllRead(user.ID)
		if err != nil {
			writeRepoError(c, err)
			return
		}
		utils.OKResponse(c, "All notifications marked as read", gin.H{"updated": updated})
	}
}
