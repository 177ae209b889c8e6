package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/renta-rw/renta-backend/shared/authz"
	"github.com/renta-rw/renta-backend/shared/commission"
	"github.com/renta-rw/renta-backend/shared/config"
	"github.com/renta-rw/renta-backend/shared/middleware"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/repository"
	"github.com/renta-rw/renta-backend/shared/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitRedis(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, token revocation and scope caching disabled")
	}
	defer utils.CloseRedis()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateAll(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	store, err := utils.NewDocumentStore(cfg.S3.Region, cfg.S3.Bucket)
	if err != nil {
		log.Fatal("Failed to initialize document store:", err)
	}

	producer := NewNotificationProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
	defer producer.Close()

	tm := utils.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	resolver := authz.NewResolver(db)
	engine := commission.NewEngine(db)

	properties := repository.NewPropertyRepository(db)
	managers := repository.NewManagerRepository(db)
	tenants := repository.NewTenantRepository(db)
	payments := repository.NewPaymentRepository(db)
	maintenance := repository.NewMaintenanceRepository(db)
	documents := repository.NewDocumentRepository(db)
	agents := repository.NewAgentRepository(db)
	notifications := repository.NewNotificationRepository(db)
	audit := repository.NewAuditRepository(db)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "API service is healthy", nil)
	})

	// Auth endpoints are rate limited to slow credential stuffing.
	auth := router.Group("/auth", middleware.RateLimit("10-M"))
	{
		auth.POST("/signup", handleSignup(db, tm))
		auth.POST("/login", handleLogin(db, tm))
		auth.POST("/logout", middleware.RequireAuth(tm), handleLogout(tm))
		auth.GET("/me", middleware.RequireAuth(tm), handleGetProfile(db))
	}

	// Public agent application intake.
	router.POST("/agent-applications", handleApplyAsAgent(agents))

	api := router.Group("/", middleware.RequireAuth(tm))
	{
		props := api.Group("/properties")
		{
			props.GET("", handleListProperties(properties, resolver))
			props.POST("", handleCreateProperty(properties, resolver, audit, engine))
			props.GET("/:id", handleGetProperty(properties, resolver))
			props.PUT("/:id", handleUpdateProperty(properties, resolver, audit))
			props.DELETE("/:id", handleDeleteProperty(properties, resolver, audit))

			props.GET("/:id/units", handleListUnits(properties, resolver))
			props.POST("/:id/units", handleCreateUnit(properties, resolver, audit))

			props.GET("/:id/managers", handleListManagers(managers, resolver))
			props.POST("/:id/managers", handleInviteManager(managers, resolver, audit, producer))
		}

		units := api.Group("/units")
		{
			units.PUT("/:unit_id", handleUpdateUnit(properties, resolver, audit))
			units.DELETE("/:unit_id", handleDeleteUnit(properties, resolver, audit))
		}

		assignments := api.Group("/manager-assignments")
		{
			assignments.GET("", handleListInvitations(managers, resolver))
			assignments.POST("/:id/accept", handleAcceptInvitation(managers, resolver, audit))
			assignments.PUT("/:assignment_id/permissions", handleUpdateManagerPermissions(managers, resolver, audit))
			assignments.DELETE("/:assignment_id", handleRevokeManager(managers, resolver, audit))
		}

		tenantRoutes := api.Group("/tenants")
		{
			tenantRoutes.GET("", handleListTenants(tenants, resolver))
			tenantRoutes.POST("", handleCreateTenant(tenants, resolver, audit, engine))
			tenantRoutes.GET("/:id", handleGetTenant(tenants, resolver))
			tenantRoutes.PUT("/:id", handleUpdateTenant(tenants, resolver, audit))
			tenantRoutes.POST("/:id/assign-unit", handleAssignUnit(tenants, resolver, audit))
			tenantRoutes.POST("/:id/vacate", handleVacateTenant(tenants, resolver, audit))
			tenantRoutes.POST("/:id/link-account", handleLinkTenantAccount(tenants, resolver, audit))
		}

		paymentRoutes := api.Group("/payments")
		{
			paymentRoutes.GET("", handleListPayments(payments, resolver))
			paymentRoutes.POST("", handleCreatePayment(db, payments, resolver, audit, engine, producer))
			paymentRoutes.GET("/:id", handleGetPayment(payments, resolver))
		}

		tickets := api.Group("/maintenance-tickets")
		{
			tickets.GET("", handleListTickets(maintenance, resolver))
			tickets.POST("", handleCreateTicket(maintenance, resolver, audit))
			tickets.GET("/:id", handleGetTicket(maintenance, resolver))
			tickets.PUT("/:id/status", handleUpdateTicketStatus(maintenance, resolver, audit, producer))
			tickets.PUT("/:id/assign", handleAssignTicket(maintenance, resolver, audit, producer))
		}

		docs := api.Group("/documents")
		{
			docs.GET("", handleListDocuments(documents, resolver))
			docs.POST("", handleUploadDocument(documents, resolver, store, audit))
			docs.GET("/:id/download", handleDownloadDocument(documents, resolver, store))
			docs.DELETE("/:id", handleDeleteDocument(documents, resolver, store, audit))
			docs.POST("/:id/request-signature", handleRequestSignature(documents, resolver, audit, producer))
			docs.POST("/:id/sign", handleSignDocument(documents, resolver, audit, producer))
			docs.POST("/:id/reject-signature", handleRejectSignature(documents, resolver, audit, producer))
		}

		agentRoutes := api.Group("/agents")
		{
			agentRoutes.GET("/transactions", handleListAgentTransactions(agents, resolver))
			agentRoutes.GET("/commissions", handleListCommissions(agents, resolver))
		}

		admin := api.Group("/admin", middleware.RequireRole(models.RoleSuperAdmin))
		{
			admin.GET("/agent-applications", handleListApplications(agents))
			admin.POST("/agent-applications/:id/approve", handleApproveApplication(agents, resolver, audit, producer))
			admin.POST("/agent-applications/:id/reject", handleRejectApplication(agents, resolver, audit))

			admin.GET("/commission-rules", handleListCommissionRules(agents))
			admin.POST("/commission-rules", handleCreateCommissionRule(agents, resolver, audit))
			admin.PUT("/commission-rules/:id", handleUpdateCommissionRule(agents, resolver, audit))

			admin.POST("/commissions/:id/pay", handlePayCommission(agents, resolver, audit, producer))
			admin.POST("/commissions/:id/cancel", handleCancelCommission(agents, resolver, audit))

			admin.GET("/audit-logs", handleListAuditLogs(audit))
		}

		notificationRoutes := api.Group("/notifications")
		{
			notificationRoutes.GET("", handleListNotifications(notifications))
			notificationRoutes.GET("/unread-count", handleUnreadCount(notifications))
			notificationRoutes.PUT("/:id/read", handleMarkNotificationRead(notifications))
			notificationRoutes.PUT("/read-all", handleMarkAllNotificationsRead(notifications))
		}
	}

	port := os.Getenv("API_SERVICE_PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("API service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start API service:", err)
	}
}
