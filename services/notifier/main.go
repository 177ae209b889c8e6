package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/renta-rw/renta-backend/shared/config"
	"github.com/renta-rw/renta-backend/shared/models"
	"github.com/renta-rw/renta-backend/shared/utils"
)

func main() {
	cfg := config.Load()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	gateway := NewSMSGateway(cfg.SMS.GatewayURL)
	consumer := NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Topic, "renta-notifier", db, gateway)
	retryLoop := NewRetryLoop(db, gateway)

	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx)
	go retryLoop.Run(ctx)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Notifier service is healthy", nil)
	})

	// Dispatch statistics, including the gateway breaker state.
	router.GET("/stats", func(c *gin.Context) {
		var stats struct {
			Pending int64 `json:"pending"`
			Sent    int64 `json:"sent"`
			Failed  int64 `json:"failed"`
		}
		db.Model(&models.ReminderLog{}).Where("status = ?", models.ReminderPending).Count(&stats.Pending)
		db.Model(&models.ReminderLog{}).Where("status = ?", models.ReminderSent).Count(&stats.Sent)
		db.Model(&models.ReminderLog{}).Where("status = ?", models.ReminderFailed).Count(&stats.Failed)

		utils.OKResponse(c, "Dispatch statistics", gin.H{
			"reminders":     stats,
			"gateway_state": gateway.State(),
		})
	})

	port := os.Getenv("NOTIFIER_SERVICE_PORT")
	if port == "" {
		port = "8081"
	}

	srvErr := make(chan error, 1)
	go func() {
		logrus.Infof("Notifier service starting on port %s", port)
		srvErr <- router.Run(":" + port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		log.Fatal("Failed to start notifier service:", err)
	case <-quit:
		logrus.Info("Shutting down notifier service")
		cancel()
		if err := consumer.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close consumer cleanly")
		}
		time.Sleep(time.Second)
	}
}
