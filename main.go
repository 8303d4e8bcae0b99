package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"storefront-chat-service/internal/chat"
	"storefront-chat-service/internal/config"
	"storefront-chat-service/internal/db"
	"storefront-chat-service/internal/handlers"
	"storefront-chat-service/internal/moderation"
	"storefront-chat-service/internal/observability"
	"storefront-chat-service/internal/presence"
	"storefront-chat-service/internal/rabbitmq"
	"storefront-chat-service/internal/registry"
	"storefront-chat-service/internal/repositories"
	"storefront-chat-service/internal/storage"
	"storefront-chat-service/internal/telemetry"
	"storefront-chat-service/internal/ws"
)

const serviceName = "storefront-chat-service"

func main() {
	cfg := config.Load()

	shutdownTracing, err := observability.SetupTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	audit := telemetry.NewAuditEmitter(publisher, "audit.chat", serviceName, cfg.Environment)

	if eventsPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
		defer eventsPublisher.Close()
		observability.SetPublisher(eventsPublisher)
	}

	objectStore, err := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("failed to set up object store: %v", err)
	}

	messageRepo := repositories.NewMessageRepo(database)
	moderator := moderation.New(moderation.DefaultConfig())
	tracker := presence.NewTracker()
	reaper := presence.NewReaper(cfg.PresenceGraceWindow)
	defer reaper.Stop()
	sessions := registry.NewRegistry()
	hub := ws.NewHub()

	controller := chat.NewController(hub, tracker, reaper, sessions, moderator, messageRepo,
		chat.WithAuditEmitter(audit))

	chatWS := handlers.NewChatSocketHandler(controller)
	uploadHandler := handlers.NewUploadHandler(objectStore, moderator)
	historyHandler := handlers.NewHistoryHandler(messageRepo)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/uploads", uploadHandler.Upload)
	router.GET("/rooms/:room_id/messages", historyHandler.GetRoomMessages)
	router.Static("/files", cfg.UploadDir)
	router.GET("/ws", chatWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
