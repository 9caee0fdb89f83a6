// File: meetpoint/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetpoint/config"
	"meetpoint/cron"
	"meetpoint/database"
	interactionRepo "meetpoint/database/repository/interaction"
	postRepo "meetpoint/database/repository/post"
	userRepoPkg "meetpoint/database/repository/user"
	"meetpoint/handlers"
	"meetpoint/routes"
	"meetpoint/services/interaction"
	"meetpoint/services/notification"
	"meetpoint/services/tasks"
	"meetpoint/services/venue"
	"meetpoint/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	postRepository := postRepo.NewMongoPostRepo()
	requestRepo := interactionRepo.NewMongoInteractionRepo()

	// services.
	placesClient := venue.NewGooglePlacesClient(utils.GetCacheClient())
	venueSelector := &venue.DefaultSelector{
		Directory: placesClient,
	}

	cron.InitReminderWorker(notification.LogNotificationService{})

	interactionService := &interaction.DefaultInteractionService{
		Requests:     requestRepo,
		Users:        userRepo,
		Posts:        postRepository,
		Venues:       venueSelector,
		Reminders:    tasks.NewAsynqReminderScheduler(),
		CooldownDays: config.AppConfig.RejectionCooldownDays,
	}

	interactionHandler := handlers.NewInteractionHandler(interactionService, logger)
	handlerBundle := handlers.NewHandlerBundle(interactionHandler)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background health probing for the /health endpoint.
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Info("main: server stopped gracefully")
}
