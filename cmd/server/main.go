package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/config"
	"github.com/dronebook/marketplace-backend/internal/database"
	"github.com/dronebook/marketplace-backend/internal/handlers"
	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/services"
	"github.com/dronebook/marketplace-backend/pkg/jwt"
	"github.com/dronebook/marketplace-backend/pkg/mailer"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting DroneBook Marketplace Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Run schema migrations
	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations applied")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	profileRepo := database.NewPilotProfileRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db.DB)
	conversationRepo := database.NewConversationRepository(db.DB)
	messageRepo := database.NewMessageRepository(db.DB)
	notificationRepo := database.NewNotificationRepository(db)
	reviewRepo := database.NewReviewRepository(db)

	// Initialize services
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	logMailer := mailer.NewLogMailer(logger)
	stripeService := services.NewStripeService(&cfg.Stripe, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	bookingService := services.NewBookingService(
		bookingRepo, profileRepo, userRepo, notificationService, logMailer, logger)
	paymentService := services.NewPaymentService(
		paymentRepo, bookingRepo, profileRepo, userRepo,
		stripeService, notificationService, logMailer, cfg.Stripe.Currency, logger)
	conversationService := services.NewConversationService(
		conversationRepo, messageRepo, profileRepo, userRepo, notificationService, logger)
	reviewService := services.NewReviewService(
		reviewRepo, profileRepo, userRepo, notificationService, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, profileRepo, jwtService, logger)
	pilotHandler := handlers.NewPilotHandler(profileRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.Stripe.PublishableKey, cfg.Stripe.Currency)
	chatHandler := handlers.NewChatHandler(conversationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			protected.GET("/pilots", pilotHandler.List)
			protected.GET("/pilots/:id", pilotHandler.Get)
			protected.POST("/pilots/:id/reviews", reviewHandler.Create)
			protected.GET("/pilots/:id/reviews", reviewHandler.List)
			protected.PUT("/profile", pilotHandler.UpdateProfile)
			protected.POST("/profile/services", pilotHandler.CreateServicePackage)
			protected.POST("/profile/availability", pilotHandler.CreateAvailability)
			protected.DELETE("/availability/:id", pilotHandler.DeleteAvailability)

			protected.POST("/bookings", bookingHandler.Create)
			protected.GET("/bookings", bookingHandler.List)
			protected.PUT("/bookings/:id/respond", bookingHandler.Respond)

			protected.GET("/payments/config", paymentHandler.Config)
			protected.POST("/payments/create-intent", paymentHandler.CreateIntent)
			protected.POST("/payments/confirm", paymentHandler.Confirm)
			protected.GET("/payments/status/:bookingId", paymentHandler.GetStatus)

			protected.POST("/conversations", chatHandler.Start)
			protected.GET("/conversations", chatHandler.List)
			protected.GET("/conversations/:id/messages", chatHandler.ListMessages)
			protected.POST("/conversations/:id/messages", chatHandler.SendMessage)
			protected.GET("/chat/unread-count", chatHandler.UnreadCount)

			protected.GET("/notifications", notificationHandler.List)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
