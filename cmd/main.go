package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taldaor/internal/authprovider"
	"taldaor/internal/caching"
	"taldaor/internal/config"
	"taldaor/internal/handlers"
	"taldaor/internal/jobs"
	"taldaor/internal/jobs/background"
	"taldaor/internal/middleware"
	"taldaor/internal/repositories"
	"taldaor/internal/services"
	"taldaor/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Infrastructure clients
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	provider := authprovider.NewHTTPAdminClient(cfg.AuthURL, cfg.AuthServiceKey, cfg.AuthTimeout)

	objectStore, err := services.NewObjectStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}
	if err := objectStore.EnsureBucket(context.Background(), cfg.MinioBucket); err != nil {
		log.Printf("WARN: could not ensure bucket %s: %v", cfg.MinioBucket, err)
	}

	// Repositories
	allowlistRepo := repositories.NewAllowlistRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	incidentRepo := repositories.NewIncidentRepo(pool)
	requestRepo := repositories.NewRequestRepo(pool)
	requestLogRepo := repositories.NewRequestLogRepo(pool)

	// Services
	redirects := services.Redirects{BaseURL: cfg.AppBaseURL}
	allowlistSvc := services.NewAllowlistService(allowlistRepo, cacheSvc)
	provisioningSvc := services.NewProvisioningService(allowlistSvc, profileRepo, incidentRepo, provider, redirects)
	recoverySvc := services.NewRecoveryService(allowlistSvc, profileRepo, provider, redirects)
	requestSvc := services.NewRequestService(requestRepo, requestLogRepo)
	attachmentSvc := services.NewAttachmentService(objectStore, cfg.MinioBucket)

	// Handlers
	accountHandlers := handlers.NewAccountHandlers(provisioningSvc, recoverySvc, cacheSvc)
	requestHandlers := handlers.NewRequestHandlers(requestSvc, attachmentSvc)
	profileHandlers := handlers.NewProfileHandlers(profileRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, provider)

	// Auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(middleware.AuthConfig{
		JWKSURL: cfg.AuthJWKSURL,
		Secret:  cfg.AuthJWTSecret,
	})
	if err != nil {
		log.Fatalf("Failed to initialize auth middleware: %v", err)
	}

	// Background reconciliation
	reconciler := jobs.NewReconciler(incidentRepo, profileRepo, provider)
	scheduler, err := background.NewJobScheduler(reconciler)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown: %v", err)
		}
	}()

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health and docs (no auth)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// Account provisioning and recovery (no auth, rate limited per email)
	accounts := v1.Group("/accounts")
	accounts.POST("/request-signup", accountHandlers.RequestSignup)
	accounts.POST("/resend-confirmation", accountHandlers.ResendConfirmation)
	accounts.POST("/request-password-reset", accountHandlers.RequestPasswordReset)
	accounts.POST("/signup-approved", accountHandlers.SignupApproved)

	// Authenticated routes
	protected := v1.Group("")
	protected.Use(authMiddleware)
	protected.Use(middleware.RequireAuth)

	protected.GET("/me", profileHandlers.Me)

	protected.POST("/requests", requestHandlers.Create)
	protected.GET("/requests/mine", requestHandlers.ListMine)
	protected.GET("/requests/:id", requestHandlers.Get)
	protected.POST("/requests/:id/photos", requestHandlers.UploadPhoto)
	protected.GET("/requests/:id/photos", requestHandlers.ListPhotos)

	// Admin-only routes
	admin := v1.Group("")
	admin.Use(authMiddleware)
	admin.Use(middleware.RequireAdmin)

	admin.GET("/requests", requestHandlers.List)
	admin.PUT("/requests/:id/status", requestHandlers.UpdateStatus)
	admin.GET("/requests/:id/logs", requestHandlers.ListLogs)

	log.Printf("Taldaor server starting on port %d", cfg.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
