package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/handlers"
	"github.com/wathiq/b2b-platform/internal/middleware"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services"
	"github.com/wathiq/b2b-platform/internal/services/sadiq"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "ok",
			"db_connected": database.GetDB() != nil,
		})
	})

	// Serve signed agreement PDFs
	wd, _ := os.Getwd()
	router.Static("/uploads", filepath.Join(wd, cfg.UploadDir))

	// Initialize services
	authService := services.NewAuthService(cfg)
	emailService := services.NewEmailService(cfg)
	storageService := services.NewStorageService(cfg)
	documentService := services.NewDocumentService(cfg, storageService)
	profileService := services.NewProfileService(cfg)
	paymentService := services.NewPaymentService(cfg)
	notificationService := services.NewNotificationService(cfg, emailService)
	sadiqService := sadiq.NewSadiqService(cfg)
	statusCache := sadiq.NewStatusCache(cfg)
	ndaService := services.NewNdaService(cfg, profileService, sadiqService, statusCache, documentService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, emailService, profileService)
	ndaHandler := handlers.NewNdaHandler(ndaService, profileService)
	projectHandler := handlers.NewProjectHandler(ndaService)
	offerHandler := handlers.NewOfferHandler(notificationService, emailService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(ndaService)

	// API routes
	api := router.Group("/api")

	// Database readiness gate
	api.Use(func(c *gin.Context) {
		if database.GetDB() == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Service initializing, please try again shortly",
			})
			return
		}
		c.Next()
	})

	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware(authService))
			{
				authProtected.GET("/me", authHandler.GetCurrentUser)
				authProtected.PUT("/profile", authHandler.UpdateProfile)
			}
		}

		// Category routes (public)
		api.GET("/categories", projectHandler.GetCategories)

		// Project routes
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", middleware.OptionalAuthMiddleware(authService), projectHandler.GetProject)

			projectsProtected := projects.Group("")
			projectsProtected.Use(middleware.AuthMiddleware(authService))
			{
				projectsProtected.POST("", middleware.RequireEntrepreneur(), projectHandler.CreateProject)
				projectsProtected.PUT("/:id", middleware.RequireEntrepreneur(), projectHandler.UpdateProject)
				projectsProtected.POST("/:id/submit", middleware.RequireEntrepreneur(), projectHandler.SubmitProject)
				projectsProtected.GET("/:id/scope", middleware.RequireSignedNDA(), projectHandler.GetProjectScope)
				projectsProtected.GET("/:id/offers", middleware.CheckDepositStatus(paymentService), offerHandler.ListProjectOffers)
				projectsProtected.GET("/:id/agreements", ndaHandler.ListProjectAgreements)
				projectsProtected.GET("/:id/agreement", middleware.RequireCompany(), ndaHandler.GetMyAgreement)
			}
		}

		// Entrepreneur routes
		entrepreneur := api.Group("/entrepreneur")
		entrepreneur.Use(middleware.AuthMiddleware(authService), middleware.RequireEntrepreneur())
		{
			entrepreneur.GET("/projects", projectHandler.GetMyProjects)
		}

		// NDA routes
		nda := api.Group("/nda")
		nda.Use(middleware.AuthMiddleware(authService))
		{
			// Company-side lifecycle
			nda.GET("/contact-check", middleware.RequireCompany(), ndaHandler.ValidateContact)
			nda.PUT("/contact", middleware.RequireCompany(), ndaHandler.UpdateContact)
			nda.POST("/initiate", middleware.RequireCompany(), middleware.RequireVerifiedCompany(), ndaHandler.InitiateAgreement)

			// Entrepreneur-side completion
			nda.POST("/:id/complete", middleware.RequireEntrepreneur(), ndaHandler.CompleteEntrepreneurInfo)

			// Shared
			nda.GET("/:id", ndaHandler.GetAgreement)
			nda.POST("/:id/refresh", ndaHandler.RefreshStatus)
			nda.POST("/:id/cancel", ndaHandler.Cancel)
		}

		// Offer routes
		offers := api.Group("/offers")
		offers.Use(middleware.AuthMiddleware(authService))
		{
			offers.POST("", middleware.RequireCompany(), offerHandler.CreateOffer)
			offers.GET("", middleware.RequireCompany(), offerHandler.GetMyOffers)
			offers.POST("/:id/respond", middleware.RequireEntrepreneur(), offerHandler.RespondToOffer)
			offers.DELETE("/:id", middleware.RequireCompany(), offerHandler.WithdrawOffer)
		}

		// Payment routes (entrepreneur deposit)
		payments := api.Group("/payments")
		payments.Use(middleware.AuthMiddleware(authService), middleware.RequireEntrepreneur())
		{
			payments.POST("/deposit", paymentHandler.CreateDepositIntent)
			payments.POST("/deposit/confirm", paymentHandler.ConfirmDeposit)
			payments.GET("/history", paymentHandler.GetDepositHistory)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(authService))
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkNotificationRead)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(authService), middleware.RequireAdmin())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:id/verify", adminHandler.VerifyCompany)
			admin.GET("/projects/pending", adminHandler.ListPendingProjects)
			admin.POST("/projects/:id/review", adminHandler.ReviewProject)
			admin.GET("/agreements", adminHandler.ListAgreements)
			admin.POST("/agreements/:id/cancel", adminHandler.CancelAgreement)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)
		}
	}

	return router
}

// SeedAdminUser creates a default admin user if none exists
func SeedAdminUser(cfg *config.Config, authService *services.AuthService) error {
	_, err := authService.GetUserByEmail(cfg.AdminEmail)
	if err == nil {
		return nil
	}

	admin, err := authService.Register(
		cfg.AdminEmail,
		"admin123", // default password, change after first login
		"Platform Admin",
		models.RoleAdmin,
	)
	if err != nil {
		return err
	}

	admin.EmailVerified = true
	admin.Verified = true
	return authService.UpdateUser(admin)
}
