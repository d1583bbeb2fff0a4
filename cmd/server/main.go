package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/jobs"
	"github.com/wathiq/b2b-platform/internal/routes"
	"github.com/wathiq/b2b-platform/internal/services"
)

func main() {
	log.Println("Starting application...")

	// .env is optional; real deployments configure through the environment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("Config loaded. Database Type: %s", cfg.DatabaseType)

	// Initialize database
	log.Println("Initializing database connection...")
	if err := database.Initialize(cfg); err != nil {
		log.Printf("CRITICAL: Failed to initialize database: %v", err)
		log.Println("Server will start but will likely fail requests depending on DB.")
	} else {
		log.Println("Database initialized successfully.")
	}

	// Create upload directory for rendered agreement documents
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Printf("Warning: failed to create upload directory: %v", err)
	}

	// Seed admin user
	authService := services.NewAuthService(cfg)
	if err := routes.SeedAdminUser(cfg, authService); err != nil {
		log.Printf("Warning: failed to seed admin user: %v", err)
	} else {
		log.Println("Admin user ready (email: " + cfg.AdminEmail + ")")
	}

	// Demo projects (opt-in via SEED_DEMO_DATA)
	if admin, err := authService.GetUserByEmail(cfg.AdminEmail); err == nil {
		if err := database.SeedDemoProjects(admin.ID); err != nil {
			log.Printf("Warning: failed to seed demo projects: %v", err)
		}
	}

	// Background expiry sweeps
	scheduler := jobs.StartScheduler()
	defer scheduler.Stop()

	// Setup router
	log.Println("Setting up router...")
	router := routes.SetupRouter(cfg)

	// Start server
	addr := cfg.ServerHost + ":" + cfg.ServerPort
	log.Printf("Server starting on %s", addr)
	log.Printf("API: http://localhost:%s/api", cfg.ServerPort)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
