package main

import (
	"log"
	"time"

	"premium-api/internal/api"
	"premium-api/internal/config"
	"premium-api/internal/database"
	"premium-api/internal/services"
	"premium-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Start the projection integrity sweep
	if interval := config.AppConfig.SweepIntervalMinutes; interval > 0 {
		sweeper := services.NewSweeper(services.NewProjectionService(), time.Duration(interval)*time.Minute)
		go sweeper.Start()
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	api.SetupRoutes(r)

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
