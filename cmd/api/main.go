package main

import (
	"os"
	"strconv"

	"github.com/followuphq/followup-golang/internal/database"
	"github.com/followuphq/followup-golang/internal/handlers"
	"github.com/followuphq/followup-golang/internal/middleware"
	"github.com/followuphq/followup-golang/internal/routes"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	envMissing := godotenv.Load() != nil

	// 1. --- Logger ---
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envMissing {
		logger.Warn("no .env file found, relying on system environment variables")
	}

	// 2. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 3. --- Application Setup ---
	app := &handlers.Handlers{
		DB:     db,
		Logger: logger,
	}

	// Throttle the public auth endpoints; AUTH_RATE_LIMIT_RPM=0 disables.
	rpm := 30
	if v := os.Getenv("AUTH_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			rpm = parsed
		}
	}
	authLimiter := middleware.NewRateLimiter(rpm)

	// --- Router Setup ---
	router := routes.SetupRouter(app, logger, authLimiter)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting follow-up API server", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// newLogger builds a production logger unless APP_ENV says development.
func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
