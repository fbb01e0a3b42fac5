package main

import (
	"time"

	"coursehub/config"
	controllers "coursehub/controllers/course"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/notify"
	courseRoutes "coursehub/routers/courseRoutes"
	"coursehub/services/catalog"
	"coursehub/services/progress"
	"coursehub/storage/assets"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to the database", "error", err)
	}

	store, err := newAssetStore(cfg)
	if err != nil {
		log.Fatal("Failed to configure the asset store", "provider", cfg.AssetProvider, "error", err)
	}
	log.Info("Asset store configured", "provider", cfg.AssetProvider)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.SendGridAPIKey != "" {
		notifier = notify.NewSendGrid(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName)
	}

	handler := controllers.NewHandler(
		catalog.NewService(db, store, log),
		progress.NewService(db, notifier, log),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(log, !cfg.IsProduction()),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	courseRoutes.SetupCourseRoutes(app, handler, cfg.JWTKey)

	log.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}

func newAssetStore(cfg *config.Config) (assets.Store, error) {
	switch cfg.AssetProvider {
	case "minio":
		return assets.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, cfg.AssetHosts)
	case "http":
		return assets.NewHTTPStore(cfg.AssetAPIURL, cfg.AssetAPIKey, time.Duration(cfg.AssetTimeoutSeconds)*time.Second, cfg.AssetHosts), nil
	}
	return assets.Nop{}, nil
}
