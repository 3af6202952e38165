package main

import (
	"coursehub/config"
	controllers "coursehub/controllers/course"
	"coursehub/database"
	"coursehub/middleware"
	courseRoutes "coursehub/routers/courseRoutes"
	"coursehub/services/assessment"
	"coursehub/services/audit"
	"coursehub/services/certificate"
	"coursehub/services/notify"
	"coursehub/services/progress"
	"coursehub/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	if err := utils.InitLogger(config.AppConfig.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Logger.Sync()

	database.ConnectDb()
	db := database.Database.Db

	// Notifications are best effort; each channel is enabled by its config.
	var notifiers notify.Multi
	if config.AppConfig.SendgridAPIKey != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(config.AppConfig.SendgridAPIKey, config.AppConfig.EmailSender))
	}
	if config.AppConfig.ScoreWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(config.AppConfig.ScoreWebhookURL))
	}

	progressService := progress.NewService(db)
	assessmentService := assessment.NewService(db, progressService, notifiers)
	defer assessmentService.Flush()
	certificateService := certificate.NewService(db, notifiers)
	defer certificateService.Flush()
	ctl := controllers.New(
		progressService,
		assessmentService,
		certificateService,
		audit.NewRecorder(db),
	)

	scheduler, err := utils.InitializeProgressSyncScheduler(config.AppConfig.ProgressSyncCron, progressService)
	if err != nil {
		utils.Logger.Fatal("Invalid PROGRESS_SYNC_CRON", "cron", config.AppConfig.ProgressSyncCron, "error", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",                     // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization,X-Request-ID", // Allowed headers
	}))
	app.Use(middleware.RequestID)

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency} ${locals:requestId}\n",
	}))

	courseRoutes.SetupCourseRoutes(app, ctl)
	courseRoutes.SetupAdminCourseRoutes(app, ctl)

	utils.Logger.Info("Server is running", "port", config.AppConfig.Port, "env", config.AppConfig.AppEnv)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		utils.Logger.Fatal("Server stopped", "error", err)
	}
}
