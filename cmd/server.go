package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/resumelens/internal/config"
	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load("")
	if err != nil {
		logx.Fatalf("Failed to load config: %v", err)
	}
	logx.Info("Starting ResumeLens API Server...")

	// 2. Initialize Dependency Container
	ctx := context.Background()
	container, err := NewContainer(ctx, cfg)
	if err != nil {
		logx.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()

	// 3. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               "ResumeLens API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             resume.MaxUploadBytes + 1<<20,
	})

	// 4. Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// 5. Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok"}
		if db := container.Infra.DB; db != nil {
			status["db"] = db.PingContext(c.Context()) == nil
		}
		if rdb := container.Infra.Redis; rdb != nil {
			status["redis"] = rdb.Ping(c.Context()).Err() == nil
		}
		return c.JSON(status)
	})

	// 6. Register Routes
	// /api/v1/resumes/*
	container.ResumeHandlers.RegisterRoutes(app)

	// 7. Start Server with Graceful Shutdown
	port := cfg.Server.Port

	go func() {
		logx.Infof("Server listening on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	logx.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited")
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
			"code":  e.Code,
		})
	}

	if e, ok := errx.As(err); ok {
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
