package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-shortlister/internal/bootstrap"
	"alfredoptarigan/resume-shortlister/internal/config"
	"alfredoptarigan/resume-shortlister/internal/handlers"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx := context.Background()

	comps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}
	defer comps.Close()

	limits := handlers.UploadLimits{
		MaxFileSize: cfg.Screening.MaxFileSize,
		MaxFiles:    cfg.Screening.MaxFiles,
	}

	routes := handlers.Handlers{
		Dashboard: handlers.NewDashboardHandler(comps.Screener, comps.Catalog, limits),
		Screening: handlers.NewScreeningHandler(comps.Screener, comps.Catalog, limits),
		History:   handlers.NewHistoryHandler(comps.History, comps.Index),
	}
	log.Println("✅ Handlers initialized")

	// A batch is evaluated synchronously inside the request, so the write
	// timeout has to cover every model call in it.
	writeTimeout := time.Duration(cfg.Screening.MaxFiles)*cfg.LLM.Timeout + 30*time.Second

	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Shortlister",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		BodyLimit:    int(cfg.Screening.MaxFileSize)*cfg.Screening.MaxFiles + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterRoutes(app, routes)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 Dashboard: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
