package main

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/auth"
	"pos-backend/internal/config"
	"pos-backend/internal/database"
	"pos-backend/internal/logger"
	"pos-backend/internal/media"
	"pos-backend/internal/report"
	"pos-backend/internal/store"
	"pos-backend/internal/validation"
	"pos-backend/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, "error", "text").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	db, err := database.Open(cfg, logger.Component(log, "database"))
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	st := store.New(db)
	files, err := media.New(cfg.MediaPath, cfg.MediaURL)
	if err != nil {
		log.Error("media storage unavailable", "path", cfg.MediaPath, "error", err)
		os.Exit(1)
	}

	env := &web.Env{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Guard:     access.NewGuard(st),
		Validator: validation.New(st),
		Media:     files,
	}
	tokens := auth.NewTokens(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.Handler(logger.Component(log, "http")),
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.Middleware(logger.Component(log, "http"), cfg.SlowRequestThreshold))

	// CORS_ALLOWED_ORIGINS is a comma separated list
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Use(auth.Middleware(tokens))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := st.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Static(cfg.MediaURL, files.Root())

	routes(app.Group("/api"), env, tokens, report.NewService(st))

	log.Info("server listening", "port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
