// Package logger builds the process slog.Logger and the request logging
// middleware.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gormlogger "gorm.io/gorm/logger"

	"pos-backend/internal/apperr"
)

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a JSON or text logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// Component returns a child logger tagged with a component name.
func Component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}

// Middleware logs every request once it completed and warns when it took
// longer than slow. It expects the requestid middleware to run first.
func Middleware(log *slog.Logger, slow time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := statusOf(c, err)
		args := []any{
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"ip", c.IP(),
		}
		switch {
		case latency > slow:
			log.Warn("slow request", append(args, "threshold_ms", slow.Milliseconds())...)
		case status >= fiber.StatusInternalServerError:
			log.Error("request completed", args...)
		default:
			log.Info("request completed", args...)
		}
		return err
	}
}

// statusOf is the status the error handler will answer with. It runs
// after the middleware returns, so the response still holds 200 here.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if e, ok := apperr.As(err); ok {
		return e.Status()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

type gormWriter struct {
	log *slog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Gorm routes gorm's own logging (slow queries, errors) into log at warn
// level.
func Gorm(log *slog.Logger, slowQuery time.Duration) gormlogger.Interface {
	return gormlogger.New(gormWriter{log: Component(log, "gorm")}, gormlogger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
