package apperr

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the fiber ErrorHandler of the API. *Error values keep their
// kind, fiber errors keep their status, anything else becomes a 500 and is
// logged.
func Handler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := As(err); ok {
			if e.Kind == KindInternal {
				log.Error("request failed",
					"method", c.Method(),
					"path", c.Path(),
					"request_id", c.Locals("requestid"),
					"error", e.Err,
				)
			}
			return c.Status(e.Status()).JSON(body(e))
		}

		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error("unexpected error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}

func body(e *Error) fiber.Map {
	m := fiber.Map{
		"error": e.Message,
		"code":  e.Code,
	}
	if len(e.Fields) > 0 {
		messages := make(map[string][]string, len(e.Fields))
		codes := make(map[string][]string, len(e.Fields))
		for _, f := range e.Fields {
			messages[f.Field] = append(messages[f.Field], f.Message)
			codes[f.Field] = append(codes[f.Field], f.Code)
		}
		m["fields"] = messages
		m["codes"] = codes
	}
	return m
}
