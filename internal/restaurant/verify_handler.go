package restaurant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/models"
	"pos-backend/internal/policy"
	"pos-backend/internal/web"
)

// Directory is what employee verification reads. Lookups return (nil, nil)
// on no match.
type Directory interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindRestaurant(ctx context.Context, id uint) (*models.Restaurant, error)
	FindEmployeeByEmail(ctx context.Context, restaurantID uint, email string) (*models.Employee, error)
}

type VerifyEmployeeRequest struct {
	Email        string `json:"email"`
	RestaurantID any    `json:"restaurant_id"`
}

func invalid(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"is_valid": false, "error": msg})
}

// VerifyEmployeeEmailHandler tells a POS terminal whether an email may log
// in at a restaurant. Superuser emails are valid everywhere. The status for
// an unknown restaurant is configurable.
func VerifyEmployeeEmailHandler(env *web.Env, dir Directory) fiber.Handler {
	invalidRestaurant := env.Config.VerifyInvalidRestaurantStatus
	return func(c *fiber.Ctx) error {
		if err := env.Guard.Check(c, policy.OpRead, policy.EntityEmployeeVerification); err != nil {
			return err
		}

		var body VerifyEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return invalid(c, fiber.StatusBadRequest, "Email and restaurant ID are required")
		}
		email := strings.TrimSpace(body.Email)
		rawID := ""
		if body.RestaurantID != nil {
			rawID = strings.TrimSpace(fmt.Sprint(body.RestaurantID))
		}
		if email == "" || rawID == "" {
			return invalid(c, fiber.StatusBadRequest, "Email and restaurant ID are required")
		}

		// user emails are stored lowercased, employee emails as entered
		user, err := dir.FindUserByEmail(c.UserContext(), strings.ToLower(email))
		if err != nil {
			return err
		}
		if user != nil && user.IsSuperuser {
			return c.JSON(fiber.Map{"is_valid": true, "role": "Superuser"})
		}

		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || id == 0 {
			return invalid(c, invalidRestaurant, "Invalid restaurant")
		}
		r, err := dir.FindRestaurant(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		if r == nil {
			return invalid(c, invalidRestaurant, "Invalid restaurant")
		}

		emp, err := dir.FindEmployeeByEmail(c.UserContext(), r.ID, email)
		if err != nil {
			return err
		}
		if emp == nil {
			return invalid(c, fiber.StatusForbidden, "Not an employee of this restaurant")
		}
		return c.JSON(fiber.Map{
			"is_valid":        true,
			"restaurant_id":   r.ID,
			"restaurant_name": r.Name,
			"role":            emp.Role,
		})
	}
}
