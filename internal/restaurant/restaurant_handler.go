package restaurant

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/web"
)

type RestaurantRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
}

func (body *RestaurantRequest) apply(r *models.Restaurant) error {
	if body.Name != nil {
		r.Name = strings.TrimSpace(*body.Name)
	}
	if body.Address != nil {
		r.Address = *body.Address
	}
	if body.PhoneNumber != nil {
		r.PhoneNumber = strings.TrimSpace(*body.PhoneNumber)
	}

	var errs []apperr.FieldError
	if r.Name == "" {
		errs = append(errs, apperr.FieldError{Field: "name", Code: "required", Message: "This field may not be blank."})
	}
	if len(r.PhoneNumber) > 15 {
		errs = append(errs, apperr.FieldError{Field: "phone_number", Code: "max_length", Message: "Ensure this field has no more than 15 characters."})
	}
	if len(errs) > 0 {
		return apperr.Validation(errs...)
	}
	return nil
}

// CreateRestaurantHandler creates a restaurant owned by the caller.
func CreateRestaurantHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityRestaurant); err != nil {
			return err
		}

		var body RestaurantRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		r := models.Restaurant{UserID: access.PrincipalOf(c).UserID}
		if err := body.apply(&r); err != nil {
			return err
		}
		if err := env.Store.Create(c.UserContext(), &r); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func ListRestaurantsHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.RowScope(c, policy.EntityRestaurant)
		if err != nil {
			return err
		}
		list, err := store.All[models.Restaurant](c.UserContext(), env.Store, policy.EntityRestaurant, scope, nil)
		if err != nil {
			return err
		}
		if list == nil {
			list = []models.Restaurant{}
		}
		return c.JSON(list)
	}
}

func loadRestaurant(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Restaurant, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityRestaurant)
	if err != nil {
		return nil, err
	}
	r, err := store.Get[models.Restaurant](c.UserContext(), env.Store, policy.EntityRestaurant, scope, id)
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityRestaurant, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func GetRestaurantHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := loadRestaurant(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

func UpdateRestaurantHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := loadRestaurant(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		var body RestaurantRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := web.Require(c).Check("name", body.Name != nil).Err(); err != nil {
			return err
		}
		if err := body.apply(r); err != nil {
			return err
		}
		if err := env.Store.Save(c.UserContext(), r); err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// DeleteRestaurantHandler removes the restaurant with everything scoped to
// it.
func DeleteRestaurantHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := loadRestaurant(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), r); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
