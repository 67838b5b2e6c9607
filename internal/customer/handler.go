package customer

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/web"
)

const (
	pageSize    = 5
	maxPageSize = 50
)

type Request struct {
	Restaurant *uint   `json:"restaurant"`
	Name       *string `json:"name"`
	// An empty email clears it.
	Email *string `json:"email"`
}

func (body *Request) apply(cu *models.Customer) {
	if body.Name != nil {
		cu.Name = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil {
		if email := strings.TrimSpace(*body.Email); email != "" {
			cu.Email = &email
		} else {
			cu.Email = nil
		}
	}
}

func CreateHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Request
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityCustomer, web.RestaurantIDs(body.Restaurant)...); err != nil {
			return err
		}
		if err := web.RestaurantRequired(body.Restaurant); err != nil {
			return err
		}
		if err := web.Require(c).Check("name", body.Name != nil).Err(); err != nil {
			return err
		}

		cu := models.Customer{RestaurantID: *body.Restaurant}
		body.apply(&cu)
		if err := env.Validator.Customer(c.UserContext(), &cu); err != nil {
			return err
		}
		if err := env.Store.Create(c.UserContext(), &cu); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cu)
	}
}

func ListHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.ListScope(c, policy.EntityCustomer)
		if err != nil {
			return err
		}
		p, err := pagination.Parse(c, pageSize, maxPageSize)
		if err != nil {
			return err
		}
		list, count, err := store.List[models.Customer](c.UserContext(), env.Store, policy.EntityCustomer, scope, p, "")
		if err != nil {
			return err
		}
		return c.JSON(pagination.New(c, p, count, list))
	}
}

func load(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Customer, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityCustomer)
	if err != nil {
		return nil, err
	}
	cu, err := store.Get[models.Customer](c.UserContext(), env.Store, policy.EntityCustomer, scope, id)
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityCustomer, cu.RestaurantID); err != nil {
		return nil, err
	}
	return cu, nil
}

func GetHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cu, err := load(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(cu)
	}
}

func UpdateHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cu, err := load(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		var body Request
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := web.Immutable(cu.RestaurantID, body.Restaurant); err != nil {
			return err
		}
		if err := web.Require(c).Check("name", body.Name != nil).Err(); err != nil {
			return err
		}
		body.apply(cu)
		if err := env.Validator.Customer(c.UserContext(), cu); err != nil {
			return err
		}
		if err := env.Store.Save(c.UserContext(), cu); err != nil {
			return err
		}
		return c.JSON(cu)
	}
}

func DeleteHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cu, err := load(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), cu); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
