package restaurant

import (
	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/models"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/web"
)

type TableRequest struct {
	Restaurant  *uint   `json:"restaurant"`
	TableNumber *int    `json:"table_number"`
	Capacity    *int    `json:"capacity"`
	Status      *string `json:"status"`
}

func (body *TableRequest) apply(t *models.Table) {
	if body.TableNumber != nil {
		t.TableNumber = web.Count(*body.TableNumber)
	}
	if body.Capacity != nil {
		t.Capacity = web.Count(*body.Capacity)
	}
	if body.Status != nil {
		t.Status = models.TableStatus(*body.Status)
	}
}

func CreateTableHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TableRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityTable, web.RestaurantIDs(body.Restaurant)...); err != nil {
			return err
		}
		if err := web.RestaurantRequired(body.Restaurant); err != nil {
			return err
		}
		err := web.Require(c).
			Check("table_number", body.TableNumber != nil).
			Check("capacity", body.Capacity != nil).
			Err()
		if err != nil {
			return err
		}

		t := models.Table{RestaurantID: *body.Restaurant, Status: models.TableAvailable}
		body.apply(&t)
		if err := env.Validator.Table(c.UserContext(), &t); err != nil {
			return err
		}
		if err := env.Store.Create(c.UserContext(), &t); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

func ListTablesHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.ListScope(c, policy.EntityTable)
		if err != nil {
			return err
		}
		list, err := store.All[models.Table](c.UserContext(), env.Store, policy.EntityTable, scope, nil)
		if err != nil {
			return err
		}
		if list == nil {
			list = []models.Table{}
		}
		return c.JSON(list)
	}
}

func loadTable(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Table, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityTable)
	if err != nil {
		return nil, err
	}
	t, err := store.Get[models.Table](c.UserContext(), env.Store, policy.EntityTable, scope, id)
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityTable, t.RestaurantID); err != nil {
		return nil, err
	}
	return t, nil
}

func GetTableHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := loadTable(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

func UpdateTableHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := loadTable(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		var body TableRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := web.Immutable(t.RestaurantID, body.Restaurant); err != nil {
			return err
		}
		err = web.Require(c).
			Check("table_number", body.TableNumber != nil).
			Check("capacity", body.Capacity != nil).
			Err()
		if err != nil {
			return err
		}

		body.apply(t)
		if err := env.Validator.Table(c.UserContext(), t); err != nil {
			return err
		}
		if err := env.Store.Save(c.UserContext(), t); err != nil {
			return err
		}
		return c.JSON(t)
	}
}

func DeleteTableHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := loadTable(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), t); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
