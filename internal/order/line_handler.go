package order

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/validation"
	"pos-backend/internal/web"
)

type LineRequest struct {
	Order    *uint `json:"order"`
	Product  *uint `json:"product"`
	Quantity *int  `json:"quantity"`
}

func (body *LineRequest) apply(l *models.OrderLine) {
	if body.Order != nil {
		l.OrderID = *body.Order
	}
	if body.Product != nil {
		l.ProductID = *body.Product
	}
	if body.Quantity != nil {
		l.Quantity = web.Count(*body.Quantity)
	}
}

type orderFinder interface {
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
}

// orderOf resolves the order a line is written to and checks op against its
// restaurant. Below superuser an unknown order answers like a foreign one.
func orderOf(c *fiber.Ctx, finder orderFinder, guard *access.Guard, op policy.Operation, id uint) (*models.Order, error) {
	o, err := finder.FindOrder(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		if !access.PrincipalOf(c).Superuser {
			return nil, policy.NotOwner()
		}
		return nil, apperr.Validation(apperr.FieldError{Field: "order", Code: "does_not_exist", Message: "Order does not exist."})
	}
	if err := guard.Check(c, op, policy.EntityOrderLine, o.RestaurantID); err != nil {
		return nil, err
	}
	return o, nil
}

// saveLine validates and writes l inside one transaction. The line carries
// the restaurant of its order.
func saveLine(ctx context.Context, env *web.Env, l *models.OrderLine, checkAvailability bool) error {
	return env.Store.Transaction(ctx, func(tx *store.Store) error {
		if err := validation.New(tx).OrderLine(ctx, l, checkAvailability); err != nil {
			return err
		}
		if l.ID == 0 {
			return tx.Create(ctx, l)
		}
		return tx.Save(ctx, l)
	})
}

// POST /api/order-products
func CreateLineHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := env.Guard.Check(c, policy.OpList, policy.EntityOrderLine); err != nil {
			return err
		}
		var body LineRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		err := web.Require(c).
			Check("order", body.Order != nil).
			Check("product", body.Product != nil).
			Err()
		if err != nil {
			return err
		}

		o, err := orderOf(c, env.Store, env.Guard, policy.OpCreate, *body.Order)
		if err != nil {
			return err
		}
		l := models.OrderLine{Quantity: 1, RestaurantID: o.RestaurantID}
		body.apply(&l)
		if err := saveLine(c.UserContext(), env, &l, true); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// GET /api/order-products?restaurant=<id>&order=<id>
func ListLinesHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.ListScope(c, policy.EntityOrderLine)
		if err != nil {
			return err
		}
		orderID, err := access.QueryID(c, "order")
		if err != nil {
			return err
		}

		var filter func(*gorm.DB) *gorm.DB
		if orderID != 0 {
			filter = func(q *gorm.DB) *gorm.DB { return q.Where("order_lines.order_id = ?", orderID) }
		}
		list, err := store.All[models.OrderLine](c.UserContext(), env.Store, policy.EntityOrderLine, scope, filter)
		if err != nil {
			return err
		}
		if list == nil {
			list = []models.OrderLine{}
		}
		return c.JSON(list)
	}
}

func loadLine(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.OrderLine, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityOrderLine)
	if err != nil {
		return nil, err
	}
	l, err := store.Get[models.OrderLine](c.UserContext(), env.Store, policy.EntityOrderLine, scope, id)
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityOrderLine, l.RestaurantID); err != nil {
		return nil, err
	}
	return l, nil
}

// GET /api/order-products/:id
func GetLineHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := loadLine(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(l)
	}
}

// PUT, PATCH /api/order-products/:id. Moving a line to another order needs
// the right to add lines there; availability is rechecked only when the
// product changes.
func UpdateLineHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := loadLine(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		var body LineRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		err = web.Require(c).
			Check("order", body.Order != nil).
			Check("product", body.Product != nil).
			Err()
		if err != nil {
			return err
		}

		if body.Order != nil && *body.Order != l.OrderID {
			o, err := orderOf(c, env.Store, env.Guard, policy.OpCreate, *body.Order)
			if err != nil {
				return err
			}
			l.RestaurantID = o.RestaurantID
		}
		productChanged := body.Product != nil && *body.Product != l.ProductID
		if !web.Partial(c) && body.Quantity == nil {
			l.Quantity = 1
		}
		body.apply(l)

		if err := saveLine(c.UserContext(), env, l, productChanged); err != nil {
			return err
		}
		return c.JSON(l)
	}
}

// DELETE /api/order-products/:id
func DeleteLineHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := loadLine(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), l); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
