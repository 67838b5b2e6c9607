package order

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pos-backend/internal/access"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/web"
)

const (
	pageSize    = 30
	maxPageSize = 100
)

type Request struct {
	Restaurant    *uint            `json:"restaurant"`
	Customer      *uint            `json:"customer"`
	Tables        *[]uint          `json:"tables"`
	Employee      *uint            `json:"employee"`
	CustomerName  *string          `json:"customer_name"`
	Status        *string          `json:"status"`
	Subtotal      *decimal.Decimal `json:"subtotal"`
	Discount      *decimal.Decimal `json:"discount"`
	Tax           *decimal.Decimal `json:"tax"`
	Tips          *decimal.Decimal `json:"tips"`
	Total         *decimal.Decimal `json:"total"`
	PaymentMethod *string          `json:"payment_method"`
}

// Response renders money with two fractional digits.
type Response struct {
	ID            uint      `json:"id"`
	Restaurant    uint      `json:"restaurant"`
	Customer      *uint     `json:"customer"`
	Tables        []uint    `json:"tables"`
	Employee      uint      `json:"employee"`
	CustomerName  string    `json:"customer_name"`
	Status        string    `json:"status"`
	Subtotal      string    `json:"subtotal"`
	Discount      *string   `json:"discount"`
	Tax           *string   `json:"tax"`
	Tips          *string   `json:"tips"`
	Total         string    `json:"total"`
	PaymentMethod *string   `json:"payment_method"`
	Created       time.Time `json:"created"`
	Modified      time.Time `json:"modified"`
}

func money(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func toResponse(o *models.Order) Response {
	r := Response{
		ID:           o.ID,
		Restaurant:   o.RestaurantID,
		Customer:     o.CustomerID,
		Tables:       o.TableIDs(),
		Employee:     o.EmployeeID,
		CustomerName: o.CustomerName,
		Status:       string(o.Status),
		Subtotal:     o.Subtotal.StringFixed(2),
		Discount:     money(o.Discount),
		Tax:          money(o.Tax),
		Tips:         money(o.Tips),
		Total:        o.Total.StringFixed(2),
		Created:      o.CreatedAt,
		Modified:     o.UpdatedAt,
	}
	if o.PaymentMethod != nil {
		pm := string(*o.PaymentMethod)
		r.PaymentMethod = &pm
	}
	return r
}

func (body *Request) apply(o *models.Order) {
	if body.Customer != nil {
		if *body.Customer == 0 {
			o.CustomerID = nil
		} else {
			id := *body.Customer
			o.CustomerID = &id
		}
	}
	if body.Employee != nil {
		o.EmployeeID = *body.Employee
	}
	if body.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*body.CustomerName)
	}
	if body.Status != nil {
		o.Status = models.OrderStatus(*body.Status)
	}
	if body.Subtotal != nil {
		o.Subtotal = *body.Subtotal
	}
	if body.Discount != nil {
		o.Discount = body.Discount
	}
	if body.Tax != nil {
		o.Tax = body.Tax
	}
	if body.Tips != nil {
		o.Tips = body.Tips
	}
	if body.Total != nil {
		o.Total = *body.Total
	}
	if body.PaymentMethod != nil {
		pm := models.PaymentMethod(*body.PaymentMethod)
		o.PaymentMethod = &pm
	}
}

func (body *Request) require(c *fiber.Ctx) error {
	return web.Require(c).
		Check("tables", body.Tables != nil).
		Check("employee", body.Employee != nil).
		Check("subtotal", body.Subtotal != nil).
		Check("total", body.Total != nil).
		Err()
}

func tableIDs(v *[]uint) []uint {
	if v == nil {
		return nil
	}
	seen := make(map[uint]bool, len(*v))
	out := make([]uint, 0, len(*v))
	for _, id := range *v {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// POST /api/orders
func CreateHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Request
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityOrder, web.RestaurantIDs(body.Restaurant)...); err != nil {
			return err
		}
		if err := web.RestaurantRequired(body.Restaurant); err != nil {
			return err
		}
		if err := body.require(c); err != nil {
			return err
		}

		o := models.Order{RestaurantID: *body.Restaurant, Status: models.OrderPending}
		body.apply(&o)
		tables := tableIDs(body.Tables)
		if err := env.Validator.Order(c.UserContext(), &o, tables); err != nil {
			return err
		}
		if err := env.Store.CreateOrder(c.UserContext(), &o, tables); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(&o))
	}
}

// GET /api/orders?restaurant=<id>
func ListHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.ListScope(c, policy.EntityOrder)
		if err != nil {
			return err
		}
		p, err := pagination.Parse(c, pageSize, maxPageSize)
		if err != nil {
			return err
		}

		list, count, err := store.List[models.Order](c.UserContext(), env.Store, policy.EntityOrder, scope, p, "", "Tables")
		if err != nil {
			return err
		}
		res := make([]Response, 0, len(list))
		for i := range list {
			res = append(res, toResponse(&list[i]))
		}
		return c.JSON(pagination.New(c, p, count, res))
	}
}

func load(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Order, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityOrder)
	if err != nil {
		return nil, err
	}
	o, err := store.Get[models.Order](c.UserContext(), env.Store, policy.EntityOrder, scope, id, "Tables")
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityOrder, o.RestaurantID); err != nil {
		return nil, err
	}
	return o, nil
}

// GET /api/orders/:id
func GetHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := load(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(o))
	}
}

// PUT, PATCH /api/orders/:id. Omitted tables keep the current ones on PATCH.
func UpdateHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := load(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		var body Request
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := web.Immutable(o.RestaurantID, body.Restaurant); err != nil {
			return err
		}
		if err := body.require(c); err != nil {
			return err
		}

		body.apply(o)
		tables := tableIDs(body.Tables)
		check := tables
		if check == nil {
			check = o.TableIDs()
		}
		if err := env.Validator.Order(c.UserContext(), o, check); err != nil {
			return err
		}
		if err := env.Store.UpdateOrder(c.UserContext(), o, tables); err != nil {
			return err
		}
		return c.JSON(toResponse(o))
	}
}

// DELETE /api/orders/:id removes the order with its lines and table links.
func DeleteHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := load(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), o); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
