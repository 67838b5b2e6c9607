package access

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/apperr"
	"pos-backend/internal/policy"
)

// owners maps restaurant ids to owning user ids.
type owners map[uint]uint

func (o owners) Tenants(_ context.Context, ids ...uint) ([]policy.Tenant, error) {
	out := make([]policy.Tenant, 0, len(ids))
	for _, id := range ids {
		owner, ok := o[id]
		out = append(out, policy.Tenant{RestaurantID: id, OwnerID: owner, Found: ok})
	}
	return out, nil
}

func newApp(p policy.Principal, g *Guard) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			return c.Status(e.Status()).JSON(fiber.Map{"code": e.Code})
		}
		return c.SendStatus(500)
	}})
	app.Use(func(c *fiber.Ctx) error {
		if !p.Anonymous() {
			SetPrincipal(c, p)
		}
		return c.Next()
	})
	app.Get("/employees", func(c *fiber.Ctx) error {
		scope, err := g.ListScope(c, policy.EntityEmployee)
		if err != nil {
			return err
		}
		return c.JSON(scope)
	})
	app.Post("/tables", func(c *fiber.Ctx) error {
		id, err := QueryID(c, "restaurant")
		if err != nil {
			return err
		}
		var ids []uint
		if id != 0 {
			ids = append(ids, id)
		}
		if err := g.Check(c, policy.OpCreate, policy.EntityTable, ids...); err != nil {
			return err
		}
		return c.SendStatus(201)
	})
	app.Post("/categories", RequireStaff(), func(c *fiber.Ctx) error { return c.SendStatus(201) })
	return app
}

func do(t *testing.T, app *fiber.App, method, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	body := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestListScopeOfForeignRestaurantIsDenied(t *testing.T) {
	g := NewGuard(owners{1: 100, 2: 200})
	app := newApp(policy.Principal{UserID: 200}, g)

	status, body := do(t, app, "GET", "/employees?restaurant=1")
	assert.Equal(t, 403, status)
	assert.Equal(t, "not_owner", body["code"])

	status, body = do(t, app, "GET", "/employees?restaurant=2")
	assert.Equal(t, 200, status)
	assert.EqualValues(t, 2, body["RestaurantID"])
	assert.EqualValues(t, 200, body["OwnerID"])
}

func TestListScopeWithoutFilter(t *testing.T) {
	g := NewGuard(owners{})
	status, body := do(t, newApp(policy.Principal{UserID: 7}, g), "GET", "/employees")
	assert.Equal(t, 200, status)
	assert.EqualValues(t, 7, body["OwnerID"])
	assert.Equal(t, false, body["All"])

	status, _ = do(t, newApp(policy.Principal{}, g), "GET", "/employees")
	assert.Equal(t, 401, status)

	status, _ = do(t, newApp(policy.Principal{UserID: 7}, g), "GET", "/employees?restaurant=x")
	assert.Equal(t, 400, status)
}

func TestCheckCreate(t *testing.T) {
	g := NewGuard(owners{1: 100})
	app := newApp(policy.Principal{UserID: 100}, g)

	status, body := do(t, app, "POST", "/tables")
	assert.Equal(t, 400, status)
	assert.Equal(t, "missing_restaurant", body["code"])

	status, _ = do(t, app, "POST", "/tables?restaurant=1")
	assert.Equal(t, 201, status)

	status, body = do(t, app, "POST", "/tables?restaurant=5")
	assert.Equal(t, 403, status)
	assert.Equal(t, "not_owner", body["code"])

	status, _ = do(t, newApp(policy.Principal{UserID: 1, Superuser: true}, g), "POST", "/tables?restaurant=5")
	assert.Equal(t, 201, status)
}

func TestRequireStaff(t *testing.T) {
	g := NewGuard(owners{})
	status, _ := do(t, newApp(policy.Principal{UserID: 1}, g), "POST", "/categories")
	assert.Equal(t, 403, status)

	status, _ = do(t, newApp(policy.Principal{UserID: 1, Staff: true}, g), "POST", "/categories")
	assert.Equal(t, 201, status)

	status, _ = do(t, newApp(policy.Principal{}, g), "POST", "/categories")
	assert.Equal(t, 401, status)
}
