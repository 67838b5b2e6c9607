package restaurant

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
	"pos-backend/internal/policy"
	"pos-backend/internal/web"
)

func tableApp(p policy.Principal) *fiber.App {
	env := &web.Env{Guard: access.NewGuard(noTenants{})}
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			return c.Status(e.Status()).JSON(fiber.Map{"code": e.Code})
		}
		return c.SendStatus(500)
	}})
	app.Use(func(c *fiber.Ctx) error {
		access.SetPrincipal(c, p)
		return c.Next()
	})
	app.Post("/tables", CreateTableHandler(env))
	app.Post("/decode", func(c *fiber.Ctx) error {
		var body TableRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		var t models.Table
		body.apply(&t)
		return c.JSON(t)
	})
	return app
}

func send(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCreateTableZeroRestaurantIsMissing(t *testing.T) {
	for _, p := range []policy.Principal{{UserID: 10}, {UserID: 1, Superuser: true}} {
		status, out := send(t, tableApp(p), "/tables", `{"restaurant":0,"table_number":1,"capacity":2}`)
		assert.Equal(t, 400, status)
		assert.Equal(t, "missing_restaurant", out["code"])
	}
}

func TestTableRequestNegativeNumbersReachValidation(t *testing.T) {
	status, out := send(t, tableApp(policy.Principal{UserID: 10}), "/decode", `{"table_number":-1,"capacity":-4}`)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 0, out["table_number"])
	assert.EqualValues(t, 0, out["capacity"])
}
