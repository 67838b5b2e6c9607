package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/config"
	"pos-backend/internal/models"
)

type memUsers struct {
	users []models.User
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindUser(_ context.Context, id uint) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *memUsers) HasSuperuser(context.Context) (bool, error) {
	for _, u := range m.users {
		if u.IsSuperuser {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	u.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) ListUsers(context.Context) ([]models.User, error) { return m.users, nil }

func (m *memUsers) OwnedRestaurantIDs(context.Context, uint) ([]uint, error) { return []uint{4, 8}, nil }

func testTokens() *Tokens {
	return NewTokens(&config.Config{
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 2 * time.Hour,
	})
}

func newApp(users Users, tokens *Tokens) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			return c.Status(e.Status()).JSON(fiber.Map{"code": e.Code, "error": e.Message})
		}
		return c.SendStatus(500)
	}})
	app.Use(Middleware(tokens))
	app.Post("/token", ObtainTokenHandler(users, tokens))
	app.Post("/token/refresh", RefreshTokenHandler(tokens))
	app.Post("/token/verify", VerifyTokenHandler(tokens))
	app.Post("/auth/register-super-admin", RegisterSuperAdminHandler(users))
	app.Get("/auth/me", access.RequireAuth(), MeHandler(users))
	app.Post("/admin/users", access.RequireStaff(), CreateUserHandler(users))
	app.Get("/whoami", func(c *fiber.Ctx) error { return c.JSON(access.PrincipalOf(c)) })
	return app
}

func call(t *testing.T, app *fiber.App, method, target, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func seeded(t *testing.T) *memUsers {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &memUsers{users: []models.User{{ID: 1, Name: "Owner", Email: "owner@pos.test", PasswordHash: string(hash)}}}
}

func TestTokenLifecycle(t *testing.T) {
	tokens := testTokens()
	app := newApp(seeded(t), tokens)

	status, body := call(t, app, "POST", "/token", "", TokenRequest{Email: "Owner@pos.test", Password: "s3cret"})
	require.Equal(t, 200, status)
	accessTok, _ := body["access"].(string)
	refreshTok, _ := body["refresh"].(string)
	require.NotEmpty(t, accessTok)
	require.NotEmpty(t, refreshTok)

	status, body = call(t, app, "GET", "/whoami", accessTok, nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["UserID"])

	// a refresh token is not accepted as a bearer token
	status, _ = call(t, app, "GET", "/whoami", refreshTok, nil)
	assert.Equal(t, 401, status)

	status, body = call(t, app, "POST", "/token/refresh", "", fiber.Map{"refresh": refreshTok})
	require.Equal(t, 200, status)
	assert.NotEmpty(t, body["access"])

	status, _ = call(t, app, "POST", "/token/verify", "", fiber.Map{"token": accessTok})
	assert.Equal(t, 200, status)

	status, _ = call(t, app, "POST", "/token/verify", "", fiber.Map{"token": "garbage"})
	assert.Equal(t, 401, status)
}

func TestObtainTokenRejectsBadCredentials(t *testing.T) {
	app := newApp(seeded(t), testTokens())

	status, _ := call(t, app, "POST", "/token", "", TokenRequest{Email: "owner@pos.test", Password: "wrong"})
	assert.Equal(t, 401, status)

	status, _ = call(t, app, "POST", "/token", "", TokenRequest{Email: "nobody@pos.test", Password: "s3cret"})
	assert.Equal(t, 401, status)

	status, _ = call(t, app, "POST", "/token", "", TokenRequest{Email: "owner@pos.test"})
	assert.Equal(t, 400, status)
}

func TestExpiredAccessToken(t *testing.T) {
	tokens := testTokens()
	pair, err := tokens.Issue(&models.User{ID: 1, Email: "owner@pos.test"})
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	_, err = tokens.Parse(pair.Access, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAnonymousPassesThrough(t *testing.T) {
	app := newApp(seeded(t), testTokens())
	status, body := call(t, app, "GET", "/whoami", "", nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 0, body["UserID"])

	status, _ = call(t, app, "GET", "/auth/me", "", nil)
	assert.Equal(t, 401, status)
}

func TestRegisterSuperAdminOnlyOnce(t *testing.T) {
	users := &memUsers{}
	tokens := testTokens()
	app := newApp(users, tokens)

	req := CreateUserRequest{Name: "Root", Email: "root@pos.test", Password: "pw"}
	status, body := call(t, app, "POST", "/auth/register-super-admin", "", req)
	require.Equal(t, 201, status)
	assert.Equal(t, true, body["is_superuser"])
	assert.NotContains(t, body, "PasswordHash")

	status, body = call(t, app, "POST", "/auth/register-super-admin", "", req)
	assert.Equal(t, 403, status)
	assert.Equal(t, "superuser_exists", body["code"])

	pair, err := tokens.Issue(&users.users[0])
	require.NoError(t, err)
	status, body = call(t, app, "GET", "/auth/me", pair.Access, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "root@pos.test", body["email"])
	assert.Len(t, body["restaurants"], 2)
}

func TestCreateUserRequiresStaff(t *testing.T) {
	users := seeded(t)
	tokens := testTokens()
	app := newApp(users, tokens)

	owner, err := tokens.Issue(&users.users[0])
	require.NoError(t, err)
	status, _ := call(t, app, "POST", "/admin/users", owner.Access, CreateUserRequest{Name: "B", Email: "b@pos.test", Password: "pw"})
	assert.Equal(t, 403, status)

	staff, err := tokens.Issue(&models.User{ID: 50, IsStaff: true})
	require.NoError(t, err)
	status, _ = call(t, app, "POST", "/admin/users", staff.Access, CreateUserRequest{Name: "B", Email: "b@pos.test", Password: "pw"})
	assert.Equal(t, 201, status)

	status, _ = call(t, app, "POST", "/admin/users", staff.Access, CreateUserRequest{Name: "C", Email: "c@pos.test", Password: "pw", IsStaff: true})
	assert.Equal(t, 403, status)
}
