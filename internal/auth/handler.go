package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
)

// Users is the account storage the auth handlers need. FindUser* return
// (nil, nil) when no account matches.
type Users interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUser(ctx context.Context, id uint) (*models.User, error)
	HasSuperuser(ctx context.Context) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	OwnedRestaurantIDs(ctx context.Context, userID uint) ([]uint, error)
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsStaff  bool   `json:"is_staff"`
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func required(fields map[string]string) error {
	var errs []apperr.FieldError
	for _, name := range []string{"name", "email", "password", "refresh", "token"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			errs = append(errs, apperr.FieldError{Field: name, Code: "required", Message: "This field is required."})
		}
	}
	if len(errs) > 0 {
		return apperr.Validation(errs...)
	}
	return nil
}

func newUser(body CreateUserRequest) (*models.User, error) {
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if err := required(map[string]string{"name": body.Name, "email": body.Email, "password": body.Password}); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &models.User{
		Name:         strings.TrimSpace(body.Name),
		Email:        body.Email,
		PasswordHash: string(hash),
		IsStaff:      body.IsStaff,
	}, nil
}

// RegisterSuperAdminHandler bootstraps the first superuser. It refuses once
// any superuser exists.
func RegisterSuperAdminHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest("parse_error", "Invalid request body.")
		}

		exists, err := users.HasSuperuser(c.UserContext())
		if err != nil {
			return err
		}
		if exists {
			return apperr.Forbidden("superuser_exists", "A superuser already exists.")
		}

		user, err := newUser(body)
		if err != nil {
			return err
		}
		user.IsSuperuser = true
		user.IsStaff = true

		if err := users.CreateUser(c.UserContext(), user); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// CreateUserHandler lets staff create owner accounts. Only a superuser may
// create another staff account.
func CreateUserHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest("parse_error", "Invalid request body.")
		}
		if body.IsStaff && !access.PrincipalOf(c).Superuser {
			return apperr.Forbidden("insufficient_privilege", "Only a superuser may create staff accounts.")
		}

		user, err := newUser(body)
		if err != nil {
			return err
		}
		if err := users.CreateUser(c.UserContext(), user); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

func ListUsersHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := users.ListUsers(c.UserContext())
		if err != nil {
			return err
		}
		if list == nil {
			list = []models.User{}
		}
		return c.JSON(list)
	}
}

// ObtainTokenHandler exchanges credentials for an access/refresh pair.
func ObtainTokenHandler(users Users, tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TokenRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest("parse_error", "Invalid request body.")
		}
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if err := required(map[string]string{"email": body.Email, "password": body.Password}); err != nil {
			return err
		}

		user, err := users.FindUserByEmail(c.UserContext(), body.Email)
		if err != nil {
			return err
		}
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
			return apperr.Unauthenticated("No active account found with the given credentials.")
		}

		pair, err := tokens.Issue(user)
		if err != nil {
			return apperr.Internal(err)
		}
		return c.JSON(pair)
	}
}

func RefreshTokenHandler(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Refresh string `json:"refresh"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest("parse_error", "Invalid request body.")
		}
		if err := required(map[string]string{"refresh": body.Refresh}); err != nil {
			return err
		}

		claims, err := tokens.Parse(body.Refresh, TokenRefresh)
		if err != nil {
			return apperr.Unauthenticated("Token is invalid or expired.")
		}
		accessToken, err := tokens.Access(claims)
		if err != nil {
			return apperr.Internal(err)
		}
		return c.JSON(fiber.Map{"access": accessToken})
	}
}

func VerifyTokenHandler(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest("parse_error", "Invalid request body.")
		}
		if err := required(map[string]string{"token": body.Token}); err != nil {
			return err
		}
		if _, err := tokens.Parse(body.Token, ""); err != nil {
			return apperr.Unauthenticated("Token is invalid or expired.")
		}
		return c.JSON(fiber.Map{})
	}
}

func MeHandler(users Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := access.PrincipalOf(c)
		user, err := users.FindUser(c.UserContext(), p.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.Unauthenticated("User not found.")
		}

		restaurants, err := users.OwnedRestaurantIDs(c.UserContext(), user.ID)
		if err != nil {
			return err
		}
		if restaurants == nil {
			restaurants = []uint{}
		}
		return c.JSON(fiber.Map{
			"id":           user.ID,
			"name":         user.Name,
			"email":        user.Email,
			"is_superuser": user.IsSuperuser,
			"is_staff":     user.IsStaff,
			"restaurants":  restaurants,
		})
	}
}
