package catalog

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/web"
)

// Categories are shared; every lookup runs unscoped.
var shared = policy.Scope{All: true}

type CategoryRequest struct {
	Name   *string `json:"name"`
	Status *bool   `json:"status"`
}

func (body *CategoryRequest) apply(cat *models.Category) error {
	if body.Name != nil {
		cat.Name = strings.TrimSpace(*body.Name)
	}
	if body.Status != nil {
		cat.Status = *body.Status
	}
	if cat.Name == "" {
		return apperr.Validation(apperr.FieldError{Field: "name", Code: "required", Message: "This field may not be blank."})
	}
	return nil
}

// GET /api/categories lists active categories.
func ListCategoriesHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := env.Guard.Check(c, policy.OpList, policy.EntityCategory); err != nil {
			return err
		}
		active := func(q *gorm.DB) *gorm.DB { return q.Where("categories.status = ?", true) }
		list, err := store.All[models.Category](c.UserContext(), env.Store, policy.EntityCategory, shared, active)
		if err != nil {
			return err
		}
		if list == nil {
			list = []models.Category{}
		}
		return c.JSON(list)
	}
}

// POST /api/categories
func CreateCategoryHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityCategory); err != nil {
			return err
		}

		var body CategoryRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		cat := models.Category{Status: true}
		if err := body.apply(&cat); err != nil {
			return err
		}
		if err := env.Store.Create(c.UserContext(), &cat); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

func loadCategory(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Category, error) {
	if err := env.Guard.Check(c, op, policy.EntityCategory); err != nil {
		return nil, err
	}
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	return store.Get[models.Category](c.UserContext(), env.Store, policy.EntityCategory, shared, id)
}

// GET /api/categories/:id
func GetCategoryHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := loadCategory(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

// PUT, PATCH /api/categories/:id
func UpdateCategoryHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := loadCategory(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		var body CategoryRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if err := web.Require(c).Check("name", body.Name != nil).Err(); err != nil {
			return err
		}
		if err := body.apply(cat); err != nil {
			return err
		}
		if err := env.Store.Save(c.UserContext(), cat); err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

// DELETE /api/categories/:id detaches the category from its products.
func DeleteCategoryHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := loadCategory(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), cat); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
