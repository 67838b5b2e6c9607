package restaurant

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
	employeePageSize    = 5
	employeeMaxPageSize = 50
)

type EmployeeRequest struct {
	Restaurant *uint   `json:"restaurant"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
}

type employeeView struct {
	models.Employee
	ProfilePicture *string `json:"profile_picture"`
}

func viewEmployee(env *web.Env, e models.Employee) employeeView {
	return employeeView{Employee: e, ProfilePicture: env.Media.URL(e.ProfilePicture)}
}

// bindEmployee reads a JSON or multipart body.
func bindEmployee(c *fiber.Ctx) (EmployeeRequest, error) {
	var body EmployeeRequest
	if !web.IsMultipart(c) {
		return body, web.BindJSON(c, &body)
	}
	f, err := web.ParseForm(c)
	if err != nil {
		return body, err
	}
	body.Restaurant = f.Uint("restaurant")
	body.Name = f.String("name")
	body.Email = f.String("email")
	body.Role = f.String("role")
	return body, f.Err()
}

func (body *EmployeeRequest) apply(e *models.Employee) {
	if body.Name != nil {
		e.Name = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil {
		e.Email = strings.TrimSpace(*body.Email)
	}
	if body.Role != nil {
		e.Role = models.EmployeeRole(*body.Role)
	}
}

func (body *EmployeeRequest) require(c *fiber.Ctx) error {
	return web.Require(c).
		Check("name", body.Name != nil).
		Check("email", body.Email != nil).
		Check("role", body.Role != nil).
		Err()
}

func CreateEmployeeHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := bindEmployee(c)
		if err != nil {
			return err
		}
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityEmployee, web.RestaurantIDs(body.Restaurant)...); err != nil {
			return err
		}
		if err := web.RestaurantRequired(body.Restaurant); err != nil {
			return err
		}
		if err := body.require(c); err != nil {
			return err
		}

		e := models.Employee{RestaurantID: *body.Restaurant}
		body.apply(&e)
		if err := env.Validator.Employee(c.UserContext(), &e); err != nil {
			return err
		}

		if e.ProfilePicture, err = env.Media.SaveImage(c, "profile_picture", "employees"); err != nil {
			return err
		}
		if err := env.Store.Create(c.UserContext(), &e); err != nil {
			env.Media.Remove(e.ProfilePicture)
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(viewEmployee(env, e))
	}
}

func ListEmployeesHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.ListScope(c, policy.EntityEmployee)
		if err != nil {
			return err
		}
		p, err := pagination.Parse(c, employeePageSize, employeeMaxPageSize)
		if err != nil {
			return err
		}

		list, count, err := store.List[models.Employee](c.UserContext(), env.Store, policy.EntityEmployee, scope, p, "")
		if err != nil {
			return err
		}
		views := make([]employeeView, 0, len(list))
		for _, e := range list {
			views = append(views, viewEmployee(env, e))
		}
		return c.JSON(pagination.New(c, p, count, views))
	}
}

func loadEmployee(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Employee, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityEmployee)
	if err != nil {
		return nil, err
	}
	e, err := store.Get[models.Employee](c.UserContext(), env.Store, policy.EntityEmployee, scope, id)
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityEmployee, e.RestaurantID); err != nil {
		return nil, err
	}
	return e, nil
}

func GetEmployeeHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := loadEmployee(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(viewEmployee(env, *e))
	}
}

func UpdateEmployeeHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := loadEmployee(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		body, err := bindEmployee(c)
		if err != nil {
			return err
		}
		if err := web.Immutable(e.RestaurantID, body.Restaurant); err != nil {
			return err
		}
		if err := body.require(c); err != nil {
			return err
		}
		body.apply(e)
		if err := env.Validator.Employee(c.UserContext(), e); err != nil {
			return err
		}

		picture, err := env.Media.SaveImage(c, "profile_picture", "employees")
		if err != nil {
			return err
		}
		old := e.ProfilePicture
		if picture != nil {
			e.ProfilePicture = picture
		}
		if err := env.Store.Save(c.UserContext(), e); err != nil {
			env.Media.Remove(picture)
			return err
		}
		if picture != nil {
			env.Media.Remove(old)
		}
		return c.JSON(viewEmployee(env, *e))
	}
}

func DeleteEmployeeHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := loadEmployee(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), e); err != nil {
			return err
		}
		env.Media.Remove(e.ProfilePicture)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
