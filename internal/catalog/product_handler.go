package catalog

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/policy"
	"pos-backend/internal/store"
	"pos-backend/internal/web"
)

const (
	productPageSize    = 10
	productMaxPageSize = 50
)

type ProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status"`
	Restaurants *[]uint          `json:"restaurants"`
	Categories  *[]uint          `json:"categories"`
}

type ProductResponse struct {
	ID          uint      `json:"id"`
	Restaurants []uint    `json:"restaurants"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Image       *string   `json:"image"`
	Status      string    `json:"status"`
	Categories  []uint    `json:"categories"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

func toResponse(env *web.Env, p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Restaurants: p.RestaurantIDs(),
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Image:       env.Media.URL(p.Image),
		Status:      string(p.Status),
		Categories:  p.CategoryIDs(),
		Created:     p.CreatedAt,
		Modified:    p.UpdatedAt,
	}
}

// bindProduct reads a JSON body or a multipart form carrying the image.
func bindProduct(c *fiber.Ctx) (ProductRequest, error) {
	var body ProductRequest
	if !web.IsMultipart(c) {
		return body, web.BindJSON(c, &body)
	}

	f, err := web.ParseForm(c)
	if err != nil {
		return body, err
	}
	body.Name = f.String("name")
	body.Status = f.String("status")
	body.Restaurants = f.Uints("restaurants")
	body.Categories = f.Uints("categories")
	if raw := f.String("price"); raw != nil {
		d, err := decimal.NewFromString(strings.TrimSpace(*raw))
		if err != nil {
			return body, apperr.Validation(apperr.FieldError{Field: "price", Code: "invalid", Message: "A valid number is required."})
		}
		body.Price = &d
	}
	return body, f.Err()
}

func (body *ProductRequest) apply(p *models.Product) {
	if body.Name != nil {
		p.Name = strings.TrimSpace(*body.Name)
	}
	if body.Price != nil {
		p.Price = *body.Price
	}
	if body.Status != nil {
		p.Status = models.ProductStatus(*body.Status)
	}
}

func (body *ProductRequest) require(c *fiber.Ctx) error {
	return web.Require(c).
		Check("name", body.Name != nil).
		Check("price", body.Price != nil).
		Check("restaurants", body.Restaurants != nil).
		Err()
}

func ids(v *[]uint) []uint {
	if v == nil {
		return nil
	}
	return dedupe(*v)
}

func dedupe(in []uint) []uint {
	seen := make(map[uint]bool, len(in))
	out := make([]uint, 0, len(in))
	for _, id := range in {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// changed lists restaurants added to or removed from a product.
func changed(current, next []uint) []uint {
	in := func(set []uint, id uint) bool {
		for _, v := range set {
			if v == id {
				return true
			}
		}
		return false
	}
	var out []uint
	for _, id := range next {
		if !in(current, id) {
			out = append(out, id)
		}
	}
	for _, id := range current {
		if !in(next, id) {
			out = append(out, id)
		}
	}
	return out
}

func reload(c *fiber.Ctx, env *web.Env, id uint) (*models.Product, error) {
	return store.Get[models.Product](c.UserContext(), env.Store, policy.EntityProduct, shared, id, "Restaurants", "Categories")
}

// POST /api/products
func CreateProductHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := bindProduct(c)
		if err != nil {
			return err
		}
		restaurants := ids(body.Restaurants)
		if err := env.Guard.Check(c, policy.OpCreate, policy.EntityProduct, restaurants...); err != nil {
			return err
		}
		if err := body.require(c); err != nil {
			return err
		}

		p := models.Product{Status: models.ProductAvailable}
		body.apply(&p)
		if err := env.Validator.Product(c.UserContext(), &p, restaurants); err != nil {
			return err
		}

		if p.Image, err = env.Media.SaveImage(c, "image", "products"); err != nil {
			return err
		}
		if err := env.Store.CreateProduct(c.UserContext(), &p, restaurants, ids(body.Categories)); err != nil {
			env.Media.Remove(p.Image)
			return err
		}

		created, err := reload(c, env, p.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(env, created))
	}
}

// GET /api/products?restaurant=<id>
func ListProductsHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := env.Guard.ListScope(c, policy.EntityProduct)
		if err != nil {
			return err
		}
		p, err := pagination.Parse(c, productPageSize, productMaxPageSize)
		if err != nil {
			return err
		}

		list, count, err := store.List[models.Product](c.UserContext(), env.Store, policy.EntityProduct, scope, p, "", "Restaurants", "Categories")
		if err != nil {
			return err
		}
		res := make([]ProductResponse, 0, len(list))
		for i := range list {
			res = append(res, toResponse(env, &list[i]))
		}
		return c.JSON(pagination.New(c, p, count, res))
	}
}

func loadProduct(c *fiber.Ctx, env *web.Env, op policy.Operation) (*models.Product, error) {
	id, err := access.ParamID(c)
	if err != nil {
		return nil, err
	}
	scope, err := env.Guard.RowScope(c, policy.EntityProduct)
	if err != nil {
		return nil, err
	}
	p, err := store.Get[models.Product](c.UserContext(), env.Store, policy.EntityProduct, scope, id, "Restaurants", "Categories")
	if err != nil {
		return nil, err
	}
	if err := env.Guard.Check(c, op, policy.EntityProduct, p.RestaurantIDs()...); err != nil {
		return nil, err
	}
	return p, nil
}

// GET /api/products/:id
func GetProductHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := loadProduct(c, env, policy.OpRead)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(env, p))
	}
}

// PUT, PATCH /api/products/:id. Restaurants added or removed by the update
// must be owned by the caller; links to other owners' restaurants that stay
// are left alone.
func UpdateProductHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := loadProduct(c, env, policy.OpUpdate)
		if err != nil {
			return err
		}

		body, err := bindProduct(c)
		if err != nil {
			return err
		}
		restaurants := ids(body.Restaurants)
		if body.Restaurants != nil {
			if diff := changed(p.RestaurantIDs(), restaurants); len(diff) > 0 {
				if err := env.Guard.Check(c, policy.OpCreate, policy.EntityProduct, diff...); err != nil {
					return err
				}
			}
		}
		if err := body.require(c); err != nil {
			return err
		}

		body.apply(p)
		target := restaurants
		if body.Restaurants == nil {
			target = p.RestaurantIDs()
		}
		if err := env.Validator.Product(c.UserContext(), p, target); err != nil {
			return err
		}

		image, err := env.Media.SaveImage(c, "image", "products")
		if err != nil {
			return err
		}
		old := p.Image
		if image != nil {
			p.Image = image
		}
		if err := env.Store.UpdateProduct(c.UserContext(), p, restaurants, ids(body.Categories)); err != nil {
			env.Media.Remove(image)
			return err
		}
		if image != nil {
			env.Media.Remove(old)
		}

		updated, err := reload(c, env, p.ID)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(env, updated))
	}
}

// DELETE /api/products/:id removes the product from every restaurant.
func DeleteProductHandler(env *web.Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := loadProduct(c, env, policy.OpDelete)
		if err != nil {
			return err
		}
		if err := env.Store.Delete(c.UserContext(), p); err != nil {
			return err
		}
		env.Media.Remove(p.Image)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
