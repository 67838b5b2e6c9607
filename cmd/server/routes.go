package main

import (
	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/auth"
	"pos-backend/internal/catalog"
	"pos-backend/internal/customer"
	"pos-backend/internal/order"
	"pos-backend/internal/report"
	"pos-backend/internal/restaurant"
	"pos-backend/internal/web"
)

// resource mounts the CRUD routes of one entity. PUT and PATCH share the
// update handler.
func resource(r fiber.Router, path string, create, list, get, update, del fiber.Handler) {
	g := r.Group(path)
	g.Post("/", create)
	g.Get("/", list)
	g.Get("/:id", get)
	g.Put("/:id", update)
	g.Patch("/:id", update)
	g.Delete("/:id", del)
}

func routes(api fiber.Router, env *web.Env, tokens *auth.Tokens, reports *report.Service) {
	// Public
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(env.Store))
	api.Post("/token", auth.ObtainTokenHandler(env.Store, tokens))
	api.Post("/token/refresh", auth.RefreshTokenHandler(tokens))
	api.Post("/token/verify", auth.VerifyTokenHandler(tokens))
	api.Post("/verify-employee-email", restaurant.VerifyEmployeeEmailHandler(env, env.Store))

	protected := api.Group("", access.RequireAuth())
	protected.Get("/auth/me", auth.MeHandler(env.Store))

	admin := protected.Group("/admin", access.RequireStaff())
	admin.Post("/users", auth.CreateUserHandler(env.Store))
	admin.Get("/users", auth.ListUsersHandler(env.Store))

	resource(protected, "/restaurants",
		restaurant.CreateRestaurantHandler(env),
		restaurant.ListRestaurantsHandler(env),
		restaurant.GetRestaurantHandler(env),
		restaurant.UpdateRestaurantHandler(env),
		restaurant.DeleteRestaurantHandler(env))
	resource(protected, "/employees",
		restaurant.CreateEmployeeHandler(env),
		restaurant.ListEmployeesHandler(env),
		restaurant.GetEmployeeHandler(env),
		restaurant.UpdateEmployeeHandler(env),
		restaurant.DeleteEmployeeHandler(env))
	resource(protected, "/tables",
		restaurant.CreateTableHandler(env),
		restaurant.ListTablesHandler(env),
		restaurant.GetTableHandler(env),
		restaurant.UpdateTableHandler(env),
		restaurant.DeleteTableHandler(env))
	resource(protected, "/customers",
		customer.CreateHandler(env),
		customer.ListHandler(env),
		customer.GetHandler(env),
		customer.UpdateHandler(env),
		customer.DeleteHandler(env))
	resource(protected, "/categories",
		catalog.CreateCategoryHandler(env),
		catalog.ListCategoriesHandler(env),
		catalog.GetCategoryHandler(env),
		catalog.UpdateCategoryHandler(env),
		catalog.DeleteCategoryHandler(env))
	resource(protected, "/products",
		catalog.CreateProductHandler(env),
		catalog.ListProductsHandler(env),
		catalog.GetProductHandler(env),
		catalog.UpdateProductHandler(env),
		catalog.DeleteProductHandler(env))
	resource(protected, "/orders",
		order.CreateHandler(env),
		order.ListHandler(env),
		order.GetHandler(env),
		order.UpdateHandler(env),
		order.DeleteHandler(env))
	resource(protected, "/order-products",
		order.CreateLineHandler(env),
		order.ListLinesHandler(env),
		order.GetLineHandler(env),
		order.UpdateLineHandler(env),
		order.DeleteLineHandler(env))

	protected.Get("/daily-report/products", report.DailyProductsHandler(env.Guard, reports))
}
