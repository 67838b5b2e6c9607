// Package access runs the authorization policy against fiber requests.
// Every handler calls the Guard once before touching data.
package access

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/apperr"
	"pos-backend/internal/policy"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated caller on the request.
func SetPrincipal(c *fiber.Ctx, p policy.Principal) {
	c.Locals(principalKey, p)
}

// PrincipalOf returns the caller of the request, anonymous when no token
// was presented.
func PrincipalOf(c *fiber.Ctx) policy.Principal {
	p, _ := c.Locals(principalKey).(policy.Principal)
	return p
}

// TenantResolver looks up the owners of restaurants.
type TenantResolver interface {
	Tenants(ctx context.Context, ids ...uint) ([]policy.Tenant, error)
}

type Guard struct {
	tenants TenantResolver
}

func NewGuard(tenants TenantResolver) *Guard {
	return &Guard{tenants: tenants}
}

// Check decides op on entity touching the given restaurants.
func (g *Guard) Check(c *fiber.Ctx, op policy.Operation, entity policy.Entity, restaurantIDs ...uint) error {
	p := PrincipalOf(c)
	req := policy.Request{Op: op, Entity: entity}

	if !p.Superuser && !p.Anonymous() && len(restaurantIDs) > 0 {
		tenants, err := g.tenants.Tenants(c.UserContext(), restaurantIDs...)
		if err != nil {
			return err
		}
		req.Tenants = tenants
	}
	return policy.Decide(p, req).Err()
}

// ListScope resolves the scope of a list from the optional ?restaurant=
// query parameter.
func (g *Guard) ListScope(c *fiber.Ctx, entity policy.Entity) (policy.Scope, error) {
	id, err := QueryID(c, "restaurant")
	if err != nil {
		return policy.Scope{}, err
	}
	return g.scope(c, entity, id)
}

// RowScope is the scope single-row reads and writes are looked up in.
func (g *Guard) RowScope(c *fiber.Ctx, entity policy.Entity) (policy.Scope, error) {
	return g.scope(c, entity, 0)
}

// ScopeFor resolves the scope for an explicit restaurant id, 0 meaning none.
func (g *Guard) ScopeFor(c *fiber.Ctx, entity policy.Entity, restaurantID uint) (policy.Scope, error) {
	return g.scope(c, entity, restaurantID)
}

func (g *Guard) scope(c *fiber.Ctx, entity policy.Entity, restaurantID uint) (policy.Scope, error) {
	p := PrincipalOf(c)

	var requested *policy.Tenant
	if restaurantID != 0 {
		requested = &policy.Tenant{RestaurantID: restaurantID}
		if !p.Superuser && !p.Anonymous() {
			tenants, err := g.tenants.Tenants(c.UserContext(), restaurantID)
			if err != nil {
				return policy.Scope{}, err
			}
			requested = &tenants[0]
		}
	}

	scope, d := policy.ResolveScope(p, entity, requested)
	return scope, d.Err()
}

// QueryID parses an optional numeric query parameter; 0 means absent.
func QueryID(c *fiber.Ctx, key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation(apperr.FieldError{Field: key, Code: "invalid", Message: "A valid integer is required."})
	}
	return uint(n), nil
}

// ParamID parses the :id route parameter.
func ParamID(c *fiber.Ctx) (uint, error) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.NotFound("Not found.")
	}
	return uint(n), nil
}

// RequireAuth rejects anonymous callers.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PrincipalOf(c).Anonymous() {
			return apperr.Unauthenticated("Authentication credentials were not provided.")
		}
		return c.Next()
	}
}

// RequireStaff rejects callers that are neither staff nor superuser.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalOf(c)
		if p.Anonymous() {
			return apperr.Unauthenticated("Authentication credentials were not provided.")
		}
		if !p.Staff && !p.Superuser {
			return apperr.Forbidden("insufficient_privilege", "You are not authorized to perform this action.")
		}
		return c.Next()
	}
}
