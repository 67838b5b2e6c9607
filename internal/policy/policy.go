// Package policy decides whether a principal may perform an operation on a
// tenant-scoped entity. It performs no IO: callers resolve restaurant owners
// first and pass them in as Tenants.
package policy

import "pos-backend/internal/apperr"

// Principal is the caller of a request. The zero value is anonymous.
type Principal struct {
	UserID    uint
	Superuser bool
	Staff     bool
}

func (p Principal) Anonymous() bool {
	return p.UserID == 0 && !p.Superuser
}

type Operation string

const (
	OpList   Operation = "list"
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

func (o Operation) ReadOnly() bool {
	return o == OpList || o == OpRead
}

type Entity string

const (
	EntityRestaurant           Entity = "restaurant"
	EntityEmployee             Entity = "employee"
	EntityTable                Entity = "table"
	EntityCustomer             Entity = "customer"
	EntityCategory             Entity = "category"
	EntityProduct              Entity = "product"
	EntityOrder                Entity = "order"
	EntityOrderLine            Entity = "order_line"
	EntityReport               Entity = "report"
	EntityEmployeeVerification Entity = "employee_verification"
)

// Tenant is a restaurant reference together with its resolved owner. Found
// is false when the id does not name an existing restaurant.
type Tenant struct {
	RestaurantID uint
	OwnerID      uint
	Found        bool
}

type Request struct {
	Op     Operation
	Entity Entity
	// Tenants are the restaurants the operation touches: the explicit scope
	// parameter of a list, the restaurant(s) named by a create payload, or
	// the restaurant(s) an existing row resolves to.
	Tenants []Tenant
	// Scoped marks a list/read that carries an explicit restaurant filter.
	Scoped bool
}

type Reason string

const (
	ReasonUnauthenticated       Reason = "not_authenticated"
	ReasonNotOwner              Reason = "not_owner"
	ReasonMissingRestaurant     Reason = "missing_restaurant"
	ReasonInsufficientPrivilege Reason = "insufficient_privilege"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Reason: r} }

// Err converts a denial into the API error shown to the caller.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return apperr.Unauthenticated("Authentication credentials were not provided.")
	case ReasonMissingRestaurant:
		return apperr.BadRequest(string(d.Reason), "A restaurant ID is required.")
	case ReasonInsufficientPrivilege:
		return apperr.Forbidden(string(d.Reason), "You are not authorized to perform this action.")
	default:
		return NotOwner()
	}
}

// NotOwner is the error for a denied ownership check. Scoped lookups that
// miss return it as well so out-of-scope rows are indistinguishable from
// rows the caller may not touch.
func NotOwner() error {
	return apperr.Forbidden(string(ReasonNotOwner), "You are not the owner of this restaurant.")
}

// Decide applies the authorization rules in order: superuser, anonymous,
// shared categories, then ownership per operation.
func Decide(p Principal, req Request) Decision {
	if p.Superuser {
		return allow()
	}
	if p.Anonymous() {
		if req.Entity == EntityEmployeeVerification && req.Op == OpRead {
			return allow()
		}
		return deny(ReasonUnauthenticated)
	}

	switch req.Entity {
	case EntityEmployeeVerification:
		return allow()
	case EntityCategory:
		if req.Op.ReadOnly() || p.Staff {
			return allow()
		}
		return deny(ReasonInsufficientPrivilege)
	}

	switch req.Op {
	case OpList, OpRead:
		if !req.Scoped {
			return allow()
		}
		return ownsAll(p, req.Tenants)
	case OpCreate:
		if req.Entity == EntityRestaurant {
			return allow()
		}
		if len(req.Tenants) == 0 {
			return deny(ReasonMissingRestaurant)
		}
		return ownsAll(p, req.Tenants)
	case OpUpdate, OpDelete:
		if req.Entity == EntityProduct {
			return ownsAny(p, req.Tenants)
		}
		return ownsAll(p, req.Tenants)
	}
	return deny(ReasonNotOwner)
}

func owns(p Principal, t Tenant) bool {
	return t.Found && t.OwnerID == p.UserID
}

func ownsAll(p Principal, tenants []Tenant) Decision {
	if len(tenants) == 0 {
		return deny(ReasonNotOwner)
	}
	for _, t := range tenants {
		if !owns(p, t) {
			return deny(ReasonNotOwner)
		}
	}
	return allow()
}

func ownsAny(p Principal, tenants []Tenant) Decision {
	for _, t := range tenants {
		if owns(p, t) {
			return allow()
		}
	}
	return deny(ReasonNotOwner)
}
