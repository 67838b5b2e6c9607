package policy

// Scope is the effective row filter of a list or read. All lifts the owner
// filter; RestaurantID, when non-zero, narrows to one restaurant.
type Scope struct {
	All          bool
	OwnerID      uint
	RestaurantID uint
}

// ResolveScope turns a principal and an optional explicit restaurant filter
// into the filter every listing path applies. A filter naming a restaurant
// the principal does not own is denied; no filter means "my restaurants".
func ResolveScope(p Principal, entity Entity, requested *Tenant) (Scope, Decision) {
	req := Request{Op: OpList, Entity: entity}
	if requested != nil {
		req.Scoped = true
		req.Tenants = []Tenant{*requested}
	}

	d := Decide(p, req)
	if !d.Allowed {
		return Scope{}, d
	}

	s := Scope{All: p.Superuser, OwnerID: p.UserID}
	if requested != nil {
		s.RestaurantID = requested.RestaurantID
	}
	return s, d
}

// OwnedOnly drops the superuser bypass of a scope without an explicit
// restaurant, so the result covers only the caller's own restaurants.
func (s Scope) OwnedOnly() Scope {
	if s.RestaurantID == 0 {
		s.All = false
	}
	return s
}
