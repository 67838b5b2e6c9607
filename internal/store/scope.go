package store

import (
	"context"

	"gorm.io/gorm"

	"pos-backend/internal/policy"
)

var tables = map[policy.Entity]string{
	policy.EntityRestaurant: "restaurants",
	policy.EntityEmployee:   "employees",
	policy.EntityTable:      "tables",
	policy.EntityCustomer:   "customers",
	policy.EntityCategory:   "categories",
	policy.EntityProduct:    "products",
	policy.EntityOrder:      "orders",
	policy.EntityOrderLine:  "order_lines",
	policy.EntityReport:     "orders",
}

func tableOf(e policy.Entity) string {
	return tables[e]
}

// Scoped starts a query on entity's table restricted to scope.
func (s *Store) Scoped(ctx context.Context, entity policy.Entity, scope policy.Scope) *gorm.DB {
	return ApplyScope(s.conn(ctx).Table(tableOf(entity)), entity, scope)
}

// ApplyScope adds the owner and restaurant predicates of scope for entity.
// Categories are shared and only ever filtered to active ones for callers
// outside staff.
func ApplyScope(q *gorm.DB, entity policy.Entity, scope policy.Scope) *gorm.DB {
	switch entity {
	case policy.EntityCategory:
		return q
	case policy.EntityRestaurant:
		if scope.RestaurantID != 0 {
			q = q.Where("restaurants.id = ?", scope.RestaurantID)
		}
		if !scope.All {
			q = q.Where("restaurants.user_id = ?", scope.OwnerID)
		}
		return q
	case policy.EntityProduct:
		if scope.RestaurantID != 0 {
			q = q.Where("products.id IN (?)",
				q.Session(&gorm.Session{NewDB: true}).
					Table("product_restaurants").
					Select("product_id").
					Where("restaurant_id = ?", scope.RestaurantID))
		}
		if !scope.All {
			q = q.Where("products.id IN (?)",
				q.Session(&gorm.Session{NewDB: true}).
					Table("product_restaurants").
					Select("product_restaurants.product_id").
					Joins("JOIN restaurants ON restaurants.id = product_restaurants.restaurant_id").
					Where("restaurants.user_id = ?", scope.OwnerID))
		}
		return q
	}

	// Everything else carries its own restaurant_id.
	col := tableOf(entity) + ".restaurant_id"
	if scope.RestaurantID != 0 {
		q = q.Where(col+" = ?", scope.RestaurantID)
	}
	if !scope.All {
		q = q.Where(col+" IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Table("restaurants").
				Select("id").
				Where("user_id = ?", scope.OwnerID))
	}
	return q
}
