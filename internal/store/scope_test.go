package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pos-backend/internal/policy"
)

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=pos_test"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func scopedSQL(t *testing.T, entity policy.Entity, scope policy.Scope) string {
	db := dryRun(t)
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []map[string]any
		return ApplyScope(tx.Table(tableOf(entity)), entity, scope).Find(&rows)
	})
}

func TestApplyScopeOwner(t *testing.T) {
	sql := scopedSQL(t, policy.EntityEmployee, policy.Scope{OwnerID: 7})
	assert.Contains(t, sql, "employees.restaurant_id IN (SELECT id FROM")
	assert.Contains(t, sql, "user_id = 7")
}

func TestApplyScopeRestaurantFilter(t *testing.T) {
	sql := scopedSQL(t, policy.EntityOrder, policy.Scope{OwnerID: 7, RestaurantID: 3})
	assert.Contains(t, sql, "orders.restaurant_id = 3")
	assert.Contains(t, sql, "user_id = 7")
}

func TestApplyScopeSuperuser(t *testing.T) {
	sql := scopedSQL(t, policy.EntityTable, policy.Scope{All: true, OwnerID: 1})
	assert.NotContains(t, sql, "user_id")
	assert.NotContains(t, sql, "WHERE")
}

func TestApplyScopeProductsUseLinks(t *testing.T) {
	sql := scopedSQL(t, policy.EntityProduct, policy.Scope{OwnerID: 7, RestaurantID: 3})
	assert.Contains(t, sql, "product_restaurants")
	assert.Contains(t, sql, "restaurant_id = 3")
	assert.Contains(t, sql, "restaurants.user_id = 7")
}

func TestApplyScopeCategoriesUnfiltered(t *testing.T) {
	sql := scopedSQL(t, policy.EntityCategory, policy.Scope{OwnerID: 7})
	assert.NotContains(t, sql, "WHERE")
}

func TestApplyScopeRestaurants(t *testing.T) {
	sql := scopedSQL(t, policy.EntityRestaurant, policy.Scope{OwnerID: 7})
	assert.Contains(t, sql, "restaurants.user_id = 7")
}
