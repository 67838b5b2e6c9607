package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pos-backend/internal/models"
	"pos-backend/internal/policy"
)

// exists reports whether q matches at least one row.
func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, read(err)
	}
	return n > 0, nil
}

func (s *Store) EmployeeEmailTaken(ctx context.Context, restaurantID uint, email string, excludeID uint) (bool, error) {
	return exists(s.conn(ctx).Model(&models.Employee{}).
		Where("restaurant_id = ? AND email = ? AND id <> ?", restaurantID, email, excludeID))
}

func (s *Store) TableNumberTaken(ctx context.Context, restaurantID, number, excludeID uint) (bool, error) {
	return exists(s.conn(ctx).Model(&models.Table{}).
		Where("restaurant_id = ? AND table_number = ? AND id <> ?", restaurantID, number, excludeID))
}

func (s *Store) CustomerEmailTaken(ctx context.Context, restaurantID uint, email string, excludeID uint) (bool, error) {
	return exists(s.conn(ctx).Model(&models.Customer{}).
		Where("restaurant_id = ? AND email = ? AND id <> ?", restaurantID, email, excludeID))
}

func (s *Store) ProductNameConflicts(ctx context.Context, restaurantIDs []uint, name string, excludeID uint) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&models.ProductRestaurant{}).
		Where("restaurant_id IN ? AND product_name = ? AND product_id <> ?", restaurantIDs, name, excludeID).
		Order("restaurant_id").
		Distinct().
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		return nil, read(err)
	}
	return ids, nil
}

func (s *Store) OrderLineExists(ctx context.Context, orderID, productID, excludeID uint) (bool, error) {
	return exists(s.conn(ctx).Model(&models.OrderLine{}).
		Where("order_id = ? AND product_id = ? AND id <> ?", orderID, productID, excludeID))
}

// find loads the row with the given id into a new T, or returns nil.
func find[T any](ctx context.Context, s *Store, id uint, preload ...string) (*T, error) {
	q := s.conn(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	var v T
	err := q.Take(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, read(err)
	}
	return &v, nil
}

func (s *Store) FindTable(ctx context.Context, id uint) (*models.Table, error) {
	return find[models.Table](ctx, s, id)
}

func (s *Store) FindEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	return find[models.Employee](ctx, s, id)
}

func (s *Store) FindCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return find[models.Customer](ctx, s, id)
}

func (s *Store) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	return find[models.Order](ctx, s, id)
}

func (s *Store) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	return find[models.Product](ctx, s, id, "Restaurants")
}

func (s *Store) FindRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	return find[models.Restaurant](ctx, s, id)
}

// Tenants resolves the owners of the given restaurants. Unknown ids come
// back with Found unset, in input order.
func (s *Store) Tenants(ctx context.Context, ids ...uint) ([]policy.Tenant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []models.Restaurant
	if err := s.conn(ctx).Select("id", "user_id").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, read(err)
	}
	owners := make(map[uint]uint, len(rows))
	for _, r := range rows {
		owners[r.ID] = r.UserID
	}

	out := make([]policy.Tenant, 0, len(ids))
	for _, id := range ids {
		owner, ok := owners[id]
		out = append(out, policy.Tenant{RestaurantID: id, OwnerID: owner, Found: ok})
	}
	return out, nil
}

// FindEmployeeByEmail looks up an employee of a restaurant by exact email.
func (s *Store) FindEmployeeByEmail(ctx context.Context, restaurantID uint, email string) (*models.Employee, error) {
	var rows []models.Employee
	err := s.conn(ctx).
		Where("restaurant_id = ? AND email = ?", restaurantID, email).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, read(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
