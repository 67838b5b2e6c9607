package store

import (
	"context"

	"gorm.io/gorm/clause"

	"pos-backend/internal/models"
)

// CreateProduct inserts p and links it to its restaurants and categories.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product, restaurantIDs, categoryIDs []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Create(ctx, p); err != nil {
			return err
		}
		if err := tx.linkRestaurants(ctx, p, restaurantIDs); err != nil {
			return err
		}
		return tx.setCategories(ctx, p, categoryIDs)
	})
}

// UpdateProduct saves p. Nil id slices leave the corresponding links
// untouched; restaurant links are renamed when the product name changed.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product, restaurantIDs, categoryIDs []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Save(ctx, p); err != nil {
			return err
		}

		if restaurantIDs != nil {
			err := tx.conn(ctx).
				Where("product_id = ? AND restaurant_id NOT IN ?", p.ID, restaurantIDs).
				Delete(&models.ProductRestaurant{}).Error
			if err != nil {
				return write(err)
			}
		}

		err := tx.conn(ctx).Model(&models.ProductRestaurant{}).
			Where("product_id = ? AND product_name <> ?", p.ID, p.Name).
			Update("product_name", p.Name).Error
		if err != nil {
			return write(err)
		}

		if restaurantIDs != nil {
			if err := tx.linkRestaurants(ctx, p, restaurantIDs); err != nil {
				return err
			}
		}
		if categoryIDs != nil {
			return tx.setCategories(ctx, p, categoryIDs)
		}
		return nil
	})
}

func (s *Store) linkRestaurants(ctx context.Context, p *models.Product, restaurantIDs []uint) error {
	if len(restaurantIDs) == 0 {
		return nil
	}
	links := make([]models.ProductRestaurant, 0, len(restaurantIDs))
	for _, id := range restaurantIDs {
		links = append(links, models.ProductRestaurant{ProductID: p.ID, RestaurantID: id, ProductName: p.Name})
	}
	err := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}, {Name: "restaurant_id"}}, DoNothing: true}).
		Create(&links).Error
	return write(err)
}

// setCategories rewrites the product_categories rows of p. The join table
// is written directly so unknown category ids fail on the foreign key
// instead of being inserted as empty categories.
func (s *Store) setCategories(ctx context.Context, p *models.Product, categoryIDs []uint) error {
	if err := s.conn(ctx).Exec("DELETE FROM product_categories WHERE product_id = ?", p.ID).Error; err != nil {
		return write(err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		rows = append(rows, map[string]any{"product_id": p.ID, "category_id": id})
	}
	return write(s.conn(ctx).Table("product_categories").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error)
}

// CreateOrder inserts o together with its table links.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order, tableIDs []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Create(ctx, o); err != nil {
			return err
		}
		return tx.linkTables(ctx, o, tableIDs)
	})
}

// UpdateOrder saves o and, when tableIDs is not nil, replaces its tables.
func (s *Store) UpdateOrder(ctx context.Context, o *models.Order, tableIDs []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Save(ctx, o); err != nil {
			return err
		}
		if tableIDs == nil {
			return nil
		}
		if err := tx.conn(ctx).Where("order_id = ?", o.ID).Delete(&models.OrderTable{}).Error; err != nil {
			return write(err)
		}
		return tx.linkTables(ctx, o, tableIDs)
	})
}

func (s *Store) linkTables(ctx context.Context, o *models.Order, tableIDs []uint) error {
	o.Tables = o.Tables[:0]
	if len(tableIDs) == 0 {
		return nil
	}
	for _, id := range tableIDs {
		o.Tables = append(o.Tables, models.OrderTable{OrderID: o.ID, TableID: id, RestaurantID: o.RestaurantID})
	}
	return write(s.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&o.Tables).Error)
}
