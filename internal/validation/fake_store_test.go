package validation

import (
	"context"

	"pos-backend/internal/models"
)

// memStore is an in-memory Store. Slices hold the rows; lookups scan them.
type memStore struct {
	employees []models.Employee
	tables    []models.Table
	customers []models.Customer
	products  []models.Product
	orders    []models.Order
	lines     []models.OrderLine
}

func (m *memStore) EmployeeEmailTaken(_ context.Context, restaurantID uint, email string, excludeID uint) (bool, error) {
	for _, e := range m.employees {
		if e.RestaurantID == restaurantID && e.Email == email && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) TableNumberTaken(_ context.Context, restaurantID, number, excludeID uint) (bool, error) {
	for _, t := range m.tables {
		if t.RestaurantID == restaurantID && t.TableNumber == number && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CustomerEmailTaken(_ context.Context, restaurantID uint, email string, excludeID uint) (bool, error) {
	for _, c := range m.customers {
		if c.RestaurantID == restaurantID && c.Email != nil && *c.Email == email && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ProductNameConflicts(_ context.Context, restaurantIDs []uint, name string, excludeID uint) ([]uint, error) {
	var out []uint
	for _, rid := range restaurantIDs {
	products:
		for _, p := range m.products {
			if p.ID == excludeID || p.Name != name {
				continue
			}
			for _, id := range p.RestaurantIDs() {
				if id == rid {
					out = append(out, rid)
					break products
				}
			}
		}
	}
	return out, nil
}

func (m *memStore) OrderLineExists(_ context.Context, orderID, productID, excludeID uint) (bool, error) {
	for _, l := range m.lines {
		if l.OrderID == orderID && l.ProductID == productID && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindTable(_ context.Context, id uint) (*models.Table, error) {
	for i := range m.tables {
		if m.tables[i].ID == id {
			return &m.tables[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) FindEmployee(_ context.Context, id uint) (*models.Employee, error) {
	for i := range m.employees {
		if m.employees[i].ID == id {
			return &m.employees[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) FindCustomer(_ context.Context, id uint) (*models.Customer, error) {
	for i := range m.customers {
		if m.customers[i].ID == id {
			return &m.customers[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) FindOrder(_ context.Context, id uint) (*models.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) FindProduct(_ context.Context, id uint) (*models.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, nil
}

func product(id uint, name string, status models.ProductStatus, restaurants ...uint) models.Product {
	p := models.Product{ID: id, Name: name, Status: status}
	for _, r := range restaurants {
		p.Restaurants = append(p.Restaurants, models.ProductRestaurant{ProductID: id, RestaurantID: r, ProductName: name})
	}
	return p
}
