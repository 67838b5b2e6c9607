package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductAvailable  ProductStatus = "Available"
	ProductOutOfStock ProductStatus = "OutOfStock"
)

func (s ProductStatus) Valid() bool {
	return s == ProductAvailable || s == ProductOutOfStock
}

// Product is shared between restaurants through ProductRestaurant rows.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null;check:chk_products_price,price > 0" json:"price"`
	Image     *string         `gorm:"size:255" json:"image"`
	Status    ProductStatus   `gorm:"size:12;not null;default:'Available'" json:"status"`
	CreatedAt time.Time       `json:"created"`
	UpdatedAt time.Time       `json:"modified"`

	Restaurants []ProductRestaurant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Categories  []Category          `gorm:"many2many:product_categories;constraint:OnDelete:CASCADE" json:"-"`
}

// RestaurantIDs lists the restaurants the product is assigned to. Requires
// Restaurants to be preloaded.
func (p *Product) RestaurantIDs() []uint {
	ids := make([]uint, 0, len(p.Restaurants))
	for _, r := range p.Restaurants {
		ids = append(ids, r.RestaurantID)
	}
	return ids
}

func (p *Product) CategoryIDs() []uint {
	ids := make([]uint, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// ProductRestaurant links a product to a restaurant. ProductName mirrors
// Product.Name so the (restaurant, name) pair can carry a unique index.
type ProductRestaurant struct {
	ProductID    uint   `gorm:"primaryKey"`
	RestaurantID uint   `gorm:"primaryKey;uniqueIndex:idx_product_restaurants_name,priority:1"`
	ProductName  string `gorm:"size:255;not null;uniqueIndex:idx_product_restaurants_name,priority:2"`
	CreatedAt    time.Time
}
