package models

import "time"

// Customer belongs to one restaurant. Email is optional and unique per
// restaurant only; NULL emails never collide.
type Customer struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_customers_restaurant_email,priority:1" json:"restaurant"`
	Restaurant   *Restaurant `json:"-"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Email        *string     `gorm:"size:254;uniqueIndex:idx_customers_restaurant_email,priority:2" json:"email"`
	CreatedAt    time.Time   `json:"created"`
	UpdatedAt    time.Time   `json:"modified"`
}
