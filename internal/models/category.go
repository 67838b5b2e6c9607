package models

import "time"

// Category is shared by every restaurant.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_categories_name" json:"name"`
	Status    bool      `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}
