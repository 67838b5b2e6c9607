package models

import "time"

// Restaurant is the tenant root. Employees, tables, customers and orders
// are removed with it; product links are detached.
type Restaurant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user"`
	User        *User     `json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Address     string    `gorm:"type:text" json:"address"`
	PhoneNumber string    `gorm:"size:15" json:"phone_number"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"modified"`

	Employees []Employee          `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Tables    []Table             `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Customers []Customer          `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Orders    []Order             `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Products  []ProductRestaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
}

type EmployeeRole string

const (
	RoleManager EmployeeRole = "Manager"
	RoleWaiter  EmployeeRole = "Waiter"
	RoleChef    EmployeeRole = "Chef"
)

func (r EmployeeRole) Valid() bool {
	switch r {
	case RoleManager, RoleWaiter, RoleChef:
		return true
	}
	return false
}

type Employee struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	RestaurantID   uint         `gorm:"not null;uniqueIndex:idx_employees_restaurant_email,priority:1" json:"restaurant"`
	Restaurant     *Restaurant  `json:"-"`
	Name           string       `gorm:"size:255;not null" json:"name"`
	Email          string       `gorm:"size:254;not null;uniqueIndex:idx_employees_restaurant_email,priority:2" json:"email"`
	Role           EmployeeRole `gorm:"size:10;not null" json:"role"`
	ProfilePicture *string      `gorm:"size:255" json:"profile_picture"`
	CreatedAt      time.Time    `json:"created"`
	UpdatedAt      time.Time    `json:"modified"`
}

type TableStatus string

const (
	TableAvailable TableStatus = "Available"
	TableBusy      TableStatus = "Busy"
)

func (s TableStatus) Valid() bool {
	return s == TableAvailable || s == TableBusy
}

type Table struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_tables_restaurant_number,priority:1" json:"restaurant"`
	Restaurant   *Restaurant `json:"-"`
	TableNumber  uint        `gorm:"not null;uniqueIndex:idx_tables_restaurant_number,priority:2;check:chk_tables_table_number,table_number > 0" json:"table_number"`
	Capacity     uint        `gorm:"not null;check:chk_tables_capacity,capacity > 0" json:"capacity"`
	Status       TableStatus `gorm:"size:10;not null;default:'Available'" json:"status"`
	CreatedAt    time.Time   `json:"created"`
	UpdatedAt    time.Time   `json:"modified"`
}
