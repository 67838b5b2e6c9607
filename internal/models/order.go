package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "Cash"
	PaymentCreditCard    PaymentMethod = "CreditCard"
	PaymentDebitCard     PaymentMethod = "DebitCard"
	PaymentMobilePayment PaymentMethod = "MobilePayment"
	PaymentBankTransfer  PaymentMethod = "BankTransfer"
	PaymentVoucher       PaymentMethod = "Voucher"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobilePayment, PaymentBankTransfer, PaymentVoucher:
		return true
	}
	return false
}

// Order amounts are stored with two fractional digits. Total must equal
// subtotal + tax - discount + tips.
type Order struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	RestaurantID  uint             `gorm:"index;not null" json:"restaurant"`
	CustomerID    *uint            `gorm:"index" json:"customer"`
	EmployeeID    uint             `gorm:"index;not null" json:"employee"`
	CustomerName  string           `gorm:"size:255" json:"customer_name"`
	Status        OrderStatus      `gorm:"size:12;not null;default:'Pending'" json:"status"`
	Subtotal      decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	Discount      *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount"`
	Tax           *decimal.Decimal `gorm:"type:numeric(5,2)" json:"tax"`
	Tips          *decimal.Decimal `gorm:"type:numeric(5,2)" json:"tips"`
	Total         decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"total"`
	PaymentMethod *PaymentMethod   `gorm:"size:16" json:"payment_method"`
	CreatedAt     time.Time        `gorm:"index" json:"created"`
	UpdatedAt     time.Time        `json:"modified"`

	Tables []OrderTable `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	Lines  []OrderLine  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (o *Order) TableIDs() []uint {
	ids := make([]uint, 0, len(o.Tables))
	for _, t := range o.Tables {
		ids = append(ids, t.TableID)
	}
	return ids
}

// OrderTable links an order to one of its tables. RestaurantID repeats the
// order's restaurant so the table reference can be checked by a composite
// foreign key.
type OrderTable struct {
	OrderID      uint `gorm:"primaryKey"`
	TableID      uint `gorm:"primaryKey;index"`
	RestaurantID uint `gorm:"not null"`
}

// OrderLine is one product within an order.
type OrderLine struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;uniqueIndex:idx_order_lines_order_product,priority:1" json:"order"`
	ProductID    uint      `gorm:"not null;index;uniqueIndex:idx_order_lines_order_product,priority:2" json:"product"`
	RestaurantID uint      `gorm:"not null" json:"-"`
	Quantity     uint      `gorm:"not null;check:chk_order_lines_quantity,quantity > 0" json:"quantity"`
	Product      *Product  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"modified"`
}
