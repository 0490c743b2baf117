package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is created lazily on the customer's first addition; there is never more than one per customer.
type Cart struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CustomerID uint       `json:"customer_id" gorm:"uniqueIndex;not null"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem holds at most one line per (cart, meal). Subtotal is always Quantity * UnitPrice.
type CartItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	CartID    uint            `json:"cart_id" gorm:"not null;uniqueIndex:idx_cart_meal"`
	MealID    uint            `json:"meal_id" gorm:"not null;uniqueIndex:idx_cart_meal"`
	Meal      *Meal           `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MaxLineQuantity caps a single cart line
const MaxLineQuantity = 999

// LineTotal is the subtotal a line with this quantity and unit price must carry
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// CartView is a cart plus its derived total
type CartView struct {
	Cart
	TotalPrice decimal.Decimal `json:"total_price"`
}
