package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment axis of an order, set by the provider
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentDigitalWallet  PaymentMethod = "DIGITAL_WALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCreditCard, PaymentDigitalWallet:
		return true
	}
	return false
}

// DeliveryStatus represents the fulfillment states of a food order
type DeliveryStatus string

const (
	StatusPlaced         DeliveryStatus = "PLACED"
	StatusPreparing      DeliveryStatus = "PREPARING"
	StatusOutForDelivery DeliveryStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      DeliveryStatus = "DELIVERED"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// Order is an immutable snapshot of a cart; only the two status axes change after creation.
type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	CustomerID      uint                 `json:"customer_id" gorm:"not null;index;uniqueIndex:idx_order_idempotency"`
	Customer        *User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ProviderID      uint                 `json:"provider_id" gorm:"not null;index"`
	Provider        *Provider            `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	TotalAmount     decimal.Decimal      `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	DeliveryAddress string               `json:"delivery_address" gorm:"not null"`
	PaymentMethod   PaymentMethod        `json:"payment_method" gorm:"type:varchar(30);not null"`
	PaymentStatus   PaymentStatus        `json:"payment_status" gorm:"type:varchar(20);not null;index"`
	DeliveryStatus  DeliveryStatus       `json:"delivery_status" gorm:"type:varchar(30);not null"`
	IdempotencyKey  *string              `json:"-" gorm:"type:varchar(255);uniqueIndex:idx_order_idempotency"`
	Items           []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory   []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	MealID    uint            `json:"meal_id" gorm:"not null"`
	Meal      *Meal           `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	MealName  string          `json:"meal_name"` // snapshot name
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"` // snapshot price at time of order
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
}

// StatusField names which axis a history row belongs to
type StatusField string

const (
	FieldPayment  StatusField = "payment"
	FieldDelivery StatusField = "delivery"
)

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	Field      StatusField `json:"field" gorm:"type:varchar(20);not null"`
	FromStatus string      `json:"from_status"`
	ToStatus   string      `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ProviderStats aggregates a provider's orders
type ProviderStats struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	PendingOrders     int             `json:"pending_orders"`
	CompletedOrders   int             `json:"completed_orders"`
	FailedOrders      int             `json:"failed_orders"`
	TotalItemsSold    int             `json:"total_items_sold"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// All lists every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Provider{},
		&Category{},
		&Meal{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
	}
}
