package repository

import (
	"context"

	"foodhub-api/models"

	"gorm.io/gorm"
)

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Meal").
		Preload("Provider").
		Preload("Customer").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

// CreateOrder inserts the order together with its items
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.conn(ctx).Create(o).Error
}

func (s *Store) AppendStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	return s.conn(ctx).Create(h).Error
}

func (s *Store) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.forUpdate(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// FindOrderDetail loads the order with items, meals, both parties and its history
func (s *Store) FindOrderDetail(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := preloadOrder(s.conn(ctx)).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) FindOrderByIdempotencyKey(ctx context.Context, customerID uint, key string) (*models.Order, error) {
	var o models.Order
	err := preloadOrder(s.conn(ctx)).
		Where("customer_id = ? AND idempotency_key = ?", customerID, key).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := preloadOrder(s.conn(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, err
}

func (s *Store) ListOrdersByProvider(ctx context.Context, providerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := preloadOrder(s.conn(ctx)).
		Where("provider_id = ?", providerID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, err
}

// ListOrdersForStats loads a provider's orders with their items, nothing else
func (s *Store) ListOrdersForStats(ctx context.Context, providerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.conn(ctx).Preload("Items").Where("provider_id = ?", providerID).Find(&orders).Error
	return orders, err
}

func (s *Store) SetPaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) error {
	return s.conn(ctx).Model(&models.Order{}).Where("id = ?", orderID).
		Update("payment_status", status).Error
}

// SetDeliveryStatusIf moves the delivery status only if it still equals from.
// Zero rows affected means a concurrent writer got there first.
func (s *Store) SetDeliveryStatusIf(ctx context.Context, orderID uint, from, to models.DeliveryStatus) (int64, error) {
	res := s.conn(ctx).Model(&models.Order{}).
		Where("id = ? AND delivery_status = ?", orderID, from).
		Update("delivery_status", to)
	return res.RowsAffected, res.Error
}

// DeleteCancellableOrder removes history, items and finally the order itself,
// the last step only while the payment is not completed.
// Returns the rows removed from orders; zero means the order is no longer cancellable.
func (s *Store) DeleteCancellableOrder(ctx context.Context, orderID uint) (int64, error) {
	if err := s.conn(ctx).Where("order_id = ?", orderID).Delete(&models.OrderStatusHistory{}).Error; err != nil {
		return 0, err
	}
	if err := s.conn(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return 0, err
	}
	res := s.conn(ctx).
		Where("id = ? AND payment_status <> ?", orderID, models.PaymentCompleted).
		Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

func (s *Store) CountOrdersByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}
