package repository

import (
	"context"
	"errors"

	"foodhub-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (s *Store) FindCartByCustomer(ctx context.Context, customerID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := s.forUpdate(ctx).Where("customer_id = ?", customerID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindCartWithItems loads the cart and every line joined to its meal, oldest line first
func (s *Store) FindCartWithItems(ctx context.Context, customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Meal").
		Where("customer_id = ?", customerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	return s.conn(ctx).Create(cart).Error
}

func (s *Store) FindCartLine(ctx context.Context, cartID, mealID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.forUpdate(ctx).Where("cart_id = ? AND meal_id = ?", cartID, mealID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindCartItem is scoped to the cart so one customer can never reach another's line
func (s *Store) FindCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.forUpdate(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) FindCartItemWithMeal(ctx context.Context, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.conn(ctx).Preload("Meal").First(&item, itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return s.conn(ctx).Create(item).Error
}

// ErrQuantityLimit is returned when an increment would push a line past its cap
var ErrQuantityLimit = errors.New("cart line quantity limit reached")

// IncrementCartItem adds delta to the stored quantity in SQL and re-prices the line.
// The row is left untouched when the new quantity would exceed limit.
// Must run inside a transaction: the subtotal is derived from the incremented row.
func (s *Store) IncrementCartItem(ctx context.Context, itemID uint, delta, limit int, unitPrice decimal.Decimal) (*models.CartItem, error) {
	res := s.conn(ctx).Model(&models.CartItem{}).
		Where("id = ? AND quantity <= ?", itemID, limit-delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"unit_price": unitPrice,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrQuantityLimit
	}

	var item models.CartItem
	if err := s.conn(ctx).First(&item, itemID).Error; err != nil {
		return nil, err
	}
	item.Subtotal = models.LineTotal(item.Quantity, item.UnitPrice)
	if err := s.conn(ctx).Model(&item).Update("subtotal", item.Subtotal).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, itemID uint, quantity int, subtotal decimal.Decimal) error {
	return s.conn(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).
		Updates(map[string]interface{}{"quantity": quantity, "subtotal": subtotal}).Error
}

func (s *Store) DeleteCartItem(ctx context.Context, cartID, itemID uint) (int64, error) {
	res := s.conn(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (s *Store) ClearCart(ctx context.Context, cartID uint) error {
	return s.conn(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (s *Store) DeleteCartOf(ctx context.Context, customerID uint) error {
	cartIDs := s.conn(ctx).Model(&models.Cart{}).Select("id").Where("customer_id = ?", customerID)
	if err := s.conn(ctx).Where("cart_id IN (?)", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return s.conn(ctx).Where("customer_id = ?", customerID).Delete(&models.Cart{}).Error
}
