package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodhub-api/apperror"
	"foodhub-api/events"
	"foodhub-api/idempotency"
	"foodhub-api/models"
	"foodhub-api/repository"
	"foodhub-api/statemachine"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderService struct {
	store  *repository.Store
	idem   idempotency.Store
	events *events.Emitter
	log    *logrus.Logger
}

func NewOrderService(store *repository.Store, idem idempotency.Store, emitter *events.Emitter, log *logrus.Logger) *OrderService {
	if idem == nil {
		idem = idempotency.NopStore{}
	}
	return &OrderService{store: store, idem: idem, events: emitter, log: log}
}

type CreateOrderIn struct {
	DeliveryAddress string               `json:"delivery_address" binding:"required,max=500"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"required"`
	IdempotencyKey  string               `json:"-" binding:"omitempty,max=255"`
}

type PaymentStatusIn struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
}

type DeliveryStatusIn struct {
	Status models.DeliveryStatus `json:"status" binding:"required"`
	Note   string                `json:"note" binding:"max=500"`
}

// CreateFromCart turns the customer's cart into an order and empties the cart, atomically.
// With an idempotency key, a retried request returns the order the first attempt created
// and reports replayed = true.
func (s *OrderService) CreateFromCart(ctx context.Context, customerID uint, in CreateOrderIn) (order *models.Order, replayed bool, err error) {
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if err := validateInput(in); err != nil {
		return nil, false, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, false, apperror.InvalidArgument("payment_method must be one of: CASH_ON_DELIVERY, CREDIT_CARD, DIGITAL_WALLET")
	}

	key := in.IdempotencyKey
	if key != "" {
		if existing, err := s.findByIdempotencyKey(ctx, customerID, key); err != nil || existing != nil {
			return existing, existing != nil, err
		}
		reserved, err := s.idem.Reserve(ctx, customerID, key)
		if err != nil {
			s.log.WithError(err).Warn("idempotency store unavailable, relying on database")
		} else if !reserved {
			existing, err := s.findByIdempotencyKey(ctx, customerID, key)
			if err != nil || existing != nil {
				return existing, existing != nil, err
			}
			return nil, false, apperror.Conflict("A request with this Idempotency-Key is already in progress")
		}
	}

	var orderID uint
	txErr := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		id, err := s.placeOrder(ctx, tx, customerID, in)
		orderID = id
		return err
	})
	if txErr != nil {
		if key != "" {
			if err := s.idem.Release(ctx, customerID, key); err != nil {
				s.log.WithError(err).Warn("failed to release idempotency key")
			}
			if errors.Is(txErr, gorm.ErrDuplicatedKey) {
				if existing, err := s.findByIdempotencyKey(ctx, customerID, key); err != nil || existing != nil {
					return existing, existing != nil, err
				}
			}
		}
		return nil, false, apperror.FromDB(txErr, "")
	}
	if key != "" {
		if err := s.idem.Complete(ctx, customerID, key, orderID); err != nil {
			s.log.WithError(err).Warn("failed to record idempotency key")
		}
	}

	order, err = s.store.FindOrderDetail(ctx, orderID)
	if err != nil {
		return nil, false, apperror.FromDB(err, "Order not found")
	}
	s.events.Emit(ctx, events.OrderCreated, order.ID, events.OrderCreatedPayload{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		ProviderID:  order.ProviderID,
		TotalAmount: order.TotalAmount.StringFixed(2),
		ItemCount:   len(order.Items),
	})
	return order, false, nil
}

func (s *OrderService) placeOrder(ctx context.Context, tx *repository.Store, customerID uint, in CreateOrderIn) (uint, error) {
	cart, err := tx.FindCartByCustomer(ctx, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperror.InvalidState("Cart is empty")
	}
	if err != nil {
		return 0, err
	}
	cart, err = tx.FindCartWithItems(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if len(cart.Items) == 0 {
		return 0, apperror.InvalidState("Cart is empty")
	}

	providerIDs := map[uint]struct{}{}
	for _, it := range cart.Items {
		if it.Meal == nil {
			return 0, apperror.InvalidState("A meal in your cart no longer exists")
		}
		if !it.Meal.IsAvailable {
			return 0, apperror.InvalidState(fmt.Sprintf("%s is currently unavailable", it.Meal.Name))
		}
		providerIDs[it.Meal.ProviderID] = struct{}{}
	}
	if len(providerIDs) > 1 {
		return 0, apperror.InvalidState("All items in cart must be from the same provider")
	}
	providerID := cart.Items[0].Meal.ProviderID

	provider, err := tx.LockProvider(ctx, providerID)
	if err != nil {
		return 0, apperror.FromDB(err, "Provider not found")
	}
	if !provider.IsOpen {
		return 0, apperror.InvalidState(provider.RestaurantName + " is currently closed")
	}

	itemsTotal := cartTotal(cart.Items)
	if itemsTotal.LessThan(provider.MinOrderAmount) {
		return 0, apperror.InvalidState(fmt.Sprintf("Minimum order amount is %s. Current total: %s",
			provider.MinOrderAmount.StringFixed(2), itemsTotal.StringFixed(2)))
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, models.OrderItem{
			MealID:    it.MealID,
			MealName:  it.Meal.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	order := &models.Order{
		CustomerID:      customerID,
		ProviderID:      providerID,
		TotalAmount:     itemsTotal.Add(provider.DeliveryFee),
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		DeliveryStatus:  models.StatusPlaced,
		Items:           items,
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		order.IdempotencyKey = &key
	}
	if err := tx.CreateOrder(ctx, order); err != nil {
		return 0, err
	}
	if err := tx.AppendStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID:   order.ID,
		Field:     models.FieldDelivery,
		ToStatus:  string(models.StatusPlaced),
		ChangedBy: customerID,
		Note:      "Order placed",
	}); err != nil {
		return 0, err
	}
	if err := tx.ClearCart(ctx, cart.ID); err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (s *OrderService) findByIdempotencyKey(ctx context.Context, customerID uint, key string) (*models.Order, error) {
	order, err := s.store.FindOrderByIdempotencyKey(ctx, customerID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return order, nil
}

// CustomerOrders lists the customer's orders, newest first
func (s *OrderService) CustomerOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders, err := s.store.ListOrdersByCustomer(ctx, customerID)
	return orders, apperror.FromDB(err, "")
}

// ProviderOrders lists the orders placed against the provider, newest first
func (s *OrderService) ProviderOrders(ctx context.Context, providerID uint) ([]models.Order, error) {
	orders, err := s.store.ListOrdersByProvider(ctx, providerID)
	return orders, apperror.FromDB(err, "")
}

// GetByID returns the order to either of its two parties
func (s *OrderService) GetByID(ctx context.Context, orderID, requesterID uint) (*models.Order, error) {
	order, err := s.store.FindOrderDetail(ctx, orderID)
	if err != nil {
		return nil, apperror.FromDB(err, "Order not found")
	}
	if order.CustomerID != requesterID && order.ProviderID != requesterID {
		return nil, apperror.Forbidden("Unauthorized access to this order")
	}
	return order, nil
}

// UpdatePaymentStatus lets the fulfilling provider set any payment status
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus, providerID uint) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperror.InvalidArgument("payment_status must be one of: PENDING, COMPLETED, FAILED")
	}

	var from models.PaymentStatus
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return apperror.FromDB(err, "Order not found")
		}
		if order.ProviderID != providerID {
			return apperror.Forbidden("Unauthorized to update this order")
		}
		from = order.PaymentStatus
		if from == status {
			return nil
		}
		if err := tx.SetPaymentStatus(ctx, orderID, status); err != nil {
			return err
		}
		return tx.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    orderID,
			Field:      models.FieldPayment,
			FromStatus: string(from),
			ToStatus:   string(status),
			ChangedBy:  providerID,
		})
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}

	if from != status {
		s.events.Emit(ctx, events.OrderPaymentStatusChanged, orderID, events.StatusChangedPayload{
			OrderID: orderID, ProviderID: providerID, From: string(from), To: string(status), ChangedBy: providerID,
		})
	}
	return s.detail(ctx, orderID)
}

// UpdateDeliveryStatus advances the order along PLACED → PREPARING → OUT_FOR_DELIVERY → DELIVERED
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, orderID uint, in DeliveryStatusIn, providerID uint) (*models.Order, error) {
	if !in.Status.Valid() {
		return nil, apperror.InvalidArgument("status must be one of: PLACED, PREPARING, OUT_FOR_DELIVERY, DELIVERED")
	}

	var from models.DeliveryStatus
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return apperror.FromDB(err, "Order not found")
		}
		if order.ProviderID != providerID {
			return apperror.Forbidden("Unauthorized to update this order")
		}
		from = order.DeliveryStatus
		if err := statemachine.CanTransition(from, in.Status, statemachine.ActorProvider); err != nil {
			return apperror.InvalidState(err.Error())
		}
		n, err := tx.SetDeliveryStatusIf(ctx, orderID, from, in.Status)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.InvalidState("Order status changed concurrently; reload and retry")
		}
		return tx.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    orderID,
			Field:      models.FieldDelivery,
			FromStatus: string(from),
			ToStatus:   string(in.Status),
			ChangedBy:  providerID,
			Note:       in.Note,
		})
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}

	s.events.Emit(ctx, events.OrderDeliveryStatusChanged, orderID, events.StatusChangedPayload{
		OrderID: orderID, ProviderID: providerID, From: string(from), To: string(in.Status), ChangedBy: providerID,
	})
	return s.detail(ctx, orderID)
}

// Cancel deletes the customer's order while its payment is not completed
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID uint) error {
	var providerID uint
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return apperror.FromDB(err, "Order not found")
		}
		if order.CustomerID != customerID {
			return apperror.Forbidden("Unauthorized to cancel this order")
		}
		if order.PaymentStatus == models.PaymentCompleted {
			return apperror.InvalidState("Cannot cancel a completed order")
		}
		providerID = order.ProviderID

		n, err := tx.DeleteCancellableOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if n == 0 {
			// payment completed between the read and the delete
			return apperror.InvalidState("Cannot cancel a completed order")
		}
		return nil
	})
	if err != nil {
		return apperror.FromDB(err, "")
	}

	s.events.Emit(ctx, events.OrderCancelled, orderID, events.OrderCancelledPayload{
		OrderID: orderID, CustomerID: customerID, ProviderID: providerID,
	})
	return nil
}

// ProviderStats aggregates every order placed against the provider
func (s *OrderService) ProviderStats(ctx context.Context, providerID uint) (*models.ProviderStats, error) {
	orders, err := s.store.ListOrdersForStats(ctx, providerID)
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}

	stats := &models.ProviderStats{
		TotalOrders:       len(orders),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		switch o.PaymentStatus {
		case models.PaymentPending:
			stats.PendingOrders++
		case models.PaymentCompleted:
			stats.CompletedOrders++
		case models.PaymentFailed:
			stats.FailedOrders++
		}
		for _, it := range o.Items {
			stats.TotalItemsSold += it.Quantity
		}
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TotalOrders))).Round(2)
	}
	return stats, nil
}

func (s *OrderService) detail(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.store.FindOrderDetail(ctx, orderID)
	if err != nil {
		return nil, apperror.FromDB(err, "Order not found")
	}
	return order, nil
}
