package services

import (
	"context"
	"errors"
	"testing"

	"foodhub-api/apperror"
	"foodhub-api/events"
	"foodhub-api/models"
	"foodhub-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockIdempotency struct {
	mock.Mock
}

func (m *mockIdempotency) Reserve(ctx context.Context, customerID uint, key string) (bool, error) {
	args := m.Called(ctx, customerID, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotency) Complete(ctx context.Context, customerID uint, key string, orderID uint) error {
	return m.Called(ctx, customerID, key, orderID).Error(0)
}

func (m *mockIdempotency) Release(ctx context.Context, customerID uint, key string) error {
	return m.Called(ctx, customerID, key).Error(0)
}

func TestCreateFromCart_TotalIncludesDeliveryFee(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "10", "2")
	ctx := context.Background()

	f.add(t, m.customer.ID, m.mealA.ID, 2)
	f.add(t, m.customer.ID, m.mealB.ID, 1)

	order, replayed, err := f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	require.NoError(t, err)
	assert.False(t, replayed)

	assert.True(t, order.TotalAmount.Equal(testutil.Price("15")), "total was %s", order.TotalAmount)
	assert.Equal(t, m.provider.ID, order.ProviderID)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, models.StatusPlaced, order.DeliveryStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Meal A", order.Items[0].MealName)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Subtotal.Equal(testutil.Price("10")))
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, string(models.StatusPlaced), order.StatusHistory[0].ToStatus)

	view, err := f.cart.GetCart(ctx, m.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	assert.Equal(t, []string{events.OrderCreated}, f.published.types())
}

func TestCreateFromCart_BelowMinimumKeepsCart(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "20", "2")
	ctx := context.Background()

	f.add(t, m.customer.ID, m.mealA.ID, 2)
	f.add(t, m.customer.ID, m.mealB.ID, 1)

	_, _, err := f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	assertKind(t, err, apperror.KindInvalidState)
	assert.Contains(t, err.Error(), "Minimum order amount is 20.00. Current total: 13.00")

	view, err := f.cart.GetCart(ctx, m.customer.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Zero(t, f.countOrders(t))
	assert.Empty(t, f.published.types())
}

func TestCreateFromCart_AtMinimumSucceeds(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "13", "0")

	f.add(t, m.customer.ID, m.mealA.ID, 2)
	f.add(t, m.customer.ID, m.mealB.ID, 1)

	order, _, err := f.orders.CreateFromCart(context.Background(), m.customer.ID, placeIn())
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(testutil.Price("13")))
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()

	_, _, err := f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	assertKind(t, err, apperror.KindInvalidState)

	f.add(t, m.customer.ID, m.mealA.ID, 1)
	require.NoError(t, f.cart.Clear(ctx, m.customer.ID))

	_, _, err = f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	assertKind(t, err, apperror.KindInvalidState)
	assert.Zero(t, f.countOrders(t))
}

func TestCreateFromCart_MixedProviders(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	other := testutil.CreateProvider(t, f.db, "Pizza Place", "0", "0")
	pizza := testutil.CreateMeal(t, f.db, other.ID, m.mealA.CategoryID, "Margherita", "9.00")

	f.add(t, m.customer.ID, m.mealA.ID, 1)
	f.add(t, m.customer.ID, pizza.ID, 1)

	_, _, err := f.orders.CreateFromCart(context.Background(), m.customer.ID, placeIn())
	assertKind(t, err, apperror.KindInvalidState)
	assert.Contains(t, err.Error(), "same provider")
	assert.Zero(t, f.countOrders(t))
}

func TestCreateFromCart_ClosedProviderOrUnavailableMeal(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()
	f.add(t, m.customer.ID, m.mealA.ID, 1)

	require.NoError(t, f.db.Model(&models.Provider{}).Where("id = ?", m.provider.ID).Update("is_open", false).Error)
	_, _, err := f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	assertKind(t, err, apperror.KindInvalidState)
	assert.Contains(t, err.Error(), "currently closed")

	require.NoError(t, f.db.Model(&models.Provider{}).Where("id = ?", m.provider.ID).Update("is_open", true).Error)
	require.NoError(t, f.db.Model(&models.Meal{}).Where("id = ?", m.mealA.ID).Update("is_available", false).Error)
	_, _, err = f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	assertKind(t, err, apperror.KindInvalidState)
	assert.Zero(t, f.countOrders(t))
}

func TestCreateFromCart_ClearFailureRollsBackOrder(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()
	f.add(t, m.customer.ID, m.mealA.ID, 2)

	diskFull := errors.New("disk full")
	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_cart_clear", func(db *gorm.DB) {
		if db.Statement.Table == "cart_items" {
			_ = db.AddError(diskFull)
		}
	}))

	_, _, err := f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	require.ErrorIs(t, err, diskFull)

	assert.Zero(t, f.countOrders(t))
	var history int64
	require.NoError(t, f.db.Model(&models.OrderStatusHistory{}).Count(&history).Error)
	assert.Zero(t, history)
	view, err := f.cart.GetCart(ctx, m.customer.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Empty(t, f.published.types())
}

func TestCreateFromCart_InvalidInput(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	ctx := context.Background()

	_, _, err := f.orders.CreateFromCart(ctx, m.customer.ID, CreateOrderIn{PaymentMethod: models.PaymentCreditCard})
	assertKind(t, err, apperror.KindInvalidArgument)

	_, _, err = f.orders.CreateFromCart(ctx, m.customer.ID, CreateOrderIn{DeliveryAddress: "x", PaymentMethod: "BARTER"})
	assertKind(t, err, apperror.KindInvalidArgument)
}

func TestCreateFromCart_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	ctx := context.Background()
	f.add(t, m.customer.ID, m.mealA.ID, 1)

	in := placeIn()
	in.IdempotencyKey = "checkout-1"

	first, replayed, err := f.orders.CreateFromCart(ctx, m.customer.ID, in)
	require.NoError(t, err)
	assert.False(t, replayed)

	again, replayed, err := f.orders.CreateFromCart(ctx, m.customer.ID, in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(1), f.countOrders(t))
	assert.Len(t, f.published.types(), 1)
}

func TestCreateFromCart_KeyInFlightConflicts(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	f.add(t, m.customer.ID, m.mealA.ID, 1)

	idem := &mockIdempotency{}
	idem.On("Reserve", mock.Anything, m.customer.ID, "k1").Return(false, nil)
	svc := NewOrderService(f.store, idem, nil, testutil.Logger())

	in := placeIn()
	in.IdempotencyKey = "k1"
	_, _, err := svc.CreateFromCart(context.Background(), m.customer.ID, in)
	assertKind(t, err, apperror.KindConflict)
	assert.Zero(t, f.countOrders(t))
	idem.AssertExpectations(t)
}

func TestCreateFromCart_IdempotencyStoreDownFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")
	f.add(t, m.customer.ID, m.mealA.ID, 1)

	idem := &mockIdempotency{}
	idem.On("Reserve", mock.Anything, m.customer.ID, "k2").Return(false, errors.New("connection refused"))
	idem.On("Complete", mock.Anything, m.customer.ID, "k2", mock.AnythingOfType("uint")).Return(errors.New("connection refused"))
	svc := NewOrderService(f.store, idem, nil, testutil.Logger())

	in := placeIn()
	in.IdempotencyKey = "k2"
	order, replayed, err := svc.CreateFromCart(context.Background(), m.customer.ID, in)
	require.NoError(t, err)
	assert.False(t, replayed)
	require.NotNil(t, order.IdempotencyKey)
	assert.Equal(t, "k2", *order.IdempotencyKey)
	idem.AssertExpectations(t)
}

func TestCreateFromCart_FailureReleasesKey(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "0")

	idem := &mockIdempotency{}
	idem.On("Reserve", mock.Anything, m.customer.ID, "k3").Return(true, nil)
	idem.On("Release", mock.Anything, m.customer.ID, "k3").Return(nil)
	svc := NewOrderService(f.store, idem, nil, testutil.Logger())

	in := placeIn()
	in.IdempotencyKey = "k3"
	_, _, err := svc.CreateFromCart(context.Background(), m.customer.ID, in)
	assertKind(t, err, apperror.KindInvalidState)
	idem.AssertExpectations(t)
}

func placeOrder(t *testing.T, f *fixture, m menu) *models.Order {
	t.Helper()
	f.add(t, m.customer.ID, m.mealA.ID, 2)
	f.add(t, m.customer.ID, m.mealB.ID, 1)
	order, _, err := f.orders.CreateFromCart(context.Background(), m.customer.ID, placeIn())
	require.NoError(t, err)
	return order
}

func TestGetByID_OnlyParties(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	order := placeOrder(t, f, m)
	ctx := context.Background()

	_, err := f.orders.GetByID(ctx, order.ID, m.customer.ID)
	require.NoError(t, err)
	_, err = f.orders.GetByID(ctx, order.ID, m.provider.ID)
	require.NoError(t, err)

	stranger := testutil.CreateUser(t, f.db, "eve@example.com", models.RoleCustomer)
	_, err = f.orders.GetByID(ctx, order.ID, stranger.ID)
	assertKind(t, err, apperror.KindForbidden)

	_, err = f.orders.GetByID(ctx, order.ID+100, m.customer.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	ctx := context.Background()
	first := placeOrder(t, f, m)
	second := placeOrder(t, f, m)

	mine, err := f.orders.CustomerOrders(ctx, m.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	theirs, err := f.orders.ProviderOrders(ctx, m.provider.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 2)
}

func TestUpdateDeliveryStatus_FollowsStateMachine(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	order := placeOrder(t, f, m)
	ctx := context.Background()

	_, err := f.orders.UpdateDeliveryStatus(ctx, order.ID, DeliveryStatusIn{Status: models.StatusOutForDelivery}, m.provider.ID)
	assertKind(t, err, apperror.KindInvalidState)

	_, err = f.orders.UpdateDeliveryStatus(ctx, order.ID, DeliveryStatusIn{Status: "COOKING"}, m.provider.ID)
	assertKind(t, err, apperror.KindInvalidArgument)

	for _, next := range []models.DeliveryStatus{models.StatusPreparing, models.StatusOutForDelivery, models.StatusDelivered} {
		updated, err := f.orders.UpdateDeliveryStatus(ctx, order.ID, DeliveryStatusIn{Status: next, Note: "ok"}, m.provider.ID)
		require.NoError(t, err)
		assert.Equal(t, next, updated.DeliveryStatus)
	}

	_, err = f.orders.UpdateDeliveryStatus(ctx, order.ID, DeliveryStatusIn{Status: models.StatusPlaced}, m.provider.ID)
	assertKind(t, err, apperror.KindInvalidState)

	detail, err := f.orders.GetByID(ctx, order.ID, m.customer.ID)
	require.NoError(t, err)
	assert.Len(t, detail.StatusHistory, 4)
}

func TestUpdateDeliveryStatus_OtherProviderForbidden(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	order := placeOrder(t, f, m)
	other := testutil.CreateProvider(t, f.db, "Pizza Place", "0", "0")

	_, err := f.orders.UpdateDeliveryStatus(context.Background(), order.ID, DeliveryStatusIn{Status: models.StatusPreparing}, other.ID)
	assertKind(t, err, apperror.KindForbidden)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	order := placeOrder(t, f, m)
	ctx := context.Background()

	_, err := f.orders.UpdatePaymentStatus(ctx, order.ID, "REFUNDED", m.provider.ID)
	assertKind(t, err, apperror.KindInvalidArgument)

	_, err = f.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentCompleted, m.customer.ID)
	assertKind(t, err, apperror.KindForbidden)

	updated, err := f.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentCompleted, m.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, updated.PaymentStatus)
	assert.Len(t, updated.StatusHistory, 2)

	// unchanged status writes no history and emits nothing
	updated, err = f.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentCompleted, m.provider.ID)
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, []string{events.OrderCreated, events.OrderPaymentStatusChanged}, f.published.types())
}

func TestCancel_CompletedOrderIsKept(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	order := placeOrder(t, f, m)
	ctx := context.Background()

	_, err := f.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentCompleted, m.provider.ID)
	require.NoError(t, err)

	assertKind(t, f.orders.Cancel(ctx, order.ID, m.customer.ID), apperror.KindInvalidState)

	kept, err := f.store.FindOrderDetail(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Items, 2)
	assert.Len(t, kept.StatusHistory, 2)
}

func TestCancel_PendingAndFailedOrders(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	ctx := context.Background()

	pending := placeOrder(t, f, m)
	failed := placeOrder(t, f, m)
	_, err := f.orders.UpdatePaymentStatus(ctx, failed.ID, models.PaymentFailed, m.provider.ID)
	require.NoError(t, err)

	stranger := testutil.CreateUser(t, f.db, "eve@example.com", models.RoleCustomer)
	assertKind(t, f.orders.Cancel(ctx, pending.ID, stranger.ID), apperror.KindForbidden)

	require.NoError(t, f.orders.Cancel(ctx, pending.ID, m.customer.ID))
	require.NoError(t, f.orders.Cancel(ctx, failed.ID, m.customer.ID))
	assert.Zero(t, f.countOrders(t))

	var items int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)

	assertKind(t, f.orders.Cancel(ctx, pending.ID, m.customer.ID), apperror.KindNotFound)
	assert.Contains(t, f.published.types(), events.OrderCancelled)
}

func TestProviderStats_NoOrders(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")

	stats, err := f.orders.ProviderStats(context.Background(), m.provider.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.True(t, stats.AverageOrderValue.IsZero())
}

func TestProviderStats_Aggregates(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	ctx := context.Background()

	first := placeOrder(t, f, m)
	placeOrder(t, f, m)
	f.add(t, m.customer.ID, m.mealB.ID, 1)
	third, _, err := f.orders.CreateFromCart(ctx, m.customer.ID, placeIn())
	require.NoError(t, err)

	_, err = f.orders.UpdatePaymentStatus(ctx, first.ID, models.PaymentCompleted, m.provider.ID)
	require.NoError(t, err)
	_, err = f.orders.UpdatePaymentStatus(ctx, third.ID, models.PaymentFailed, m.provider.ID)
	require.NoError(t, err)

	stats, err := f.orders.ProviderStats(ctx, m.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.FailedOrders)
	assert.Equal(t, 7, stats.TotalItemsSold)
	// 15 + 15 + 5
	assert.True(t, stats.TotalRevenue.Equal(testutil.Price("35")), "revenue was %s", stats.TotalRevenue)
	assert.True(t, stats.AverageOrderValue.Equal(testutil.Price("11.67")), "average was %s", stats.AverageOrderValue)
}

func TestCreateFromCart_DeletedMealKeepsOrderSnapshot(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "0", "2")
	order := placeOrder(t, f, m)
	ctx := context.Background()

	require.NoError(t, f.catalog.DeleteMeal(ctx, m.mealA.ID, m.provider.ID))

	detail, err := f.orders.GetByID(ctx, order.ID, m.customer.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Meal A", detail.Items[0].MealName)
	assert.Nil(t, detail.Items[0].Meal)
	assert.True(t, detail.TotalAmount.Equal(testutil.Price("15")))
}
