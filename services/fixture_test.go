package services

import (
	"context"
	"sync"
	"testing"

	"foodhub-api/apperror"
	"foodhub-api/events"
	"foodhub-api/idempotency"
	"foodhub-api/models"
	"foodhub-api/repository"
	"foodhub-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher keeps every envelope it is handed
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	store     *repository.Store
	published *recordingPublisher

	cart    *CartService
	orders  *OrderService
	catalog *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.New(db)
	pub := &recordingPublisher{}
	log := testutil.Logger()

	return &fixture{
		db:        db,
		store:     store,
		published: pub,
		cart:      NewCartService(store),
		orders:    NewOrderService(store, idempotency.NopStore{}, events.NewEmitter(pub, "foodhub-test", log), log),
		catalog:   NewCatalogService(store, ""),
	}
}

// menu is one provider selling two meals: A at 5.00 and B at 3.00
type menu struct {
	provider *models.Provider
	customer *models.User
	mealA    *models.Meal
	mealB    *models.Meal
}

func (f *fixture) menu(t *testing.T, minOrder, deliveryFee string) menu {
	t.Helper()
	p := testutil.CreateProvider(t, f.db, "Burger Barn", minOrder, deliveryFee)
	cat := testutil.CreateCategory(t, f.db, "Mains")
	return menu{
		provider: p,
		customer: testutil.CreateUser(t, f.db, "alice@example.com", models.RoleCustomer),
		mealA:    testutil.CreateMeal(t, f.db, p.ID, cat.ID, "Meal A", "5.00"),
		mealB:    testutil.CreateMeal(t, f.db, p.ID, cat.ID, "Meal B", "3.00"),
	}
}

func (f *fixture) add(t *testing.T, customerID, mealID uint, qty int) *models.CartItem {
	t.Helper()
	item, err := f.cart.AddItem(context.Background(), customerID, mealID, qty)
	require.NoError(t, err)
	return item
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func placeIn() CreateOrderIn {
	return CreateOrderIn{DeliveryAddress: "1 Test Street", PaymentMethod: models.PaymentCashOnDelivery}
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}
