package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/cache"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/events"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
	"github.com/Cheertaboi/pharmacy-pricing-service/internal/repository"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

// MockProductStore implements ProductStore for testing
type MockProductStore struct {
	mu         sync.Mutex
	Products   map[int64]*models.Product
	Calls      int
	Err        error
	Promotions []*models.Promotion
	Attached   [][]int64
	CreateErr  error
}

func (m *MockProductStore) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductStore) CreateProduct(_ context.Context, p *models.Product) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	p.ID = int64(len(m.Products) + 1)
	return nil
}

func (m *MockProductStore) CreatePromotion(_ context.Context, _ *sql.Tx, p *models.Promotion, productIDs []int64) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	p.ID = int64(len(m.Promotions) + 1)
	m.Promotions = append(m.Promotions, p)
	m.Attached = append(m.Attached, productIDs)
	return nil
}

// MockPromoCodeStore implements PromoCodeStore for testing
type MockPromoCodeStore struct {
	Codes     map[string]*models.PromoCode
	Created   *models.PromoCode
	CreateErr error
}

func (m *MockPromoCodeStore) GetByCode(_ context.Context, code string) (*models.PromoCode, error) {
	pc, ok := m.Codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *pc
	return &cp, nil
}

func (m *MockPromoCodeStore) Create(_ context.Context, c *models.PromoCode) error {
	m.Created = c
	return m.CreateErr
}

// MockUsageStore implements UsageStore for testing. Locked is returned by
// LockPromoCode; the map is keyed by user id.
type MockUsageStore struct {
	Locked       *models.PromoCode
	UserUses     map[string]int
	CountCalls   int
	Increments   int
	IncrementErr error
}

func (m *MockUsageStore) LockPromoCode(_ context.Context, _ *sql.Tx, _ int64) (*models.PromoCode, error) {
	if m.Locked == nil {
		return nil, repository.ErrNotFound
	}
	cp := *m.Locked
	return &cp, nil
}

func (m *MockUsageStore) CountUserUses(_ context.Context, _ *sql.Tx, _ int64, userID string) (int, error) {
	m.CountCalls++
	return m.UserUses[userID], nil
}

func (m *MockUsageStore) IncrementUsage(_ context.Context, _ *sql.Tx, _ int64) error {
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	m.Increments++
	return nil
}

// MockShippingStore implements ShippingStore for testing
type MockShippingStore struct {
	mu        sync.Mutex
	Methods   map[models.DeliveryMode]*models.ShippingMethod
	Calls     int
	Created   *models.ShippingMethod
	CreateErr error
}

func (m *MockShippingStore) GetActiveByMode(ctx context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sm, ok := m.Methods[mode]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sm, nil
}

func (m *MockShippingStore) Create(_ context.Context, _ *sql.Tx, sm *models.ShippingMethod) error {
	m.Created = sm
	return m.CreateErr
}

// MockOrderStore implements OrderStore for testing
type MockOrderStore struct {
	Orders    map[uuid.UUID]*models.Order
	CreateErr error
	UpdateErr error
}

func (m *MockOrderStore) Create(_ context.Context, _ *sql.Tx, o *models.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.Orders == nil {
		m.Orders = make(map[uuid.UUID]*models.Order)
	}
	o.CreatedAt = testNow
	o.UpdatedAt = testNow
	m.Orders[o.ID] = o
	return nil
}

func (m *MockOrderStore) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := m.Orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, _, to models.OrderStatus) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Orders[id].Status = to
	return nil
}

// MockTx runs fn without a database; Rollbacks counts failed runs.
type MockTx struct {
	Rollbacks int
}

func (m *MockTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := fn(ctx, nil); err != nil {
		m.Rollbacks++
		return err
	}
	return nil
}

// MockPublisher records published events.
type MockPublisher struct {
	Events []events.OrderEvent
	Err    error
}

func (m *MockPublisher) PublishOrderEvent(_ context.Context, e events.OrderEvent) error {
	m.Events = append(m.Events, e)
	return m.Err
}

func (m *MockPublisher) Close() error { return nil }

type fixture struct {
	products   *MockProductStore
	promoCodes *MockPromoCodeStore
	usage      *MockUsageStore
	shipping   *MockShippingStore
	orders     *MockOrderStore
	tx         *MockTx
	publisher  *MockPublisher
	pricing    *PricingService
	checkout   *CheckoutService
	admin      *AdminService
}

// newFixture wires the services over a small catalog: product 1 (Doliprane,
// 10.00, 0.5 kg, 20% promotion) and product 2 (Sirop, 6.00, 1.2 kg), a HOME
// method with a 49.00 free-shipping threshold, and a RELAY_POINT method.
func newFixture() *fixture {
	percent := models.Promotion{ID: 1, Name: "Printemps", Type: models.DiscountPercent, Amount: dec("20"), IsActive: true}

	f := &fixture{
		products: &MockProductStore{Products: map[int64]*models.Product{
			1: {ID: 1, Name: "Doliprane", Price: dec("10.00"), Weight: dec("0.5"), IsActive: true,
				Promotions: []models.PromotionAssociation{{ProductID: 1, Position: 0, Promotion: percent}}},
			2: {ID: 2, Name: "Sirop", Price: dec("6.00"), Weight: dec("1.2"), IsActive: true},
		}},
		promoCodes: &MockPromoCodeStore{Codes: map[string]*models.PromoCode{}},
		usage:      &MockUsageStore{UserUses: map[string]int{}},
		shipping: &MockShippingStore{Methods: map[models.DeliveryMode]*models.ShippingMethod{
			models.DeliveryHome: {
				ID: 10, Mode: models.DeliveryHome, Name: "Colissimo", IsActive: true,
				FreeShippingThreshold: decPtr("49.00"),
				Rates: []models.ShippingRate{
					{MinWeight: dec("0"), MaxWeight: dec("5"), Price: dec("4.90")},
					{MinWeight: dec("5"), MaxWeight: dec("10"), Price: dec("7.90")},
				},
			},
			models.DeliveryRelayPoint: {
				ID: 11, Mode: models.DeliveryRelayPoint, Name: "Mondial Relay", IsActive: true,
				Rates: []models.ShippingRate{
					{MinWeight: dec("0"), MaxWeight: dec("3"), Price: dec("3.50")},
				},
			},
		}},
		orders:    &MockOrderStore{},
		tx:        &MockTx{},
		publisher: &MockPublisher{},
	}

	logger := zap.NewNop()
	f.pricing = NewPricingService(f.products, f.promoCodes, f.usage, f.shipping, cache.NewMemoryCache(time.Minute), 2, logger)
	f.pricing.now = func() time.Time { return testNow }
	f.checkout = NewCheckoutService(f.pricing, f.usage, f.orders, f.tx, f.publisher, logger)
	f.checkout.now = func() time.Time { return testNow }
	f.admin = NewAdminService(f.products, f.promoCodes, f.shipping, f.tx, f.pricing, logger)
	return f
}

func (f *fixture) addCode(pc *models.PromoCode) {
	f.promoCodes.Codes[pc.Code] = pc
	f.usage.Locked = pc
}
