package service

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/event"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
)

func newTestProduct(name string, price float64, stock int) model.Product {
	return model.Product{
		ID:                uuid.New(),
		Name:              name,
		Category:          model.CategoryElectronics,
		Price:             price,
		Stock:             stock,
		LowStockThreshold: model.DefaultLowStockThreshold,
		IsActive:          true,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

type saleFixture struct {
	svc         SaleService
	productRepo *fakeProductRepo
	cartRepo    *fakeCartRepo
	saleRepo    *fakeSaleRepo
	outboxRepo  *fakeOutboxRepo
	cache       *fakeCache
}

func newSaleFixture(products ...model.Product) *saleFixture {
	f := &saleFixture{
		productRepo: newFakeProductRepo(products...),
		cartRepo:    newFakeCartRepo(),
		saleRepo:    newFakeSaleRepo(),
		outboxRepo:  newFakeOutboxRepo(),
		cache:       newFakeCache(),
	}
	f.svc = NewSaleService(newFakeDB(f.productRepo, f.cartRepo, f.saleRepo, f.outboxRepo),
		slog.New(slog.DiscardHandler),
		f.saleRepo, f.cartRepo, f.productRepo, f.outboxRepo, f.cache)
	return f
}

func (f *saleFixture) fillCart(t *testing.T, userID uuid.UUID, lines map[uuid.UUID]int) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	cart, err := f.cartRepo.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	for productID, quantity := range lines {
		require.NoError(t, f.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity))
	}
	return cart.ID
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Should record sale, decrement stock and clear cart", func(t *testing.T) {
		laptop := newTestProduct("Laptop", 999.99, 20)
		mouse := newTestProduct("Mouse", 24.50, 30)
		f := newSaleFixture(laptop, mouse)
		cartID := f.fillCart(t, userID, map[uuid.UUID]int{laptop.ID: 2, mouse.ID: 3})

		sale, err := f.svc.Checkout(ctx, userID, CheckoutParams{PaymentMethod: model.PaymentMethodCard})
		require.NoError(t, err)

		assert.InDelta(t, 2*999.99+3*24.50, sale.TotalAmount, 1e-9)
		assert.Equal(t, model.SaleStatusCompleted, sale.Status)
		assert.Equal(t, model.PaymentMethodCard, sale.PaymentMethod)
		require.NotNil(t, sale.CustomerID)
		assert.Equal(t, userID, *sale.CustomerID)
		assert.Equal(t, userID, sale.ProcessedBy)
		assert.Len(t, sale.Items, 2)
		for _, item := range sale.Items {
			assert.InDelta(t, item.Price*float64(item.Quantity), item.Subtotal, 1e-9)
		}

		gotLaptop, err := f.productRepo.GetProduct(ctx, laptop.ID)
		require.NoError(t, err)
		assert.Equal(t, 18, gotLaptop.Stock)
		gotMouse, err := f.productRepo.GetProduct(ctx, mouse.ID)
		require.NoError(t, err)
		assert.Equal(t, 27, gotMouse.Stock)

		items, err := f.cartRepo.ListItems(ctx, cartID)
		require.NoError(t, err)
		assert.Empty(t, items)

		assert.Contains(t, f.outboxRepo.topics(), event.TopicSaleCompleted)
	})

	t.Run("Should default payment method to cash", func(t *testing.T) {
		product := newTestProduct("Widget", 5, 10)
		f := newSaleFixture(product)
		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 1})

		sale, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentMethodCash, sale.PaymentMethod)
	})

	t.Run("Should reject empty cart", func(t *testing.T) {
		f := newSaleFixture()

		_, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.CartEmptyErr)
		assert.Empty(t, f.saleRepo.sales)
	})

	t.Run("Should reject insufficient stock with available count", func(t *testing.T) {
		product := newTestProduct("Scarce", 10, 3)
		f := newSaleFixture(product)
		cartID := f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 5})

		_, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only 3 items available in stock")
		assert.Empty(t, f.saleRepo.sales)

		got, err := f.productRepo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Stock)
		items, err := f.cartRepo.ListItems(ctx, cartID)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("Should reject inactive product by name", func(t *testing.T) {
		product := newTestProduct("Retired", 10, 5)
		product.IsActive = false
		f := newSaleFixture(product)
		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 1})

		_, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Product Retired is not available")
		assert.Empty(t, f.saleRepo.sales)

		got, err := f.productRepo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Stock)
	})

	t.Run("Should roll back earlier decrements when a later line fails", func(t *testing.T) {
		plenty := newTestProduct("Plenty", 10, 20)
		scarce := newTestProduct("Scarce", 10, 1)
		f := newSaleFixture(plenty, scarce)

		// Fill the cart in a fixed order so the plentiful line is
		// decremented before the scarce one fails.
		cart, err := f.cartRepo.GetOrCreateCart(ctx, userID)
		require.NoError(t, err)
		require.NoError(t, f.cartRepo.SetItemQuantity(ctx, cart.ID, plenty.ID, 2))
		require.NoError(t, f.cartRepo.SetItemQuantity(ctx, cart.ID, scarce.ID, 5))

		_, err = f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only 1 items available in stock")

		gotPlenty, err := f.productRepo.GetProduct(ctx, plenty.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, gotPlenty.Stock)
		gotScarce, err := f.productRepo.GetProduct(ctx, scarce.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, gotScarce.Stock)

		assert.Empty(t, f.saleRepo.sales)
		assert.Empty(t, f.outboxRepo.msgs)
		items, err := f.cartRepo.ListItems(ctx, cart.ID)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Should emit low stock event when threshold crossed", func(t *testing.T) {
		product := newTestProduct("Almost gone", 10, 12)
		f := newSaleFixture(product)
		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 4})

		_, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.NoError(t, err)

		assert.Contains(t, f.outboxRepo.topics(), event.TopicProductLowStock)
	})

	t.Run("Should not re-emit low stock for an already low product", func(t *testing.T) {
		product := newTestProduct("Dwindling", 10, 12)
		f := newSaleFixture(product)

		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 4})
		_, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.NoError(t, err)

		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 2})
		_, err = f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.NoError(t, err)

		lowStockEvents := 0
		for _, topic := range f.outboxRepo.topics() {
			if topic == event.TopicProductLowStock {
				lowStockEvents++
			}
		}
		assert.Equal(t, 1, lowStockEvents)
	})

	t.Run("Should not be idempotent", func(t *testing.T) {
		product := newTestProduct("Repeat", 10, 10)
		f := newSaleFixture(product)

		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 2})
		first, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.NoError(t, err)

		f.fillCart(t, userID, map[uuid.UUID]int{product.ID: 2})
		second, err := f.svc.Checkout(ctx, userID, CheckoutParams{})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		got, err := f.productRepo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.Stock)
	})
}

func TestCreateSale(t *testing.T) {
	ctx := context.Background()
	staffID := uuid.New()

	t.Run("Should record direct sale without touching carts", func(t *testing.T) {
		product := newTestProduct("Counter item", 15, 8)
		f := newSaleFixture(product)

		sale, err := f.svc.CreateSale(ctx, staffID, CreateSaleParams{
			Items:         []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
			PaymentMethod: model.PaymentMethodOnline,
		})
		require.NoError(t, err)

		assert.Nil(t, sale.CustomerID)
		assert.Equal(t, staffID, sale.ProcessedBy)
		assert.InDelta(t, 30.0, sale.TotalAmount, 1e-9)

		got, err := f.productRepo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.Stock)
	})

	t.Run("Should reject empty item list", func(t *testing.T) {
		f := newSaleFixture()

		_, err := f.svc.CreateSale(ctx, staffID, CreateSaleParams{})
		require.Error(t, err)
		assertErrCode(t, err, apperr.ValidationErrorCode)
	})

	t.Run("Should reject unknown product", func(t *testing.T) {
		f := newSaleFixture()

		_, err := f.svc.CreateSale(ctx, staffID, CreateSaleParams{
			Items: []SaleItemInput{{ProductID: uuid.New(), Quantity: 1}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestGetSale(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	product := newTestProduct("Thing", 9.99, 10)
	f := newSaleFixture(product)
	f.fillCart(t, customerID, map[uuid.UUID]int{product.ID: 1})
	sale, err := f.svc.Checkout(ctx, customerID, CheckoutParams{})
	require.NoError(t, err)

	t.Run("Should allow the owning customer", func(t *testing.T) {
		got, err := f.svc.GetSale(ctx, Viewer{UserID: customerID, Role: model.RoleCustomer}, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, sale.ID, got.ID)
	})

	t.Run("Should forbid another customer", func(t *testing.T) {
		_, err := f.svc.GetSale(ctx, Viewer{UserID: uuid.New(), Role: model.RoleCustomer}, sale.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.SaleViewForbiddenErr)
	})

	t.Run("Should allow staff", func(t *testing.T) {
		_, err := f.svc.GetSale(ctx, Viewer{UserID: uuid.New(), Role: model.RoleStaff}, sale.ID)
		require.NoError(t, err)
	})

	t.Run("Should return not found for unknown sale", func(t *testing.T) {
		_, err := f.svc.GetSale(ctx, Viewer{UserID: customerID, Role: model.RoleCustomer}, uuid.New())
		assert.ErrorIs(t, err, apperr.SaleNotFoundErr)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	f := newSaleFixture()
	addSale := func(createdAt time.Time, amount float64, status model.SaleStatus) {
		f.saleRepo.sales = append(f.saleRepo.sales, model.Sale{
			ID:          uuid.New(),
			TotalAmount: amount,
			Status:      status,
			CreatedAt:   createdAt,
		})
	}

	addSale(now.Add(-2*time.Hour), 100, model.SaleStatusCompleted)          // today
	addSale(now.AddDate(0, 0, -3), 50, model.SaleStatusCompleted)           // this week + month
	addSale(now.AddDate(0, 0, -10), 25, model.SaleStatusCompleted)          // this month only
	addSale(now.AddDate(0, -2, 0), 10, model.SaleStatusCompleted)           // all time only
	addSale(now.Add(-1*time.Hour), 999, model.SaleStatusCancelled)          // ignored
	addSale(now.AddDate(0, 0, -1), 999, model.SaleStatusPending)            // ignored

	stats, err := f.svc.Stats(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Daily.Count)
	assert.InDelta(t, 100, stats.Daily.Revenue, 1e-9)
	assert.Equal(t, int64(2), stats.Weekly.Count)
	assert.InDelta(t, 150, stats.Weekly.Revenue, 1e-9)
	assert.Equal(t, int64(3), stats.Monthly.Count)
	assert.InDelta(t, 175, stats.Monthly.Revenue, 1e-9)
	assert.Equal(t, int64(4), stats.AllTime.Count)
	assert.InDelta(t, 185, stats.AllTime.Revenue, 1e-9)
}

func TestStatsWindows(t *testing.T) {
	now := time.Date(2026, 8, 15, 17, 30, 45, 0, time.UTC)

	dayStart, weekStart, monthStart := statsWindows(now)

	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), dayStart)
	assert.Equal(t, time.Date(2026, 8, 8, 17, 30, 45, 0, time.UTC), weekStart)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), monthStart)
}

func TestGenerateSaleNumber(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 22, 33, 0, time.UTC)

	number := generateSaleNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^SALE-20260831-142233-\d{3}$`), number)
}
