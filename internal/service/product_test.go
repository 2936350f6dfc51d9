package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/event"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/pkg/ptr"
)

type productFixture struct {
	svc         ProductService
	productRepo *fakeProductRepo
	outboxRepo  *fakeOutboxRepo
	cache       *fakeCache
}

func newProductFixture(products ...model.Product) *productFixture {
	f := &productFixture{
		productRepo: newFakeProductRepo(products...),
		outboxRepo:  newFakeOutboxRepo(),
		cache:       newFakeCache(),
	}
	f.svc = NewProductService(newFakeDB(f.productRepo, f.outboxRepo), slog.New(slog.DiscardHandler),
		f.productRepo, f.outboxRepo, f.cache)
	return f
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("Should create with defaults and emit event", func(t *testing.T) {
		f := newProductFixture()

		product, err := f.svc.CreateProduct(ctx, CreateProductParams{
			Name:      "Desk Lamp",
			Category:  model.CategoryOther,
			Price:     39.99,
			Stock:     12,
			CreatedBy: adminID,
		})
		require.NoError(t, err)

		assert.True(t, product.IsActive)
		assert.Equal(t, model.DefaultLowStockThreshold, product.LowStockThreshold)
		assert.Equal(t, DefaultImageURL, product.ImageURL)
		require.NotNil(t, product.CreatedBy)
		assert.Equal(t, adminID, *product.CreatedBy)

		assert.Contains(t, f.outboxRepo.topics(), event.TopicProductCreated)
	})

	t.Run("Should reject invalid category", func(t *testing.T) {
		f := newProductFixture()

		_, err := f.svc.CreateProduct(ctx, CreateProductParams{
			Name:     "Bad",
			Category: model.Category("Gadgets"),
			Price:    1,
		})
		assertErrCode(t, err, apperr.ValidationErrorCode)
	})

	t.Run("Should reject negative price", func(t *testing.T) {
		f := newProductFixture()

		_, err := f.svc.CreateProduct(ctx, CreateProductParams{
			Name:     "Bad",
			Category: model.CategoryFood,
			Price:    -1,
		})
		assertErrCode(t, err, apperr.ValidationErrorCode)
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should cache the unfiltered list", func(t *testing.T) {
		product := newTestProduct("Cached", 5, 10)
		f := newProductFixture(product)

		first, err := f.svc.ListProducts(ctx, ListProductsParams{})
		require.NoError(t, err)
		require.Len(t, first, 1)

		// Remove from the store; the cached copy must still serve.
		delete(f.productRepo.products, product.ID)

		second, err := f.svc.ListProducts(ctx, ListProductsParams{})
		require.NoError(t, err)
		assert.Len(t, second, 1)
	})

	t.Run("Should bypass cache for filtered queries", func(t *testing.T) {
		product := newTestProduct("Filtered", 5, 10)
		f := newProductFixture(product)

		category := model.CategoryElectronics
		products, err := f.svc.ListProducts(ctx, ListProductsParams{Category: &category})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Empty(t, f.cache.values)
	})

	t.Run("Should hide inactive products", func(t *testing.T) {
		product := newTestProduct("Hidden", 5, 10)
		product.IsActive = false
		f := newProductFixture(product)

		products, err := f.svc.ListProducts(ctx, ListProductsParams{})
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should apply partial update and invalidate cache", func(t *testing.T) {
		product := newTestProduct("Old name", 10, 5)
		f := newProductFixture(product)

		_, err := f.svc.ListProducts(ctx, ListProductsParams{})
		require.NoError(t, err)
		require.NotEmpty(t, f.cache.values)

		updated, err := f.svc.UpdateProduct(ctx, product.ID, UpdateProductParams{
			Name:  ptr.New("New name"),
			Price: ptr.New(12.50),
		})
		require.NoError(t, err)

		assert.Equal(t, "New name", updated.Name)
		assert.InDelta(t, 12.50, updated.Price, 1e-9)
		assert.Equal(t, product.Stock, updated.Stock)
		assert.Empty(t, f.cache.values)
	})

	t.Run("Should reject unknown product", func(t *testing.T) {
		f := newProductFixture()

		_, err := f.svc.UpdateProduct(ctx, uuid.New(), UpdateProductParams{})
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	product := newTestProduct("Ephemeral", 10, 5)
	f := newProductFixture(product)

	require.NoError(t, f.svc.DeleteProduct(ctx, product.ID))

	// Soft delete keeps the row but deactivates it.
	got, err := f.productRepo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Should set stock", func(t *testing.T) {
		product := newTestProduct("Restocked", 10, 2)
		f := newProductFixture(product)

		got, err := f.svc.SetStock(ctx, product.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, 40, got.Stock)
	})

	t.Run("Should reject negative stock", func(t *testing.T) {
		product := newTestProduct("Any", 10, 2)
		f := newProductFixture(product)

		_, err := f.svc.SetStock(ctx, product.ID, -1)
		assertErrCode(t, err, apperr.ValidationErrorCode)
	})
}
