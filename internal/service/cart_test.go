package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
)

type cartFixture struct {
	svc         CartService
	productRepo *fakeProductRepo
	cartRepo    *fakeCartRepo
}

func newCartFixture(products ...model.Product) *cartFixture {
	f := &cartFixture{
		productRepo: newFakeProductRepo(products...),
		cartRepo:    newFakeCartRepo(),
	}
	f.svc = NewCartService(newFakeDB(f.cartRepo, f.productRepo), f.cartRepo, f.productRepo)
	return f
}

func TestCartAddItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Should add product with subtotal", func(t *testing.T) {
		product := newTestProduct("Pencil", 1.50, 100)
		f := newCartFixture(product)

		snapshot, err := f.svc.AddItem(ctx, userID, product.ID, 4)
		require.NoError(t, err)

		require.Len(t, snapshot.Items, 1)
		assert.Equal(t, 4, snapshot.Items[0].Quantity)
		assert.InDelta(t, 6.0, snapshot.Items[0].Subtotal, 1e-9)
		assert.InDelta(t, 6.0, snapshot.Total, 1e-9)
	})

	t.Run("Should merge quantities for repeated product", func(t *testing.T) {
		product := newTestProduct("Pen", 2, 10)
		f := newCartFixture(product)

		_, err := f.svc.AddItem(ctx, userID, product.ID, 3)
		require.NoError(t, err)
		snapshot, err := f.svc.AddItem(ctx, userID, product.ID, 2)
		require.NoError(t, err)

		require.Len(t, snapshot.Items, 1)
		assert.Equal(t, 5, snapshot.Items[0].Quantity)
	})

	t.Run("Should check stock against the merged quantity", func(t *testing.T) {
		product := newTestProduct("Limited", 2, 5)
		f := newCartFixture(product)

		_, err := f.svc.AddItem(ctx, userID, product.ID, 4)
		require.NoError(t, err)
		_, err = f.svc.AddItem(ctx, userID, product.ID, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only 5 items available in stock")
	})

	t.Run("Should reject unknown product", func(t *testing.T) {
		f := newCartFixture()

		_, err := f.svc.AddItem(ctx, userID, uuid.New(), 1)
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})

	t.Run("Should reject inactive product", func(t *testing.T) {
		product := newTestProduct("Gone", 2, 5)
		product.IsActive = false
		f := newCartFixture(product)

		_, err := f.svc.AddItem(ctx, userID, product.ID, 1)
		assert.ErrorIs(t, err, apperr.ProductInactiveErr)
	})

	t.Run("Should reject quantity below one", func(t *testing.T) {
		product := newTestProduct("Any", 2, 5)
		f := newCartFixture(product)

		_, err := f.svc.AddItem(ctx, userID, product.ID, 0)
		assertErrCode(t, err, apperr.ValidationErrorCode)
	})
}

func TestCartUpdateItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Should replace quantity", func(t *testing.T) {
		product := newTestProduct("Notebook", 3, 10)
		f := newCartFixture(product)
		_, err := f.svc.AddItem(ctx, userID, product.ID, 2)
		require.NoError(t, err)

		snapshot, err := f.svc.UpdateItem(ctx, userID, product.ID, 7)
		require.NoError(t, err)

		require.Len(t, snapshot.Items, 1)
		assert.Equal(t, 7, snapshot.Items[0].Quantity)
	})

	t.Run("Should remove line on quantity zero", func(t *testing.T) {
		product := newTestProduct("Eraser", 1, 10)
		f := newCartFixture(product)
		_, err := f.svc.AddItem(ctx, userID, product.ID, 2)
		require.NoError(t, err)

		snapshot, err := f.svc.UpdateItem(ctx, userID, product.ID, 0)
		require.NoError(t, err)

		assert.Empty(t, snapshot.Items)
	})

	t.Run("Should reject negative quantity", func(t *testing.T) {
		f := newCartFixture()

		_, err := f.svc.UpdateItem(ctx, userID, uuid.New(), -1)
		assertErrCode(t, err, apperr.ValidationErrorCode)
	})

	t.Run("Should reject product not in cart", func(t *testing.T) {
		product := newTestProduct("Elsewhere", 1, 10)
		f := newCartFixture(product)

		_, err := f.svc.UpdateItem(ctx, userID, product.ID, 1)
		assert.ErrorIs(t, err, apperr.CartItemNotFoundErr)
	})
}

func TestCartSnapshotPruning(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	active := newTestProduct("Keep", 10, 5)
	retired := newTestProduct("Drop", 10, 5)
	f := newCartFixture(active, retired)

	_, err := f.svc.AddItem(ctx, userID, active.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, userID, retired.ID, 1)
	require.NoError(t, err)

	// Deactivate after the item is already in the cart.
	retired.IsActive = false
	require.NoError(t, f.productRepo.UpdateProduct(ctx, retired))

	snapshot, err := f.svc.GetCart(ctx, userID)
	require.NoError(t, err)

	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, active.ID, snapshot.Items[0].Product.ID)

	// The pruned line is persisted away, not just filtered.
	cart, err := f.cartRepo.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	items, err := f.cartRepo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartClear(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	product := newTestProduct("Stuff", 2, 10)
	f := newCartFixture(product)
	_, err := f.svc.AddItem(ctx, userID, product.ID, 3)
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(ctx, userID))

	snapshot, err := f.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
	assert.Zero(t, snapshot.Total)
}
