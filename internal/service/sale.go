package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/event"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/repository"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
	"github.com/tuanvumaihuynh/retail-pos/pkg/outbox"
)

type CheckoutParams struct {
	PaymentMethod model.PaymentMethod
	Notes         string
}

type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateSaleParams struct {
	Items         []SaleItemInput
	CustomerID    *uuid.UUID
	PaymentMethod model.PaymentMethod
	Notes         string
}

type ListSalesParams struct {
	Start  *time.Time
	End    *time.Time
	Status *model.SaleStatus
}

// Viewer identifies who is reading a sale, for per-record authorization.
type Viewer struct {
	UserID uuid.UUID
	Role   model.Role
}

type SalesWindowStats struct {
	Count   int64
	Revenue float64
}

// SalesStats aggregates completed sales over the four fixed reporting
// windows. It is recomputed in full on every call.
type SalesStats struct {
	Daily   SalesWindowStats
	Weekly  SalesWindowStats
	Monthly SalesWindowStats
	AllTime SalesWindowStats
}

type SaleService interface {
	// Checkout converts the user's cart into a completed sale,
	// decrementing stock, and empties the cart. The whole sequence runs
	// in one transaction so a failed line leaves no stock mutated.
	Checkout(ctx context.Context, userID uuid.UUID, params CheckoutParams) (model.Sale, error)
	// CreateSale records a staff-entered sale from an explicit item
	// list. No cart is touched.
	CreateSale(ctx context.Context, processedBy uuid.UUID, params CreateSaleParams) (model.Sale, error)
	GetSale(ctx context.Context, viewer Viewer, id uuid.UUID) (model.Sale, error)
	ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error)
	ListCustomerSales(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error)
	Stats(ctx context.Context, now time.Time) (SalesStats, error)
}

type saleService struct {
	db            db.DB
	logger        *slog.Logger
	saleRepo      repository.SaleRepository
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	cache         ProductCache
}

func NewSaleService(
	db db.DB,
	logger *slog.Logger,
	saleRepo repository.SaleRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	cache ProductCache,
) SaleService {
	return &saleService{
		db:            db,
		logger:        logger.With(slog.String("service", "sale")),
		saleRepo:      saleRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		cache:         cache,
	}
}

func (s *saleService) Checkout(ctx context.Context, userID uuid.UUID, params CheckoutParams) (model.Sale, error) {
	var sale model.Sale

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		cartRepo := s.cartRepo.WithDB(tx)

		cart, err := cartRepo.GetOrCreateCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("cart repository get or create cart: %w", err)
		}

		items, err := cartRepo.ListItems(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("cart repository list items: %w", err)
		}
		if len(items) == 0 {
			return apperr.CartEmptyErr
		}

		inputs := make([]SaleItemInput, 0, len(items))
		for _, item := range items {
			inputs = append(inputs, SaleItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		sale, err = s.recordSale(ctx, tx, recordSaleParams{
			inputs:        inputs,
			customerID:    &userID,
			processedBy:   userID,
			paymentMethod: params.PaymentMethod,
			notes:         params.Notes,
		})
		if err != nil {
			return err
		}

		if err := cartRepo.ClearItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("cart repository clear items: %w", err)
		}

		return nil
	}); err != nil {
		return model.Sale{}, err
	}

	s.invalidateCatalogCache(ctx)

	return sale, nil
}

func (s *saleService) CreateSale(ctx context.Context, processedBy uuid.UUID, params CreateSaleParams) (model.Sale, error) {
	if len(params.Items) == 0 {
		return model.Sale{}, apperr.ValidationErr.WrapParent(errors.New("sale items are required"))
	}

	var sale model.Sale

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		var err error
		sale, err = s.recordSale(ctx, tx, recordSaleParams{
			inputs:        params.Items,
			customerID:    params.CustomerID,
			processedBy:   processedBy,
			paymentMethod: params.PaymentMethod,
			notes:         params.Notes,
		})
		return err
	}); err != nil {
		return model.Sale{}, err
	}

	s.invalidateCatalogCache(ctx)

	return sale, nil
}

type recordSaleParams struct {
	inputs        []SaleItemInput
	customerID    *uuid.UUID
	processedBy   uuid.UUID
	paymentMethod model.PaymentMethod
	notes         string
}

// recordSale runs the per-line validate/snapshot/decrement sequence and
// persists the sale plus its outbox events. Must be called inside a
// transaction.
func (s *saleService) recordSale(ctx context.Context, tx db.DB, params recordSaleParams) (model.Sale, error) {
	productRepo := s.productRepo.WithDB(tx)
	outboxMsgRepo := s.outboxMsgRepo.WithDB(tx)

	paymentMethod := params.paymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentMethodCash
	}
	if err := paymentMethod.Validate(); err != nil {
		return model.Sale{}, apperr.ValidationErr.WrapParent(err)
	}

	saleItems := make([]model.SaleItem, 0, len(params.inputs))
	var totalAmount float64

	for _, input := range params.inputs {
		if input.Quantity < 1 {
			return model.Sale{}, apperr.ValidationErr.WrapParent(errors.New("quantity must be at least 1"))
		}

		// Re-fetch by id so stale cart data never bypasses the live
		// stock and active checks.
		product, err := productRepo.GetProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Sale{}, apperr.NewProductGone(input.ProductID)
			}
			return model.Sale{}, fmt.Errorf("product repository get product: %w", err)
		}
		if !product.IsActive {
			return model.Sale{}, apperr.NewProductUnavailable(product.Name)
		}
		if product.Stock < input.Quantity {
			return model.Sale{}, apperr.NewInsufficientStock(product.Stock)
		}

		ok, err := productRepo.DecrementStock(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return model.Sale{}, fmt.Errorf("product repository decrement stock: %w", err)
		}
		if !ok {
			// Lost a race since the read above; the guard keeps stock
			// from going negative.
			return model.Sale{}, apperr.NewInsufficientStock(product.Stock)
		}

		subtotal := product.Price * float64(input.Quantity)
		totalAmount += subtotal

		saleItems = append(saleItems, model.SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    input.Quantity,
			Price:       product.Price,
			Subtotal:    subtotal,
		})

		// Emit only on the decrement that crosses the threshold, not on
		// every sale of an already low product.
		newStock := product.Stock - input.Quantity
		if product.Stock > product.LowStockThreshold && newStock <= product.LowStockThreshold {
			if err := s.emitLowStock(ctx, outboxMsgRepo, product, newStock); err != nil {
				return model.Sale{}, err
			}
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	sale := model.Sale{
		ID:            id,
		SaleNumber:    generateSaleNumber(now),
		CustomerID:    params.customerID,
		ProcessedBy:   params.processedBy,
		Items:         saleItems,
		TotalAmount:   totalAmount,
		PaymentMethod: paymentMethod,
		Status:        model.SaleStatusCompleted,
		Notes:         params.notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.saleRepo.WithDB(tx).CreateSale(ctx, sale); err != nil {
		return model.Sale{}, fmt.Errorf("sale repository create sale: %w", err)
	}

	ev := event.SaleCompletedEvent{
		SaleID:      sale.ID.String(),
		SaleNumber:  sale.SaleNumber,
		TotalAmount: sale.TotalAmount,
		ItemCount:   len(sale.Items),
		ProcessedBy: sale.ProcessedBy.String(),
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Sale{}, fmt.Errorf("marshal event: %w", err)
	}

	partitionKey := sale.ID.String()
	if err := outboxMsgRepo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        event.TopicSaleCompleted,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      evBytes,
		PartitionKey: &partitionKey,
	}); err != nil {
		return model.Sale{}, fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return sale, nil
}

func (s *saleService) emitLowStock(ctx context.Context, outboxMsgRepo repository.OutboxMsgRepository, product model.Product, newStock int) error {
	ev := event.ProductLowStockEvent{
		ProductID:         product.ID.String(),
		Name:              product.Name,
		Stock:             newStock,
		LowStockThreshold: product.LowStockThreshold,
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partitionKey := product.ID.String()
	if err := outboxMsgRepo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        event.TopicProductLowStock,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      evBytes,
		PartitionKey: &partitionKey,
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func (s *saleService) GetSale(ctx context.Context, viewer Viewer, id uuid.UUID) (model.Sale, error) {
	sale, err := s.saleRepo.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Sale{}, apperr.SaleNotFoundErr
		}
		return model.Sale{}, fmt.Errorf("sale repository get sale: %w", err)
	}

	if viewer.Role == model.RoleCustomer && sale.CustomerID != nil && *sale.CustomerID != viewer.UserID {
		return model.Sale{}, apperr.SaleViewForbiddenErr
	}

	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error) {
	sales, err := s.saleRepo.ListSales(ctx, repository.ListSalesParams{
		Start:  params.Start,
		End:    params.End,
		Status: params.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("sale repository list sales: %w", err)
	}

	return sales, nil
}

func (s *saleService) ListCustomerSales(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	sales, err := s.saleRepo.ListSales(ctx, repository.ListSalesParams{
		CustomerID: &customerID,
	})
	if err != nil {
		return nil, fmt.Errorf("sale repository list sales: %w", err)
	}

	return sales, nil
}

func (s *saleService) Stats(ctx context.Context, now time.Time) (SalesStats, error) {
	dayStart, weekStart, monthStart := statsWindows(now)

	var stats SalesStats
	for _, window := range []struct {
		since *time.Time
		dest  *SalesWindowStats
	}{
		{&dayStart, &stats.Daily},
		{&weekStart, &stats.Weekly},
		{&monthStart, &stats.Monthly},
		{nil, &stats.AllTime},
	} {
		count, total, err := s.saleRepo.SumCompletedSales(ctx, window.since)
		if err != nil {
			return SalesStats{}, fmt.Errorf("sale repository sum completed sales: %w", err)
		}
		window.dest.Count = count
		window.dest.Revenue = total
	}

	return stats, nil
}

// statsWindows returns the start of the calendar day, the trailing
// 7-day mark and the start of the calendar month for the given time.
func statsWindows(now time.Time) (dayStart, weekStart, monthStart time.Time) {
	dayStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart = now.AddDate(0, 0, -7)
	monthStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return dayStart, weekStart, monthStart
}

func (s *saleService) invalidateCatalogCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, productListCacheKey); err != nil {
		s.logger.WarnContext(ctx, "product list cache invalidation failed", slog.Any("error", err))
	}
}
