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

// DefaultImageURL is assigned to products created without an image.
const DefaultImageURL = "https://via.placeholder.com/300x300?text=No+Image"

// productListCacheKey caches the unfiltered active product list.
const productListCacheKey = "products:active"

// ProductCache is the cache-aside store used for the product catalog.
type ProductCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type CreateProductParams struct {
	Name              string
	Description       string
	Category          model.Category
	Price             float64
	Stock             int
	LowStockThreshold *int
	ImageURL          string
	CreatedBy         uuid.UUID
}

type UpdateProductParams struct {
	Name              *string
	Description       *string
	Category          *model.Category
	Price             *float64
	Stock             *int
	LowStockThreshold *int
	ImageURL          *string
	IsActive          *bool
}

type ListProductsParams struct {
	Category     *model.Category
	Search       *string
	LowStockOnly bool
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	// DeleteProduct soft-deletes by flipping is_active, so historical
	// sales keep resolving their product references.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, stock int) (model.Product, error)
}

type productService struct {
	db            db.DB
	logger        *slog.Logger
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	cache         ProductCache
}

func NewProductService(
	db db.DB,
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	cache ProductCache,
) ProductService {
	return &productService{
		db:            db,
		logger:        logger.With(slog.String("service", "product")),
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		cache:         cache,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := params.Category.Validate(); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}
	if params.Price < 0 || params.Stock < 0 {
		return model.Product{}, apperr.ValidationErr.WrapParent(errors.New("price and stock must be non-negative"))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	threshold := model.DefaultLowStockThreshold
	if params.LowStockThreshold != nil {
		threshold = *params.LowStockThreshold
	}
	imageURL := params.ImageURL
	if imageURL == "" {
		imageURL = DefaultImageURL
	}

	now := time.Now()
	createdBy := params.CreatedBy
	product := model.Product{
		ID:                id,
		Name:              params.Name,
		Description:       params.Description,
		Category:          params.Category,
		Price:             params.Price,
		Stock:             params.Stock,
		LowStockThreshold: threshold,
		IsActive:          true,
		ImageURL:          imageURL,
		CreatedBy:         &createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ev := event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Category:  string(product.Category),
		Price:     product.Price,
		Stock:     product.Stock,
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		partitionKey := product.ID.String()
		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: &partitionKey,
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	s.invalidateCatalogCache(ctx)

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	cacheable := params.Category == nil && params.Search == nil && !params.LowStockOnly

	if cacheable {
		var cached []model.Product
		found, err := s.cache.Get(ctx, productListCacheKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "product list cache read failed", slog.Any("error", err))
		} else if found {
			return cached, nil
		}
	}

	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		Category:     params.Category,
		Search:       params.Search,
		LowStockOnly: params.LowStockOnly,
		ActiveOnly:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, productListCacheKey, products); err != nil {
			s.logger.WarnContext(ctx, "product list cache write failed", slog.Any("error", err))
		}
	}

	return products, nil
}

func (s *productService) ListLowStockProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListLowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list low stock products: %w", err)
	}

	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if params.Name != nil {
		product.Name = *params.Name
	}
	if params.Description != nil {
		product.Description = *params.Description
	}
	if params.Category != nil {
		if err := params.Category.Validate(); err != nil {
			return model.Product{}, apperr.ValidationErr.WrapParent(err)
		}
		product.Category = *params.Category
	}
	if params.Price != nil {
		if *params.Price < 0 {
			return model.Product{}, apperr.ValidationErr.WrapParent(errors.New("price cannot be negative"))
		}
		product.Price = *params.Price
	}
	if params.Stock != nil {
		if *params.Stock < 0 {
			return model.Product{}, apperr.ValidationErr.WrapParent(errors.New("stock cannot be negative"))
		}
		product.Stock = *params.Stock
	}
	if params.LowStockThreshold != nil {
		product.LowStockThreshold = *params.LowStockThreshold
	}
	if params.ImageURL != nil {
		product.ImageURL = *params.ImageURL
	}
	if params.IsActive != nil {
		product.IsActive = *params.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("product repository update product: %w", err)
	}

	s.invalidateCatalogCache(ctx)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	product.IsActive = false
	product.UpdatedAt = time.Now()

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		return fmt.Errorf("product repository update product: %w", err)
	}

	s.invalidateCatalogCache(ctx)

	return nil
}

func (s *productService) SetStock(ctx context.Context, id uuid.UUID, stock int) (model.Product, error) {
	if stock < 0 {
		return model.Product{}, apperr.ValidationErr.WrapParent(errors.New("stock cannot be negative"))
	}

	if err := s.productRepo.SetStock(ctx, id, stock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("product repository set stock: %w", err)
	}

	s.invalidateCatalogCache(ctx)

	return s.GetProduct(ctx, id)
}

func (s *productService) invalidateCatalogCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, productListCacheKey); err != nil {
		s.logger.WarnContext(ctx, "product list cache invalidation failed", slog.Any("error", err))
	}
}
