package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/repository"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
)

// CartLine is a cart item joined with its live product.
type CartLine struct {
	Product  model.Product
	Quantity int
	Subtotal float64
}

// CartSnapshot is the populated view of a cart at read time.
type CartSnapshot struct {
	Items []CartLine
	Total float64
}

type CartService interface {
	// GetCart returns the user's cart, lazily pruning lines whose
	// product has been deleted or deactivated.
	GetCart(ctx context.Context, userID uuid.UUID) (CartSnapshot, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartSnapshot, error)
	// UpdateItem replaces a line's quantity. Quantity 0 removes the line.
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartSnapshot, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (CartSnapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	db          db.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db db.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (CartSnapshot, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository get or create cart: %w", err)
	}

	return s.snapshot(ctx, cart.ID)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartSnapshot, error) {
	if quantity < 1 {
		return CartSnapshot{}, apperr.ValidationErr.WrapParent(errors.New("quantity must be at least 1"))
	}

	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CartSnapshot{}, apperr.ProductNotFoundErr
		}
		return CartSnapshot{}, fmt.Errorf("product repository get product: %w", err)
	}
	if !product.IsActive {
		return CartSnapshot{}, apperr.ProductInactiveErr
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository get or create cart: %w", err)
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository list items: %w", err)
	}

	// Adding a product already in the cart merges the quantities.
	merged := quantity
	for _, item := range items {
		if item.ProductID == productID {
			merged += item.Quantity
			break
		}
	}

	if product.Stock < merged {
		return CartSnapshot{}, apperr.NewInsufficientStock(product.Stock)
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, merged); err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository set item quantity: %w", err)
	}

	return s.snapshot(ctx, cart.ID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartSnapshot, error) {
	if quantity < 0 {
		return CartSnapshot{}, apperr.ValidationErr.WrapParent(errors.New("quantity cannot be negative"))
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository get or create cart: %w", err)
	}

	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository list items: %w", err)
	}

	found := false
	for _, item := range items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return CartSnapshot{}, apperr.CartItemNotFoundErr
	}

	if quantity == 0 {
		if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
			return CartSnapshot{}, fmt.Errorf("cart repository remove item: %w", err)
		}
		return s.snapshot(ctx, cart.ID)
	}

	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return CartSnapshot{}, fmt.Errorf("product repository get product: %w", err)
	}
	if err == nil && product.Stock < quantity {
		return CartSnapshot{}, apperr.NewInsufficientStock(product.Stock)
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository set item quantity: %w", err)
	}

	return s.snapshot(ctx, cart.ID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (CartSnapshot, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository get or create cart: %w", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository remove item: %w", err)
	}

	return s.snapshot(ctx, cart.ID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("cart repository get or create cart: %w", err)
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("cart repository clear items: %w", err)
	}

	return nil
}

// snapshot loads the cart lines, drops lines whose product is gone or
// inactive, and computes subtotals from the live product prices.
func (s *cartService) snapshot(ctx context.Context, cartID uuid.UUID) (CartSnapshot, error) {
	items, err := s.cartRepo.ListItems(ctx, cartID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("cart repository list items: %w", err)
	}

	snapshot := CartSnapshot{Items: make([]CartLine, 0, len(items))}
	pruned := make([]uuid.UUID, 0)

	for _, item := range items {
		product, err := s.productRepo.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				pruned = append(pruned, item.ProductID)
				continue
			}
			return CartSnapshot{}, fmt.Errorf("product repository get product: %w", err)
		}
		if !product.IsActive {
			pruned = append(pruned, item.ProductID)
			continue
		}

		subtotal := product.Price * float64(item.Quantity)
		snapshot.Items = append(snapshot.Items, CartLine{
			Product:  product,
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
		snapshot.Total += subtotal
	}

	if len(pruned) > 0 {
		if err := s.cartRepo.RemoveItems(ctx, cartID, pruned); err != nil {
			return CartSnapshot{}, fmt.Errorf("cart repository remove items: %w", err)
		}
	}

	return snapshot, nil
}
