package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
)

type CartRepository interface {
	WithDB(db db.DB) CartRepository
	// GetOrCreateCart returns the user's cart, creating it lazily on
	// first access.
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (model.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)
	// SetItemQuantity inserts the item or replaces its quantity. At most
	// one item per product is kept.
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	RemoveItems(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type cartRepository struct {
	db db.DB
}

func NewCartRepository(db db.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r cartRepository) WithDB(db db.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r cartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (model.Cart, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Cart{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	row := r.db.QueryRow(ctx, `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES (@id, @user_id, @now, @now)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, created_at, updated_at
	`, pgx.NamedArgs{"id": id, "user_id": userID, "now": now})

	var cart model.Cart
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return model.Cart{}, fmt.Errorf("get or create cart: %w", err)
	}

	return cart, nil
}

func (r cartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cart_id, product_id, quantity, added_at
		FROM cart_items
		WHERE cart_id = @cart_id
		ORDER BY added_at ASC
	`, pgx.NamedArgs{"cart_id": cartID})
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]model.CartItem, 0)
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return items, nil
}

func (r cartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, added_at)
		VALUES (@cart_id, @product_id, @quantity, NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = @quantity
	`, pgx.NamedArgs{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	}); err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}

	return nil
}

func (r cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = @cart_id AND product_id = @product_id
	`, pgx.NamedArgs{"cart_id": cartID, "product_id": productID}); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	return nil
}

func (r cartRepository) RemoveItems(ctx context.Context, cartID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	if _, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = @cart_id AND product_id = ANY(@product_ids)
	`, pgx.NamedArgs{"cart_id": cartID, "product_ids": productIDs}); err != nil {
		return fmt.Errorf("remove cart items: %w", err)
	}

	return nil
}

func (r cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = @cart_id
	`, pgx.NamedArgs{"cart_id": cartID}); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	return nil
}
