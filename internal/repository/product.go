package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
)

type ListProductsParams struct {
	Category     *model.Category
	Search       *string
	LowStockOnly bool
	ActiveOnly   bool
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) error
	SetStock(ctx context.Context, id uuid.UUID, stock int) error
	// DecrementStock atomically decrements stock by qty if enough stock
	// remains. Returns false when the guard fails.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	CountProducts(ctx context.Context) (int64, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, category, price, stock, low_stock_threshold, is_active, image_url, created_by, created_at, updated_at`

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (@id, @name, @description, @category, @price, @stock, @low_stock_threshold, @is_active, @image_url, @created_by, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":                  product.ID,
		"name":                product.Name,
		"description":         product.Description,
		"category":            string(product.Category),
		"price":               price,
		"stock":               product.Stock,
		"low_stock_threshold": product.LowStockThreshold,
		"is_active":           product.IsActive,
		"image_url":           product.ImageURL,
		"created_by":          product.CreatedBy,
		"created_at":          product.CreatedAt,
		"updated_at":          product.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := pgx.NamedArgs{}

	if params.ActiveOnly {
		query += ` AND is_active = TRUE`
	}
	if params.Category != nil {
		query += ` AND category = @category`
		args["category"] = string(*params.Category)
	}
	if params.Search != nil {
		query += ` AND name ILIKE @search`
		args["search"] = "%" + *params.Search + "%"
	}
	if params.LowStockOnly {
		query += ` AND stock <= low_stock_threshold`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r productRepository) ListLowStockProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active = TRUE AND stock <= low_stock_threshold
		ORDER BY stock ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = @name,
			description = @description,
			category = @category,
			price = @price,
			stock = @stock,
			low_stock_threshold = @low_stock_threshold,
			is_active = @is_active,
			image_url = @image_url,
			updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":                  product.ID,
		"name":                product.Name,
		"description":         product.Description,
		"category":            string(product.Category),
		"price":               price,
		"stock":               product.Stock,
		"low_stock_threshold": product.LowStockThreshold,
		"is_active":           product.IsActive,
		"image_url":           product.ImageURL,
		"updated_at":          product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r productRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = @stock, updated_at = NOW()
		WHERE id = @id
	`, pgx.NamedArgs{"id": id, "stock": stock})
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r productRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = stock - @qty, updated_at = NOW()
		WHERE id = @id AND stock >= @qty
	`, pgx.NamedArgs{"id": id, "qty": qty})
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r productRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product  model.Product
		category string
		price    float64
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&category,
		&price,
		&product.Stock,
		&product.LowStockThreshold,
		&product.IsActive,
		&product.ImageURL,
		&product.CreatedBy,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	product.Category = model.Category(category)
	product.Price = price
	return product, nil
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
