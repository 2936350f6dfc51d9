package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
)

type ListSalesParams struct {
	Start      *time.Time
	End        *time.Time
	Status     *model.SaleStatus
	CustomerID *uuid.UUID
}

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository
	CreateSale(ctx context.Context, sale model.Sale) error
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error)
	// SumCompletedSales returns the count and summed total of completed
	// sales created at or after since (all time when since is nil).
	SumCompletedSales(ctx context.Context, since *time.Time) (int64, float64, error)
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleColumns = `id, sale_number, customer_id, processed_by, total_amount, payment_method, status, notes, created_at, updated_at`

func (r saleRepository) CreateSale(ctx context.Context, sale model.Sale) error {
	total, err := numericFromFloat(sale.TotalAmount)
	if err != nil {
		return fmt.Errorf("convert total amount: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES (@id, @sale_number, @customer_id, @processed_by, @total_amount, @payment_method, @status, @notes, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":             sale.ID,
		"sale_number":    sale.SaleNumber,
		"customer_id":    sale.CustomerID,
		"processed_by":   sale.ProcessedBy,
		"total_amount":   total,
		"payment_method": string(sale.PaymentMethod),
		"status":         string(sale.Status),
		"notes":          sale.Notes,
		"created_at":     sale.CreatedAt,
		"updated_at":     sale.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	itemRows := make([][]any, 0, len(sale.Items))
	for _, item := range sale.Items {
		price, err := numericFromFloat(item.Price)
		if err != nil {
			return fmt.Errorf("convert item price: %w", err)
		}
		subtotal, err := numericFromFloat(item.Subtotal)
		if err != nil {
			return fmt.Errorf("convert item subtotal: %w", err)
		}
		itemRows = append(itemRows, []any{sale.ID, item.ProductID, item.ProductName, item.Quantity, price, subtotal})
	}

	if _, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"sale_items"},
		[]string{"sale_id", "product_id", "product_name", "quantity", "price", "subtotal"},
		pgx.CopyFromRows(itemRows),
	); err != nil {
		return fmt.Errorf("copy sale items: %w", err)
	}

	return nil
}

func (r saleRepository) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Sale{}, ErrNotFound
		}
		return model.Sale{}, fmt.Errorf("get sale: %w", err)
	}

	itemsBySale, err := r.listItems(ctx, []uuid.UUID{sale.ID})
	if err != nil {
		return model.Sale{}, err
	}
	sale.Items = itemsBySale[sale.ID]

	return sale, nil
}

func (r saleRepository) ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := pgx.NamedArgs{}

	if params.Start != nil {
		query += ` AND created_at >= @start`
		args["start"] = *params.Start
	}
	if params.End != nil {
		query += ` AND created_at < @end`
		args["end"] = *params.End
	}
	if params.Status != nil {
		query += ` AND status = @status`
		args["status"] = string(*params.Status)
	}
	if params.CustomerID != nil {
		query += ` AND customer_id = @customer_id`
		args["customer_id"] = *params.CustomerID
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]model.Sale, 0)
	saleIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
		saleIDs = append(saleIDs, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	rows.Close()

	if len(sales) == 0 {
		return sales, nil
	}

	itemsBySale, err := r.listItems(ctx, saleIDs)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = itemsBySale[sales[i].ID]
	}

	return sales, nil
}

func (r saleRepository) SumCompletedSales(ctx context.Context, since *time.Time) (int64, float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)::float8
		FROM sales
		WHERE status = 'completed'`
	args := pgx.NamedArgs{}

	if since != nil {
		query += ` AND created_at >= @since`
		args["since"] = *since
	}

	var (
		count int64
		total float64
	)
	if err := r.db.QueryRow(ctx, query, args).Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("sum completed sales: %w", err)
	}

	return count, total, nil
}

func (r saleRepository) listItems(ctx context.Context, saleIDs []uuid.UUID) (map[uuid.UUID][]model.SaleItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sale_id, product_id, product_name, quantity, price, subtotal
		FROM sale_items
		WHERE sale_id = ANY(@sale_ids)
		ORDER BY id ASC
	`, pgx.NamedArgs{"sale_ids": saleIDs})
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	itemsBySale := make(map[uuid.UUID][]model.SaleItem)
	for rows.Next() {
		var (
			saleID uuid.UUID
			item   model.SaleItem
		)
		if err := rows.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		itemsBySale[saleID] = append(itemsBySale[saleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}

	return itemsBySale, nil
}

func scanSale(row pgx.Row) (model.Sale, error) {
	var (
		sale          model.Sale
		paymentMethod string
		status        string
	)
	if err := row.Scan(
		&sale.ID,
		&sale.SaleNumber,
		&sale.CustomerID,
		&sale.ProcessedBy,
		&sale.TotalAmount,
		&paymentMethod,
		&status,
		&sale.Notes,
		&sale.CreatedAt,
		&sale.UpdatedAt,
	); err != nil {
		return model.Sale{}, err
	}

	sale.PaymentMethod = model.PaymentMethod(paymentMethod)
	sale.Status = model.SaleStatus(status)
	return sale, nil
}
