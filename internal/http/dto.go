package http

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/service"
)

// money renders an amount with two decimals at the presentation
// boundary. Internal arithmetic stays in float64.
func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newUserResponse(user model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

type productResponse struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Category          model.Category `json:"category"`
	Price             float64        `json:"price"`
	Stock             int            `json:"stock"`
	LowStockThreshold int            `json:"lowStockThreshold"`
	IsLowStock        bool           `json:"isLowStock"`
	IsActive          bool           `json:"isActive"`
	ImageURL          string         `json:"imageUrl"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func newProductResponse(product model.Product) productResponse {
	return productResponse{
		ID:                product.ID,
		Name:              product.Name,
		Description:       product.Description,
		Category:          product.Category,
		Price:             product.Price,
		Stock:             product.Stock,
		LowStockThreshold: product.LowStockThreshold,
		IsLowStock:        product.IsLowStock(),
		IsActive:          product.IsActive,
		ImageURL:          product.ImageURL,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

func newProductResponses(products []model.Product) []productResponse {
	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, newProductResponse(product))
	}
	return items
}

type cartLineResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal float64         `json:"subtotal"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total string             `json:"total"`
}

func newCartResponse(snapshot service.CartSnapshot) cartResponse {
	items := make([]cartLineResponse, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		items = append(items, cartLineResponse{
			Product:  newProductResponse(line.Product),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal,
		})
	}

	return cartResponse{
		Items: items,
		Total: money(snapshot.Total),
	}
}

type saleItemResponse struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Subtotal    float64   `json:"subtotal"`
}

type saleResponse struct {
	ID            uuid.UUID           `json:"id"`
	SaleNumber    string              `json:"saleNumber"`
	CustomerID    *uuid.UUID          `json:"customerId,omitempty"`
	ProcessedBy   uuid.UUID           `json:"processedBy"`
	Items         []saleItemResponse  `json:"items"`
	TotalAmount   float64             `json:"totalAmount"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Status        model.SaleStatus    `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func newSaleResponse(sale model.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, saleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}

	return saleResponse{
		ID:            sale.ID,
		SaleNumber:    sale.SaleNumber,
		CustomerID:    sale.CustomerID,
		ProcessedBy:   sale.ProcessedBy,
		Items:         items,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt,
	}
}

func newSaleResponses(sales []model.Sale) []saleResponse {
	items := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		items = append(items, newSaleResponse(sale))
	}
	return items
}
