package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of product categories.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryFood        Category = "Food"
	CategoryBooks       Category = "Books"
	CategoryToys        Category = "Toys"
	CategoryOther       Category = "Other"
)

// Validate implements the enum contract used by the validator.
func (c Category) Validate() error {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryFood, CategoryBooks, CategoryToys, CategoryOther:
		return nil
	default:
		return fmt.Errorf("invalid category: %s", c)
	}
}

const DefaultLowStockThreshold = 10

type Product struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Category          Category   `json:"category"`
	Price             float64    `json:"price"`
	Stock             int        `json:"stock"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	IsActive          bool       `json:"is_active"`
	ImageURL          string     `json:"image_url"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsLowStock reports whether the product is at or below its low stock threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
