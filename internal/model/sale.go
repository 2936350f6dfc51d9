package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
)

// Validate implements the enum contract used by the validator.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline:
		return nil
	default:
		return fmt.Errorf("invalid payment method: %s", m)
	}
}

// SaleStatus is the closed set of sale statuses.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Validate implements the enum contract used by the validator.
func (s SaleStatus) Validate() error {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid sale status: %s", s)
	}
}

// Sale is an immutable record of a transaction. Items are frozen
// snapshots of the product at sale time, never live references, so
// later catalog edits cannot change historical sales.
type Sale struct {
	ID            uuid.UUID     `json:"id"`
	SaleNumber    string        `json:"sale_number"`
	CustomerID    *uuid.UUID    `json:"customer_id,omitempty"`
	ProcessedBy   uuid.UUID     `json:"processed_by"`
	Items         []SaleItem    `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        SaleStatus    `json:"status"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type SaleItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Subtotal    float64   `json:"subtotal"`
}
