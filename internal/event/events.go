package event

const (
	TopicProductCreated  = "product.created"
	TopicProductLowStock = "product.low_stock"
	TopicSaleCompleted   = "sale.completed"
)

type ProductCreatedEvent struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

type ProductLowStockEvent struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Stock             int    `json:"stock"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

type SaleCompletedEvent struct {
	SaleID      string  `json:"sale_id"`
	SaleNumber  string  `json:"sale_number"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
	ProcessedBy string  `json:"processed_by"`
}
