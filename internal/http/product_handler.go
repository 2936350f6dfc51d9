package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/service"
)

type productHandler struct {
	*responder
	productSvc service.ProductService
}

func newProductHandler(rp *responder, productSvc service.ProductService) *productHandler {
	return &productHandler{
		responder:  rp,
		productSvc: productSvc,
	}
}

type createProductRequest struct {
	Name              string         `json:"name" validate:"required,max=100"`
	Description       string         `json:"description" validate:"max=500"`
	Category          model.Category `json:"category" validate:"required,enum"`
	Price             float64        `json:"price" validate:"gte=0"`
	Stock             int            `json:"stock" validate:"gte=0"`
	LowStockThreshold *int           `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	ImageURL          string         `json:"imageUrl"`
}

type updateProductRequest struct {
	Name              *string         `json:"name" validate:"omitempty,max=100"`
	Description       *string         `json:"description" validate:"omitempty,max=500"`
	Category          *model.Category `json:"category" validate:"omitempty,enum"`
	Price             *float64        `json:"price" validate:"omitempty,gte=0"`
	Stock             *int            `json:"stock" validate:"omitempty,gte=0"`
	LowStockThreshold *int            `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	ImageURL          *string         `json:"imageUrl"`
	IsActive          *bool           `json:"isActive"`
}

type updateStockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type productListResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Products []productResponse `json:"products"`
}

type productItemResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Product productResponse `json:"product"`
}

func (h *productHandler) List(w http.ResponseWriter, r *http.Request) {
	params := service.ListProductsParams{}

	if category := r.URL.Query().Get("category"); category != "" {
		c := model.Category(category)
		params.Category = &c
	}
	if search := r.URL.Query().Get("search"); search != "" {
		params.Search = &search
	}
	params.LowStockOnly = r.URL.Query().Get("lowStock") == "true"

	products, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, productListResponse{
		Success:  true,
		Count:    len(products),
		Products: newProductResponses(products),
	})
}

func (h *productHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, productItemResponse{
		Success: true,
		Product: newProductResponse(product),
	})
}

func (h *productHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		CreatedBy:         principal(r).UserID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, productItemResponse{
		Success: true,
		Message: "Product created successfully",
		Product: newProductResponse(product),
	})
}

func (h *productHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		IsActive:          req.IsActive,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, productItemResponse{
		Success: true,
		Message: "Product updated successfully",
		Product: newProductResponse(product),
	})
}

func (h *productHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: "Product deleted successfully"})
}

func (h *productHandler) LowStockAlerts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListLowStockProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, productListResponse{
		Success:  true,
		Count:    len(products),
		Products: newProductResponses(products),
	})
}

func (h *productHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateStockRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.SetStock(r.Context(), id, *req.Stock)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, productItemResponse{
		Success: true,
		Message: "Stock updated successfully",
		Product: newProductResponse(product),
	})
}
