package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/service"
)

type cartHandler struct {
	*responder
	cartSvc service.CartService
}

func newCartHandler(rp *responder, cartSvc service.CartService) *cartHandler {
	return &cartHandler{
		responder: rp,
		cartSvc:   cartSvc,
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  *int      `json:"quantity" validate:"required,gte=0"`
}

type cartEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Cart    cartResponse `json:"cart"`
}

func (h *cartHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.cartSvc.GetCart(r.Context(), principal(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartEnvelope{
		Success: true,
		Cart:    newCartResponse(snapshot),
	})
}

func (h *cartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	snapshot, err := h.cartSvc.AddItem(r.Context(), principal(r).UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartEnvelope{
		Success: true,
		Message: "Product added to cart",
		Cart:    newCartResponse(snapshot),
	})
}

func (h *cartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	snapshot, err := h.cartSvc.UpdateItem(r.Context(), principal(r).UserID, req.ProductID, *req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartEnvelope{
		Success: true,
		Message: "Cart updated",
		Cart:    newCartResponse(snapshot),
	})
}

func (h *cartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuidParam(r, "productId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	snapshot, err := h.cartSvc.RemoveItem(r.Context(), principal(r).UserID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartEnvelope{
		Success: true,
		Message: "Item removed from cart",
		Cart:    newCartResponse(snapshot),
	})
}

func (h *cartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartSvc.Clear(r.Context(), principal(r).UserID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: "Cart cleared"})
}
