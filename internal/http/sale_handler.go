package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/service"
)

type saleHandler struct {
	*responder
	saleSvc service.SaleService
}

func newSaleHandler(rp *responder, saleSvc service.SaleService) *saleHandler {
	return &saleHandler{
		responder: rp,
		saleSvc:   saleSvc,
	}
}

type checkoutRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"omitempty,enum"`
	Notes         string              `json:"notes" validate:"max=500"`
}

type saleItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type createSaleRequest struct {
	Items         []saleItemInput     `json:"items" validate:"required,min=1,dive"`
	CustomerID    *uuid.UUID          `json:"customerId"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"omitempty,enum"`
	Notes         string              `json:"notes" validate:"max=500"`
}

type saleEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Sale    saleResponse `json:"sale"`
}

type saleListResponse struct {
	Success      bool           `json:"success"`
	Count        int            `json:"count"`
	TotalRevenue string         `json:"totalRevenue,omitempty"`
	Sales        []saleResponse `json:"sales"`
}

type windowStatsResponse struct {
	Count   int64  `json:"count"`
	Revenue string `json:"revenue"`
}

type salesStatsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		Daily   windowStatsResponse `json:"daily"`
		Weekly  windowStatsResponse `json:"weekly"`
		Monthly windowStatsResponse `json:"monthly"`
		AllTime windowStatsResponse `json:"allTime"`
	} `json:"stats"`
}

func (h *saleHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sale, err := h.saleSvc.Checkout(r.Context(), principal(r).UserID, service.CheckoutParams{
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, saleEnvelope{
		Success: true,
		Message: "Order placed successfully",
		Sale:    newSaleResponse(sale),
	})
}

func (h *saleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]service.SaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	sale, err := h.saleSvc.CreateSale(r.Context(), principal(r).UserID, service.CreateSaleParams{
		Items:         items,
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, saleEnvelope{
		Success: true,
		Message: "Sale created successfully",
		Sale:    newSaleResponse(sale),
	})
}

func (h *saleHandler) List(w http.ResponseWriter, r *http.Request) {
	params := service.ListSalesParams{}

	if startDate := r.URL.Query().Get("startDate"); startDate != "" {
		start, err := time.Parse(time.DateOnly, startDate)
		if err != nil {
			h.writeError(w, r, apperr.ValidationErr.WrapParent(fmt.Errorf("parse startDate: %w", err)))
			return
		}
		params.Start = &start
	}
	if endDate := r.URL.Query().Get("endDate"); endDate != "" {
		end, err := time.Parse(time.DateOnly, endDate)
		if err != nil {
			h.writeError(w, r, apperr.ValidationErr.WrapParent(fmt.Errorf("parse endDate: %w", err)))
			return
		}
		// endDate filters inclusively through the end of that day.
		end = end.AddDate(0, 0, 1)
		params.End = &end
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := model.SaleStatus(status)
		if err := st.Validate(); err != nil {
			h.writeError(w, r, apperr.ValidationErr.WrapParent(err))
			return
		}
		params.Status = &st
	}

	sales, err := h.saleSvc.ListSales(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var totalRevenue float64
	for _, sale := range sales {
		totalRevenue += sale.TotalAmount
	}

	h.writeJSON(w, r, http.StatusOK, saleListResponse{
		Success:      true,
		Count:        len(sales),
		TotalRevenue: money(totalRevenue),
		Sales:        newSaleResponses(sales),
	})
}

func (h *saleHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	sales, err := h.saleSvc.ListCustomerSales(r.Context(), principal(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, saleListResponse{
		Success: true,
		Count:   len(sales),
		Sales:   newSaleResponses(sales),
	})
}

func (h *saleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p := principal(r)
	sale, err := h.saleSvc.GetSale(r.Context(), service.Viewer{UserID: p.UserID, Role: p.Role}, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, saleEnvelope{
		Success: true,
		Sale:    newSaleResponse(sale),
	})
}

func (h *saleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.saleSvc.Stats(r.Context(), time.Now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := salesStatsResponse{Success: true}
	res.Stats.Daily = newWindowStatsResponse(stats.Daily)
	res.Stats.Weekly = newWindowStatsResponse(stats.Weekly)
	res.Stats.Monthly = newWindowStatsResponse(stats.Monthly)
	res.Stats.AllTime = newWindowStatsResponse(stats.AllTime)

	h.writeJSON(w, r, http.StatusOK, res)
}

func newWindowStatsResponse(window service.SalesWindowStats) windowStatsResponse {
	return windowStatsResponse{
		Count:   window.Count,
		Revenue: money(window.Revenue),
	}
}
