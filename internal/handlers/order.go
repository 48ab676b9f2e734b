package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/services"
)

type OrderHandler struct {
	svc *services.OrderService
}

func NewOrderHandler(svc *services.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create: POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID      uint            `json:"customerId"`
		RiderID         *uint           `json:"riderId"`
		NumberOfBottles int             `json:"numberOfBottles"`
		UnitPrice       decimal.Decimal `json:"unitPrice"`
		OrderType       string          `json:"orderType"`
		Priority        string          `json:"priority"`
		Notes           string          `json:"notes"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ref := fmt.Sprint(req.CustomerID)
	if req.CustomerID == 0 {
		// Only walk-in orders may omit the customer; they book against the sentinel.
		if !strings.EqualFold(req.OrderType, models.TypeWalkIn) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"customerId": "required"})
			return
		}
		ref = services.WalkInRef
	}
	order, err := h.svc.CreateOrder(services.CreateOrderInput{
		CustomerRef:     ref,
		RiderID:         req.RiderID,
		NumberOfBottles: req.NumberOfBottles,
		UnitPrice:       req.UnitPrice,
		OrderType:       req.OrderType,
		Priority:        req.Priority,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// List: GET /orders?status=...&paymentStatus=...
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.URL.Query().Get("status"), r.URL.Query().Get("paymentStatus"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": orders, "total": len(orders)})
}

// Get: GET /orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := h.svc.GetOrder(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

type settleReq struct {
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentNotes  string          `json:"paymentNotes"`
}

// Deliver: POST /orders/{id}/deliver – delivery orders only.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req settleReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.svc.DeliverOrder(id, req.PaidAmount, req.PaymentMethod, req.PaymentNotes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Complete: POST /orders/{id}/complete – walk-in orders only.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req settleReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.svc.CompleteWalkInOrder(id, req.PaidAmount, req.PaymentMethod, req.PaymentNotes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Cancel: POST /orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := h.svc.CancelOrder(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Amend: PUT /orders/{id}
func (h *OrderHandler) Amend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		NumberOfBottles int             `json:"numberOfBottles"`
		UnitPrice       decimal.Decimal `json:"unitPrice"`
		Notes           *string         `json:"notes"`
		Priority        *string         `json:"priority"`
		RiderID         *uint           `json:"riderId"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.svc.AmendOrder(id, services.AmendOrderInput{
		NumberOfBottles: req.NumberOfBottles,
		UnitPrice:       req.UnitPrice,
		Notes:           req.Notes,
		Priority:        req.Priority,
		RiderID:         req.RiderID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// ClearBill: POST /customers/{id}/clear-bill – settles the outstanding
// balance by booking a CLEARBILL order.
func (h *OrderHandler) ClearBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		PaidAmount    decimal.Decimal `json:"paidAmount"`
		PaymentMethod string          `json:"paymentMethod"`
		PaymentNotes  string          `json:"paymentNotes"`
		Priority      string          `json:"priority"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	order, err := h.svc.ClearBill(id, req.PaidAmount, req.PaymentMethod, req.PaymentNotes, req.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// statuses echoed to clients building filter UIs
var orderStatuses = []string{
	models.StatusCreated, models.StatusPending, models.StatusAssigned,
	models.StatusInProgress, models.StatusDelivered, models.StatusCompleted,
	models.StatusCancelled,
}

// Statuses: GET /orders/statuses
func (h *OrderHandler) Statuses(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"statuses": orderStatuses})
}
