package handlers

import (
	"net/http"

	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/services"
)

type CustomerHandler struct {
	svc *services.CustomerService
}

func NewCustomerHandler(svc *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

type customerReq struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Whatsapp        string `json:"whatsapp"`
	HouseNo         string `json:"houseNo"`
	StreetNo        string `json:"streetNo"`
	Area            string `json:"area"`
	City            string `json:"city"`
	BottleCount     int    `json:"bottleCount"`
	AvgDaysToRefill int    `json:"avgDaysToRefill"`
}

func (req customerReq) input() services.CustomerInput {
	return services.CustomerInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Whatsapp:        req.Whatsapp,
		HouseNo:         req.HouseNo,
		StreetNo:        req.StreetNo,
		Area:            req.Area,
		City:            req.City,
		BottleCount:     req.BottleCount,
		AvgDaysToRefill: req.AvgDaysToRefill,
	}
}

// List: GET /customers?status=active&q=term
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.URL.Query().Get("status"), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": len(customers)})
}

// Create: POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	customer, err := h.svc.Create(req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

// Get: GET /customers/{id} – full order history included.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	customer, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// Update: PUT /customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req customerReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	customer, err := h.svc.Update(id, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// SetActive: POST /customers/{id}/activate and /customers/{id}/deactivate.
// There is no delete; ledger history must survive the customer leaving.
func (h *CustomerHandler) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
			return
		}
		customer, err := h.svc.SetActive(id, active)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, customer)
	}
}
