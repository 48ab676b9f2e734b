package handlers

import (
	"net/http"
	"time"

	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/services"
	"github.com/smartsupply/delivery-app/internal/timeutil"
)

type ClosingHandler struct {
	svc *services.ClosingService
}

func NewClosingHandler(svc *services.ClosingService) *ClosingHandler {
	return &ClosingHandler{svc: svc}
}

// Summary: GET /closings/summary – today's figures without persisting.
func (h *ClosingHandler) Summary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.svc.Summary()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Save: POST /closings – closes the current business day.
func (h *ClosingHandler) Save(w http.ResponseWriter, _ *http.Request) {
	closing, err := h.svc.Save()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, closing)
}

// List: GET /closings
func (h *ClosingHandler) List(w http.ResponseWriter, _ *http.Request) {
	closings, err := h.svc.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": closings, "total": len(closings)})
}

// Get: GET /closings/{date} with date as 2026-09-01 (PKT calendar date).
func (h *ClosingHandler) Get(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", r.PathValue("date"), timeutil.PKT)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	closing, err := h.svc.GetByDate(day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, closing)
}
