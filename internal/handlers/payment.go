package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/timeutil"
)

// PaymentHandler exposes read-only payment views over settled orders.
// Payments are not separate rows; they live on the orders that took them.
type PaymentHandler struct {
	db *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

// List: GET /payments?date=2026-09-01&method=CASH
// Defaults to today (PKT business day). Only settled, non-cancelled orders
// carry payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, timeutil.PKT)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		day = parsed
	}
	start, end := timeutil.DayBoundsUTC(day)

	q := h.db.Preload("Customer").Preload("Rider").
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("status IN ?", []string{models.StatusDelivered, models.StatusCompleted}).
		Order("created_at desc")
	if m := r.URL.Query().Get("method"); m != "" {
		q = q.Where("payment_method = ?", m)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	totalPaid := decimal.Zero
	byMethod := map[string]decimal.Decimal{}
	for _, o := range orders {
		totalPaid = totalPaid.Add(o.PaidAmount)
		byMethod[o.PaymentMethod] = byMethod[o.PaymentMethod].Add(o.PaidAmount)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"date":      timeutil.DateStr(day),
		"items":     orders,
		"total":     len(orders),
		"totalPaid": totalPaid,
		"byMethod":  byMethod,
	})
}
