package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/timeutil"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Summary: GET /dashboard – today's operational snapshot for the admin UI.
func (h *DashboardHandler) Summary(w http.ResponseWriter, _ *http.Request) {
	start, end := timeutil.TodayBoundsUTC()

	var todays []models.Order
	if err := h.db.Where("created_at >= ? AND created_at < ?", start, end).Find(&todays).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	byStatus := map[string]int{}
	bottles := 0
	collected := decimal.Zero
	billed := decimal.Zero
	for _, o := range todays {
		byStatus[o.Status]++
		if o.Status == models.StatusCancelled {
			continue
		}
		bottles += o.NumberOfBottles
		collected = collected.Add(o.PaidAmount)
		billed = billed.Add(o.CurrentOrderAmount)
	}

	var customers []models.Customer
	if err := h.db.Where("is_active = ?", true).Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	receivable := decimal.Zero
	payable := decimal.Zero
	for _, c := range customers {
		switch c.CurrentBalance.Sign() {
		case 1:
			receivable = receivable.Add(c.CurrentBalance)
		case -1:
			payable = payable.Add(c.CurrentBalance.Abs())
		}
	}

	var recent []models.Order
	h.db.Preload("Customer").Preload("Rider").Order("created_at desc").Limit(10).Find(&recent)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"date":               timeutil.TodayDateStr(),
		"todayOrders":        len(todays),
		"todayBottles":       bottles,
		"todayCollected":     collected,
		"todayBilled":        billed,
		"ordersByStatus":     byStatus,
		"customerReceivable": receivable,
		"customerPayable":    payable,
		"activeCustomers":    len(customers),
		"recentOrders":       recent,
	})
}
