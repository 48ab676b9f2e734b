package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/auth"
	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/timeutil"
)

// RiderHandler manages rider accounts. A rider is a login user plus a
// profile row; both are created together.
type RiderHandler struct {
	db *gorm.DB
}

func NewRiderHandler(db *gorm.DB) *RiderHandler {
	return &RiderHandler{db: db}
}

// List: GET /riders – profiles with today's delivery counts.
func (h *RiderHandler) List(w http.ResponseWriter, r *http.Request) {
	var riders []models.RiderProfile
	q := h.db.Order("name")
	if strings.EqualFold(r.URL.Query().Get("status"), "active") {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&riders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	start, end := timeutil.TodayBoundsUTC()
	type stat struct {
		RiderID uint
		Orders  int
		Bottles int
	}
	var stats []stat
	h.db.Model(&models.Order{}).
		Select("rider_id, count(*) as orders, coalesce(sum(number_of_bottles),0) as bottles").
		Where("rider_id IS NOT NULL AND created_at >= ? AND created_at < ? AND status <> ?", start, end, models.StatusCancelled).
		Group("rider_id").Scan(&stats)
	byRider := map[uint]stat{}
	for _, s := range stats {
		byRider[s.RiderID] = s
	}

	items := make([]map[string]any, 0, len(riders))
	for _, rider := range riders {
		s := byRider[rider.ID]
		items = append(items, map[string]any{
			"rider":        rider,
			"todayOrders":  s.Orders,
			"todayBottles": s.Bottles,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// Create: POST /riders – creates the login user and profile in one transaction.
func (h *RiderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Phone     string `json:"phone"`
		VehicleNo string `json:"vehicleNo"`
		Area      string `json:"area"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
			map[string]string{"name": "required", "email": "required", "password": "min_length_8"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var profile models.RiderProfile
	err = h.db.Transaction(func(tx *gorm.DB) error {
		user := models.User{Email: req.Email, Password: string(hash), Role: models.RoleRider, IsActive: true}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = models.RiderProfile{
			UserID:    user.ID,
			Name:      req.Name,
			Phone:     req.Phone,
			VehicleNo: req.VehicleNo,
			Area:      req.Area,
			IsActive:  true,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			httpx.JSONError(w, http.StatusConflict, "email_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

// Get: GET /riders/{id} – profile plus recent orders.
func (h *RiderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var rider models.RiderProfile
	if err := h.db.First(&rider, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var orders []models.Order
	h.db.Preload("Customer").Where("rider_id = ?", rider.ID).Order("created_at desc").Limit(20).Find(&orders)
	httpx.JSON(w, http.StatusOK, map[string]any{"rider": rider, "recentOrders": orders})
}

// SetActive: POST /riders/{id}/activate and /riders/{id}/deactivate.
// Deactivation disables the login too but keeps the history.
func (h *RiderHandler) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
			return
		}
		var rider models.RiderProfile
		if err := h.db.First(&rider, id).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		err := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&rider).Update("is_active", active).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", rider.UserID).Update("is_active", active).Error
		})
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		rider.IsActive = active
		httpx.JSON(w, http.StatusOK, rider)
	}
}

// MyOrders: GET /riders/me/orders – the authenticated rider's open orders.
func (h *RiderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var rider models.RiderProfile
	if err := h.db.Where("user_id = ?", uid).First(&rider).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var orders []models.Order
	err := h.db.Preload("Customer").
		Where("rider_id = ? AND status IN ?", rider.ID, []string{models.StatusAssigned, models.StatusInProgress}).
		Order("priority desc, created_at").Find(&orders).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": orders, "total": len(orders)})
}
