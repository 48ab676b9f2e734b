package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/auth"
	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List: GET /notifications – the session user's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var items []models.Notification
	if err := h.db.Where("user_id = ?", uid).Order("created_at desc").Limit(100).Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	var unread int64
	h.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", uid, false).Count(&unread)
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "unread": unread})
}

// MarkRead: POST /notifications/{id}/read – only the recipient may mark.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, valid := pathID(r)
	if !valid {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, uid).Update("read", true)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead: POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := h.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", uid, false).Update("read", true).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}
