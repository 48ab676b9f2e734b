package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/auth"
	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/handlers"
	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/notify"
	"github.com/smartsupply/delivery-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Sessions are only honored while the user still exists and is active.
	auth.SetUserResolver(func(_ context.Context, uid uint) (string, bool) {
		var user models.User
		if err := db.Select("role", "is_active").First(&user, uid).Error; err != nil {
			return "", false
		}
		return user.Role, user.IsActive
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	dispatcher := notify.NewDBDispatcher(db)
	orderSvc := services.NewOrderService(db, dispatcher)
	customerSvc := services.NewCustomerService(db)
	closingSvc := services.NewClosingService(db)

	authHandler := handlers.NewAuthHandler(db)
	orders := handlers.NewOrderHandler(orderSvc)
	customers := handlers.NewCustomerHandler(customerSvc)
	riders := handlers.NewRiderHandler(db)
	payments := handlers.NewPaymentHandler(db)
	closings := handlers.NewClosingHandler(closingSvc)
	dashboard := handlers.NewDashboardHandler(db)
	notifications := handlers.NewNotificationHandler(db)

	// any authenticated user
	authed := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	// admin-only routes carry out ledger mutations and directory management
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireRole(models.RoleAdmin, h))
	}

	// Auth
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.Handle("GET /auth/me", authed(authHandler.Me))
	mux.Handle("POST /auth/password", authed(authHandler.ChangePassword))

	// Orders
	mux.Handle("GET /orders", authed(orders.List))
	mux.Handle("POST /orders", admin(orders.Create))
	mux.Handle("GET /orders/statuses", authed(orders.Statuses))
	mux.Handle("GET /orders/{id}", authed(orders.Get))
	mux.Handle("PUT /orders/{id}", admin(orders.Amend))
	mux.Handle("POST /orders/{id}/deliver", authed(orders.Deliver))
	mux.Handle("POST /orders/{id}/complete", admin(orders.Complete))
	mux.Handle("POST /orders/{id}/cancel", admin(orders.Cancel))

	// Customers
	mux.Handle("GET /customers", admin(customers.List))
	mux.Handle("POST /customers", admin(customers.Create))
	mux.Handle("GET /customers/{id}", admin(customers.Get))
	mux.Handle("PUT /customers/{id}", admin(customers.Update))
	mux.Handle("POST /customers/{id}/activate", admin(customers.SetActive(true)))
	mux.Handle("POST /customers/{id}/deactivate", admin(customers.SetActive(false)))
	mux.Handle("POST /customers/{id}/clear-bill", admin(orders.ClearBill))

	// Riders
	mux.Handle("GET /riders", admin(riders.List))
	mux.Handle("POST /riders", admin(riders.Create))
	mux.Handle("GET /riders/me/orders", authed(riders.MyOrders))
	mux.Handle("GET /riders/{id}", admin(riders.Get))
	mux.Handle("POST /riders/{id}/activate", admin(riders.SetActive(true)))
	mux.Handle("POST /riders/{id}/deactivate", admin(riders.SetActive(false)))

	// Payments (read-only views over settled orders)
	mux.Handle("GET /payments", admin(payments.List))

	// Daily closings
	mux.Handle("GET /closings/summary", admin(closings.Summary))
	mux.Handle("POST /closings", admin(closings.Save))
	mux.Handle("GET /closings", admin(closings.List))
	mux.Handle("GET /closings/{date}", admin(closings.Get))

	// Dashboard
	mux.Handle("GET /dashboard", admin(dashboard.Summary))

	// Notifications
	mux.Handle("GET /notifications", authed(notifications.List))
	mux.Handle("POST /notifications/read-all", authed(notifications.MarkAllRead))
	mux.Handle("POST /notifications/{id}/read", authed(notifications.MarkRead))

	return mux
}
