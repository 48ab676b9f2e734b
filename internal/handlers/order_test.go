package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/services"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.RiderProfile{}, &models.AdminProfile{},
		&models.Customer{}, &models.Order{}, &models.Notification{},
		&models.DailyClosing{}, &models.DailyClosingRider{}, &models.DailyClosingPayment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrderFixtures(t *testing.T, db *gorm.DB) (rider models.RiderProfile, customer models.Customer) {
	t.Helper()
	user := models.User{Email: "rider@test", Password: "x", Role: models.RoleRider, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("rider user: %v", err)
	}
	rider = models.RiderProfile{UserID: user.ID, Name: "Bilal", IsActive: true}
	if err := db.Create(&rider).Error; err != nil {
		t.Fatalf("rider: %v", err)
	}
	customer = models.Customer{Name: "Ahmed", Phone: "0300", IsActive: true}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	return
}

func TestOrderCreateDeliverJSON(t *testing.T) {
	db := setupHandlerTestDB(t)
	rider, customer := seedOrderFixtures(t, db)
	h := NewOrderHandler(services.NewOrderService(db, nil))

	body := fmt.Sprintf(`{"customerId":%d,"riderId":%d,"numberOfBottles":5,"unitPrice":20}`, customer.ID, rider.ID)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != models.StatusAssigned {
		t.Fatalf("status = %s", created.Status)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("totalAmount = %s", created.TotalAmount)
	}

	// Deliver with partial payment
	delReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/deliver", created.ID),
		strings.NewReader(`{"paidAmount":60,"paymentMethod":"CASH"}`))
	delReq.Header.Set("Content-Type", "application/json")
	delReq.SetPathValue("id", fmt.Sprint(created.ID))
	delW := httptest.NewRecorder()
	h.Deliver(delW, delReq)
	if delW.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", delW.Code, delW.Body.String())
	}
	var delivered models.Order
	if err := json.Unmarshal(delW.Body.Bytes(), &delivered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if delivered.PaymentStatus != models.PaymentPartial {
		t.Fatalf("payment status = %s", delivered.PaymentStatus)
	}
	if !delivered.Receivable.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("receivable = %s", delivered.Receivable)
	}

	// Delivering again must surface the invalid state as 409.
	againReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/deliver", created.ID),
		strings.NewReader(`{"paidAmount":60,"paymentMethod":"CASH"}`))
	againReq.Header.Set("Content-Type", "application/json")
	againReq.SetPathValue("id", fmt.Sprint(created.ID))
	againW := httptest.NewRecorder()
	h.Deliver(againW, againReq)
	if againW.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", againW.Code, againW.Body.String())
	}
}

func TestOrderCreateValidationError(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, customer := seedOrderFixtures(t, db)
	h := NewOrderHandler(services.NewOrderService(db, nil))

	// delivery order without a rider
	body := fmt.Sprintf(`{"customerId":%d,"numberOfBottles":5,"unitPrice":20}`, customer.ID)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestClearBillEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, customer := seedOrderFixtures(t, db)
	if err := db.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Update("current_balance", decimal.RequireFromString("100")).Error; err != nil {
		t.Fatalf("set balance: %v", err)
	}
	h := NewOrderHandler(services.NewOrderService(db, nil))

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/customers/%d/clear-bill", customer.ID),
		strings.NewReader(`{"paidAmount":100,"paymentMethod":"CASH"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", fmt.Sprint(customer.ID))
	w := httptest.NewRecorder()
	h.ClearBill(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.OrderType != models.TypeClearBill || order.PaymentStatus != models.PaymentPaid {
		t.Fatalf("type=%s payment=%s", order.OrderType, order.PaymentStatus)
	}

	var reloaded models.Customer
	if err := db.First(&reloaded, customer.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.CurrentBalance.IsZero() {
		t.Fatalf("balance = %s, want 0", reloaded.CurrentBalance)
	}
}
