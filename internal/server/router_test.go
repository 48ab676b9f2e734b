package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/internal/models"
)

func setupRouterTestDB(t *testing.T) *gorm.DB {
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

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{Email: email, Password: string(hash), Role: models.RoleAdmin, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	return user
}

func TestHealthEndpoints(t *testing.T) {
	db := setupRouterTestDB(t)
	h := New(db)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	db := setupRouterTestDB(t)
	h := New(db)

	for _, path := range []string{"/orders", "/customers", "/closings/summary", "/dashboard"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, w.Code)
		}
	}
}

func TestLoginAndAdminAccess(t *testing.T) {
	db := setupRouterTestDB(t)
	seedAdmin(t, db, "admin@test", "secret123")
	h := New(db)

	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"admin@test","password":"secret123"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	h.ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", loginW.Code, loginW.Body.String())
	}
	cookies := loginW.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login set no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("customers: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []models.Customer `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("expected empty directory, got %d", resp.Total)
	}
}

func TestRiderForbiddenFromAdminRoutes(t *testing.T) {
	db := setupRouterTestDB(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := models.User{Email: "rider@test", Password: string(hash), Role: models.RoleRider, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("rider user: %v", err)
	}
	if err := db.Create(&models.RiderProfile{UserID: user.ID, Name: "Bilal", IsActive: true}).Error; err != nil {
		t.Fatalf("rider profile: %v", err)
	}
	h := New(db)

	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"rider@test","password":"secret123"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	h.ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", loginW.Code)
	}
	cookies := loginW.Result().Cookies()

	// Admin route is forbidden for riders.
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customers as rider: expected 403 got %d", w.Code)
	}

	// The rider's own queue works.
	mine := httptest.NewRequest(http.MethodGet, "/riders/me/orders", nil)
	for _, c := range cookies {
		mine.AddCookie(c)
	}
	mineW := httptest.NewRecorder()
	h.ServeHTTP(mineW, mine)
	if mineW.Code != http.StatusOK {
		t.Fatalf("my orders: expected 200 got %d body=%s", mineW.Code, mineW.Body.String())
	}
}
