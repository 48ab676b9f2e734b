package services

import (
	"testing"

	"github.com/smartsupply/delivery-app/internal/models"
)

func TestCustomerCreateRequiresName(t *testing.T) {
	db := setupLedgerDB(t)
	svc := NewCustomerService(db)

	if _, err := svc.Create(CustomerInput{Name: "   "}); KindOf(err) != KindInvalidRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}

func TestCustomerUpdateNeverTouchesBalance(t *testing.T) {
	db := setupLedgerDB(t)
	svc := NewCustomerService(db)

	created, err := svc.Create(CustomerInput{Name: "Ahmed", Phone: "0300", Area: "G-9"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&models.Customer{}).Where("id = ?", created.ID).
		Update("current_balance", dec(t, "150")).Error; err != nil {
		t.Fatalf("set balance: %v", err)
	}

	updated, err := svc.Update(created.ID, CustomerInput{Name: "Ahmed Khan", Phone: "0301", Area: "G-10"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ahmed Khan" || updated.Area != "G-10" {
		t.Fatalf("update not applied: %+v", updated)
	}
	mustEqual(t, updated.CurrentBalance, "150")
}

func TestCustomerDeactivateKeepsRow(t *testing.T) {
	db := setupLedgerDB(t)
	svc := NewCustomerService(db)

	created, err := svc.Create(CustomerInput{Name: "Ahmed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	deactivated, err := svc.SetActive(created.ID, false)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.IsActive {
		t.Fatalf("still active")
	}

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	if count != 1 {
		t.Fatalf("customer rows = %d, want 1", count)
	}

	actives, err := svc.List("active", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(actives) != 0 {
		t.Fatalf("deactivated customer still listed as active")
	}
}

func TestCustomerSearch(t *testing.T) {
	db := setupLedgerDB(t)
	svc := NewCustomerService(db)

	for _, in := range []CustomerInput{
		{Name: "Ahmed Khan", Phone: "03001234567", HouseNo: "12-B"},
		{Name: "Sara Malik", Phone: "03017654321"},
	} {
		if _, err := svc.Create(in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	byName, err := svc.List("", "ahmed")
	if err != nil {
		t.Fatalf("search name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Ahmed Khan" {
		t.Fatalf("name search: %+v", byName)
	}

	byPhone, err := svc.List("", "0301")
	if err != nil {
		t.Fatalf("search phone: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].Name != "Sara Malik" {
		t.Fatalf("phone search: %+v", byPhone)
	}

	byHouse, err := svc.List("", "12-b")
	if err != nil {
		t.Fatalf("search house: %v", err)
	}
	if len(byHouse) != 1 || byHouse[0].Name != "Ahmed Khan" {
		t.Fatalf("house search: %+v", byHouse)
	}
}

func TestWalkInSentinelReused(t *testing.T) {
	db := setupLedgerDB(t)
	svc := NewCustomerService(db)

	first, err := svc.WalkIn()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.WalkIn()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("sentinel duplicated: %d vs %d", first.ID, second.ID)
	}
	if !first.IsWalkIn() {
		t.Fatalf("sentinel not recognized")
	}
}
