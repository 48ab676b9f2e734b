package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/smartsupply/delivery-app/internal/models"
)

func TestClosingSummaryIdempotent(t *testing.T) {
	db := setupLedgerDB(t)
	rider := seedRider(t, db, "Bilal")
	customer := seedCustomer(t, db, "Ahmed", "0")
	orders := NewOrderService(db, nil)
	closings := NewClosingService(db)

	o, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: fmt.Sprint(customer.ID), RiderID: uintPtr(rider.ID), NumberOfBottles: 5, UnitPrice: dec(t, "20"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := orders.DeliverOrder(o.ID, dec(t, "60"), "cash", ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	first, err := closings.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	second, err := closings.Summary()
	if err != nil {
		t.Fatalf("summary again: %v", err)
	}
	if !first.TotalPaidAmount.Equal(second.TotalPaidAmount) ||
		!first.CustomerReceivable.Equal(second.CustomerReceivable) ||
		first.TotalOrders != second.TotalOrders ||
		first.TotalBottles != second.TotalBottles {
		t.Fatalf("summaries differ: %+v vs %+v", first, second)
	}
	mustEqual(t, first.TotalPaidAmount, "60")
	mustEqual(t, first.TotalCurrentOrderAmount, "100")
	mustEqual(t, first.BalanceClearedToday, "40")
	mustEqual(t, first.CustomerReceivable, "40")
	mustEqual(t, first.CustomerPayable, "0")
	if first.TotalBottles != 5 || first.TotalOrders != 1 {
		t.Fatalf("bottles=%d orders=%d", first.TotalBottles, first.TotalOrders)
	}
	if !first.CanClose || first.AlreadyExists {
		t.Fatalf("canClose=%v alreadyExists=%v", first.CanClose, first.AlreadyExists)
	}
}

// Scenario: the day cannot close while an order is still out for delivery.
func TestClosingBlockedByOpenOrder(t *testing.T) {
	db := setupLedgerDB(t)
	rider := seedRider(t, db, "Bilal")
	customer := seedCustomer(t, db, "Ahmed", "0")
	orders := NewOrderService(db, nil)
	closings := NewClosingService(db)

	if _, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: fmt.Sprint(customer.ID), RiderID: uintPtr(rider.ID), NumberOfBottles: 1, UnitPrice: dec(t, "20"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	summary, err := closings.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CanClose || summary.InProgressOrders != 1 {
		t.Fatalf("canClose=%v inProgress=%d", summary.CanClose, summary.InProgressOrders)
	}

	if _, err := closings.Save(); KindOf(err) != KindInvalidState {
		t.Fatalf("expected InvalidState, got %v", err)
	}
	var count int64
	db.Model(&models.DailyClosing{}).Count(&count)
	if count != 0 {
		t.Fatalf("closing rows = %d, want 0", count)
	}
}

func TestClosingSaveRoundTrip(t *testing.T) {
	db := setupLedgerDB(t)
	rider := seedRider(t, db, "Bilal")
	ahmed := seedCustomer(t, db, "Ahmed", "0")
	sara := seedCustomer(t, db, "Sara", "0")
	orders := NewOrderService(db, nil)
	closings := NewClosingService(db)

	o1, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: fmt.Sprint(ahmed.ID), RiderID: uintPtr(rider.ID), NumberOfBottles: 5, UnitPrice: dec(t, "20"),
	})
	if err != nil {
		t.Fatalf("o1: %v", err)
	}
	if _, err := orders.DeliverOrder(o1.ID, dec(t, "60"), "cash", ""); err != nil {
		t.Fatalf("deliver o1: %v", err)
	}
	o2, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: fmt.Sprint(sara.ID), RiderID: uintPtr(rider.ID), NumberOfBottles: 2, UnitPrice: dec(t, "20"),
	})
	if err != nil {
		t.Fatalf("o2: %v", err)
	}
	if _, err := orders.DeliverOrder(o2.ID, dec(t, "50"), "online", ""); err != nil {
		t.Fatalf("deliver o2: %v", err)
	}
	w, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: WalkInRef, NumberOfBottles: 2, UnitPrice: dec(t, "25"), OrderType: models.TypeWalkIn,
	})
	if err != nil {
		t.Fatalf("walk-in: %v", err)
	}
	if _, err := orders.CompleteWalkInOrder(w.ID, dec(t, "50"), "cash", ""); err != nil {
		t.Fatalf("complete walk-in: %v", err)
	}
	// Ahmed clears the remaining 40.
	if _, err := orders.ClearBill(ahmed.ID, dec(t, "40"), "cash", "", ""); err != nil {
		t.Fatalf("clear bill: %v", err)
	}

	saved, err := closings.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := closings.GetByDate(time.Now())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != saved.ID {
		t.Fatalf("closing id %d, want %d", got.ID, saved.ID)
	}
	// 60 + 50 + 50 + 40 collected across the day.
	mustEqual(t, got.TotalPaidAmount, "200")
	// 100 + 40 + 50; the clear-bill order carries no currentOrderAmount.
	mustEqual(t, got.TotalCurrentOrderAmount, "190")
	mustEqual(t, got.WalkInAmount, "50")
	mustEqual(t, got.ClearBillAmount, "40")
	mustEqual(t, got.CustomerPayable, "10") // Sara overpaid by 10
	mustEqual(t, got.CustomerReceivable, "0")
	if got.TotalOrders != 4 || got.TotalBottles != 9 {
		t.Fatalf("orders=%d bottles=%d", got.TotalOrders, got.TotalBottles)
	}

	if len(got.Riders) != 1 {
		t.Fatalf("rider rows = %d", len(got.Riders))
	}
	r := got.Riders[0]
	if r.RiderID != rider.ID || r.RiderName != "Bilal" || r.Orders != 2 || r.Bottles != 7 {
		t.Fatalf("rider row %+v", r)
	}
	mustEqual(t, r.PaidAmount, "110")

	methods := map[string]models.DailyClosingPayment{}
	for _, p := range got.Payments {
		methods[p.Method] = p
	}
	cash, ok := methods[models.MethodCash]
	if !ok || cash.Orders != 3 {
		t.Fatalf("cash row %+v", methods)
	}
	mustEqual(t, cash.PaidAmount, "150")
	online, ok := methods[models.MethodOnline]
	if !ok || online.Orders != 1 {
		t.Fatalf("online row %+v", methods)
	}
	mustEqual(t, online.PaidAmount, "50")
}

// Re-saving the same day updates the row in place and rebuilds the
// breakdowns instead of accumulating duplicates.
func TestClosingResaveReplacesBreakdowns(t *testing.T) {
	db := setupLedgerDB(t)
	rider := seedRider(t, db, "Bilal")
	customer := seedCustomer(t, db, "Ahmed", "0")
	orders := NewOrderService(db, nil)
	closings := NewClosingService(db)

	o, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: fmt.Sprint(customer.ID), RiderID: uintPtr(rider.ID), NumberOfBottles: 1, UnitPrice: dec(t, "20"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := orders.DeliverOrder(o.ID, dec(t, "20"), "cash", ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	first, err := closings.Save()
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	summary, err := closings.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.AlreadyExists {
		t.Fatalf("expected AlreadyExists after save")
	}

	// More business after the first save, then close again.
	w, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: WalkInRef, NumberOfBottles: 3, UnitPrice: dec(t, "20"), OrderType: models.TypeWalkIn,
	})
	if err != nil {
		t.Fatalf("walk-in: %v", err)
	}
	if _, err := orders.CompleteWalkInOrder(w.ID, dec(t, "60"), "cash", ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	second, err := closings.Save()
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-save created a new row: %d vs %d", second.ID, first.ID)
	}

	got, err := closings.GetByDate(time.Now())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	mustEqual(t, got.TotalPaidAmount, "80")
	if got.TotalOrders != 2 || got.TotalBottles != 4 {
		t.Fatalf("orders=%d bottles=%d", got.TotalOrders, got.TotalBottles)
	}
	var riderRows, paymentRows int64
	db.Model(&models.DailyClosingRider{}).Count(&riderRows)
	db.Model(&models.DailyClosingPayment{}).Count(&paymentRows)
	if riderRows != 1 || paymentRows != 1 {
		t.Fatalf("rider rows=%d payment rows=%d", riderRows, paymentRows)
	}
}

func TestClosingExcludesCancelledOrders(t *testing.T) {
	db := setupLedgerDB(t)
	rider := seedRider(t, db, "Bilal")
	customer := seedCustomer(t, db, "Ahmed", "0")
	orders := NewOrderService(db, nil)
	closings := NewClosingService(db)

	o, err := orders.CreateOrder(CreateOrderInput{
		CustomerRef: fmt.Sprint(customer.ID), RiderID: uintPtr(rider.ID), NumberOfBottles: 5, UnitPrice: dec(t, "20"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := orders.CancelOrder(o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	summary, err := closings.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalOrders != 0 || summary.TotalBottles != 0 {
		t.Fatalf("cancelled order counted: %+v", summary)
	}
	if !summary.CanClose {
		t.Fatalf("cancelled order should not block closing")
	}
}

func TestClosingGetByDateMissing(t *testing.T) {
	db := setupLedgerDB(t)
	closings := NewClosingService(db)

	if _, err := closings.GetByDate(time.Now()); KindOf(err) != KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
