package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartsupply/delivery-app/internal/ledger"
	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/notify"
)

// WalkInRef is the sentinel customer reference accepted by CreateOrder for
// anonymous walk-in sales. It resolves to the singleton walk-in customer
// record, looked up by name.
const WalkInRef = "walkin"

// OrderService is the order-ledger transaction engine. Every mutating
// operation runs as one database transaction with the customer row locked
// FOR UPDATE, so the order's financial fields and the customer's running
// balance can never diverge and two concurrent operations on the same
// customer cannot both read a stale balance.
type OrderService struct {
	DB       *gorm.DB
	Notifier notify.Dispatcher
}

func NewOrderService(db *gorm.DB, n notify.Dispatcher) *OrderService {
	if n == nil {
		n = notify.Nop{}
	}
	return &OrderService{DB: db, Notifier: n}
}

type CreateOrderInput struct {
	CustomerRef     string // numeric customer id, or WalkInRef
	RiderID         *uint
	NumberOfBottles int
	UnitPrice       decimal.Decimal
	OrderType       string
	Priority        string
	Notes           string
}

type AmendOrderInput struct {
	NumberOfBottles int
	UnitPrice       decimal.Decimal
	Notes           *string
	Priority        *string
	RiderID         *uint
}

// CreateOrder books a new order and moves the customer's balance to the
// post-order total in the same transaction. A DELIVERY order requires a
// rider and starts ASSIGNED; a WALKIN order forbids one and starts CREATED.
func (s *OrderService) CreateOrder(in CreateOrderInput) (*models.Order, error) {
	orderType := upperOr(in.OrderType, models.TypeDelivery)
	priority := upperOr(in.Priority, models.PriorityNormal)
	if !ledger.ValidType(orderType) {
		return nil, InvalidRequestf("unknown order type %q", in.OrderType)
	}
	if orderType == models.TypeClearBill {
		return nil, InvalidRequestf("clear-bill orders are created through the clear-bill operation")
	}
	if !ledger.ValidPriority(priority) {
		return nil, InvalidRequestf("unknown priority %q", in.Priority)
	}
	if in.NumberOfBottles <= 0 {
		return nil, InvalidRequestf("numberOfBottles must be positive")
	}
	if in.UnitPrice.Sign() < 0 {
		return nil, InvalidRequestf("unitPrice cannot be negative")
	}
	if orderType == models.TypeDelivery && in.RiderID == nil {
		return nil, InvalidRequestf("riderId is required for delivery orders")
	}
	if orderType == models.TypeWalkIn && in.RiderID != nil {
		return nil, InvalidRequestf("walk-in orders cannot have a rider")
	}

	var order models.Order
	var riderUserID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := s.resolveCustomerForUpdate(tx, in.CustomerRef)
		if err != nil {
			return err
		}
		if in.RiderID != nil {
			var rider models.RiderProfile
			if err := tx.First(&rider, *in.RiderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NotFoundf("rider %d not found", *in.RiderID)
				}
				return StoreFailure(err)
			}
			riderUserID = rider.UserID
		}

		snapshot := customer.CurrentBalance
		amount := ledger.OrderAmount(in.NumberOfBottles, in.UnitPrice)
		total := snapshot.Add(amount)

		order = models.Order{
			CustomerID:         customer.ID,
			RiderID:            in.RiderID,
			OrderType:          orderType,
			Status:             ledger.InitialStatus(orderType),
			Priority:           priority,
			NumberOfBottles:    in.NumberOfBottles,
			UnitPrice:          in.UnitPrice,
			CurrentOrderAmount: amount,
			CustomerBalance:    snapshot,
			TotalAmount:        total,
			Notes:              in.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return StoreFailure(err)
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("current_balance", total).Error; err != nil {
			return StoreFailure(err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	if riderUserID != 0 {
		s.Notifier.Notify(riderUserID, models.NotifyOrderAssigned, map[string]any{
			"orderId":    order.ID,
			"customerId": order.CustomerID,
			"priority":   order.Priority,
			"bottles":    order.NumberOfBottles,
		})
	}
	return &order, nil
}

// DeliverOrder finalizes a delivery order: it settles the payment against
// the order's total and subtracts the paid amount from the customer's
// balance. Legal from any non-terminal status of a DELIVERY order.
func (s *OrderService) DeliverOrder(orderID uint, paid decimal.Decimal, method, notes string) (*models.Order, error) {
	return s.finalize(orderID, paid, method, notes, models.StatusDelivered, func(o *models.Order) error {
		if !ledger.CanDeliver(o.OrderType, o.Status) {
			return InvalidStatef("order %d (%s, %s) cannot be delivered", o.ID, o.OrderType, o.Status)
		}
		return nil
	})
}

// CompleteWalkInOrder finalizes a walk-in order; legal only while the order
// is still CREATED.
func (s *OrderService) CompleteWalkInOrder(orderID uint, paid decimal.Decimal, method, notes string) (*models.Order, error) {
	return s.finalize(orderID, paid, method, notes, models.StatusCompleted, func(o *models.Order) error {
		if !ledger.CanCompleteWalkIn(o.OrderType, o.Status) {
			return InvalidStatef("order %d (%s, %s) cannot be completed", o.ID, o.OrderType, o.Status)
		}
		return nil
	})
}

func (s *OrderService) finalize(orderID uint, paid decimal.Decimal, method, notes, target string, check func(*models.Order) error) (*models.Order, error) {
	method, err := paymentMethod(method)
	if err != nil {
		return nil, err
	}

	var order models.Order
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := s.lockOrderCustomer(tx, orderID, &order)
		if err != nil {
			return err
		}
		if err := check(&order); err != nil {
			return err
		}

		st := ledger.Settle(order.TotalAmount, paid)
		newBalance := customer.CurrentBalance.Sub(paid)
		now := time.Now().UTC()

		updates := map[string]any{
			"status":         target,
			"paid_amount":    paid,
			"payment_status": st.PaymentStatus,
			"payment_method": method,
			"payment_notes":  notes,
			"receivable":     st.Receivable,
			"payable":        st.Payable,
			"delivered_at":   now,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return StoreFailure(err)
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("current_balance", newBalance).Error; err != nil {
			return StoreFailure(err)
		}
		return tx.First(&order, order.ID).Error
	})
	if txErr != nil {
		return nil, asServiceError(txErr)
	}

	s.notifyAdmins(models.NotifyOrderDelivered, map[string]any{
		"orderId":       order.ID,
		"customerId":    order.CustomerID,
		"paymentStatus": order.PaymentStatus,
	})
	return &order, nil
}

// CancelOrder reverts the customer's balance to the snapshot taken when the
// order was created. That revert is only sound for the customer's newest
// live order, so cancellation is refused while newer non-cancelled orders
// exist on the same customer.
func (s *OrderService) CancelOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := s.lockOrderCustomer(tx, orderID, &order)
		if err != nil {
			return err
		}
		if !ledger.CanCancel(order.Status) {
			return InvalidStatef("order %d cannot be cancelled from status %s", order.ID, order.Status)
		}
		if err := s.requireNewestLiveOrder(tx, &order, "cancel"); err != nil {
			return err
		}
		if err := tx.Model(&order).Update("status", models.StatusCancelled).Error; err != nil {
			return StoreFailure(err)
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("current_balance", order.CustomerBalance).Error; err != nil {
			return StoreFailure(err)
		}
		return tx.First(&order, order.ID).Error
	})
	if err != nil {
		return nil, asServiceError(err)
	}
	return &order, nil
}

// AmendOrder recomputes the order's amounts from a new bottle count and
// unit price against the order's original balance snapshot, then moves the
// customer's balance to the new total. Only editable statuses qualify, and
// the same newest-live-order rule as cancellation applies.
func (s *OrderService) AmendOrder(orderID uint, in AmendOrderInput) (*models.Order, error) {
	if in.NumberOfBottles <= 0 {
		return nil, InvalidRequestf("numberOfBottles must be positive")
	}
	if in.UnitPrice.Sign() < 0 {
		return nil, InvalidRequestf("unitPrice cannot be negative")
	}
	var priority string
	if in.Priority != nil {
		priority = upperOr(*in.Priority, models.PriorityNormal)
		if !ledger.ValidPriority(priority) {
			return nil, InvalidRequestf("unknown priority %q", *in.Priority)
		}
	}

	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := s.lockOrderCustomer(tx, orderID, &order)
		if err != nil {
			return err
		}
		if !ledger.Editable(order.Status) {
			return InvalidStatef("order %d cannot be amended from status %s", order.ID, order.Status)
		}
		if err := s.requireNewestLiveOrder(tx, &order, "amend"); err != nil {
			return err
		}

		// Recompute against the original snapshot; the snapshot itself
		// never changes.
		amount := ledger.OrderAmount(in.NumberOfBottles, in.UnitPrice)
		total := order.CustomerBalance.Add(amount)

		updates := map[string]any{
			"number_of_bottles":    in.NumberOfBottles,
			"unit_price":           in.UnitPrice,
			"current_order_amount": amount,
			"total_amount":         total,
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if in.Priority != nil {
			updates["priority"] = priority
		}
		if in.RiderID != nil {
			if order.OrderType != models.TypeDelivery {
				return InvalidRequestf("only delivery orders can have a rider")
			}
			var rider models.RiderProfile
			if err := tx.First(&rider, *in.RiderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NotFoundf("rider %d not found", *in.RiderID)
				}
				return StoreFailure(err)
			}
			updates["rider_id"] = *in.RiderID
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return StoreFailure(err)
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("current_balance", total).Error; err != nil {
			return StoreFailure(err)
		}
		return tx.First(&order, order.ID).Error
	})
	if err != nil {
		return nil, asServiceError(err)
	}
	return &order, nil
}

// ClearBill settles an existing balance without adding bottle charges. It
// records a CLEARBILL order born COMPLETED whose snapshot is the pre-clear
// balance, and moves the customer's balance by the sign-adjusted payment.
func (s *OrderService) ClearBill(customerID uint, paid decimal.Decimal, method, notes, priority string) (*models.Order, error) {
	method, err := paymentMethod(method)
	if err != nil {
		return nil, err
	}
	prio := upperOr(priority, models.PriorityNormal)
	if !ledger.ValidPriority(prio) {
		return nil, InvalidRequestf("unknown priority %q", priority)
	}
	if paid.Sign() <= 0 {
		return nil, InvalidRequestf("paidAmount must be positive")
	}

	var order models.Order
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := lockCustomer(tx, customerID)
		if err != nil {
			return err
		}
		if customer.CurrentBalance.IsZero() {
			return InvalidStatef("customer %d has no outstanding balance to clear", customerID)
		}

		st, adjusted, newBalance := ledger.SettleBalance(customer.CurrentBalance, paid)
		now := time.Now().UTC()
		order = models.Order{
			CustomerID:      customer.ID,
			OrderType:       models.TypeClearBill,
			Status:          models.StatusCompleted,
			Priority:        prio,
			CustomerBalance: customer.CurrentBalance,
			TotalAmount:     customer.CurrentBalance.Abs(),
			PaidAmount:      adjusted,
			PaymentStatus:   st.PaymentStatus,
			PaymentMethod:   method,
			PaymentNotes:    notes,
			Receivable:      st.Receivable,
			Payable:         st.Payable,
			DeliveredAt:     &now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return StoreFailure(err)
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Update("current_balance", newBalance).Error; err != nil {
			return StoreFailure(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, asServiceError(txErr)
	}
	return &order, nil
}

// GetOrder loads an order with its customer and rider.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Customer").Preload("Rider").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("order %d not found", orderID)
		}
		return nil, StoreFailure(err)
	}
	return &order, nil
}

// ListOrders returns orders newest first, optionally filtered by status or
// payment status.
func (s *OrderService) ListOrders(status, paymentStatus string) ([]models.Order, error) {
	q := s.DB.Preload("Customer").Preload("Rider").Order("created_at desc")
	if status != "" && !strings.EqualFold(status, "all") {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	if paymentStatus != "" && !strings.EqualFold(paymentStatus, "all") {
		q = q.Where("payment_status = ?", strings.ToUpper(paymentStatus))
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return orders, nil
}

// lockOrderCustomer loads the order, then acquires the FOR UPDATE lock on
// its customer, then re-reads the order under that lock. The re-read
// matters: between the first read and the lock another transaction may
// have finalized or cancelled the order, and every financial mutation of
// an order happens under its customer's lock.
func (s *OrderService) lockOrderCustomer(tx *gorm.DB, orderID uint, order *models.Order) (*models.Customer, error) {
	if err := tx.First(order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("order %d not found", orderID)
		}
		return nil, StoreFailure(err)
	}
	customer, err := lockCustomer(tx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := tx.First(order, orderID).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return customer, nil
}

// requireNewestLiveOrder refuses snapshot-revert operations while newer
// non-cancelled orders exist on the same customer: reverting to this
// order's snapshot would wipe out their effect on the balance.
func (s *OrderService) requireNewestLiveOrder(tx *gorm.DB, order *models.Order, op string) error {
	var newer int64
	err := tx.Model(&models.Order{}).
		Where("customer_id = ? AND id > ? AND status <> ?", order.CustomerID, order.ID, models.StatusCancelled).
		Count(&newer).Error
	if err != nil {
		return StoreFailure(err)
	}
	if newer > 0 {
		return InvalidStatef("cannot %s order %d: %d newer order(s) exist for this customer", op, order.ID, newer)
	}
	return nil
}

func (s *OrderService) resolveCustomerForUpdate(tx *gorm.DB, ref string) (*models.Customer, error) {
	ref = strings.TrimSpace(ref)
	if strings.EqualFold(ref, WalkInRef) {
		return walkInCustomerForUpdate(tx)
	}
	id, err := parseID(ref)
	if err != nil {
		return nil, InvalidRequestf("invalid customer id %q", ref)
	}
	return lockCustomer(tx, id)
}

func (s *OrderService) notifyAdmins(kind string, payload map[string]any) {
	var ids []uint
	if err := s.DB.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Pluck("id", &ids).Error; err != nil {
		// Notification fan-out is best effort; the ledger mutation is
		// already committed.
		return
	}
	for _, id := range ids {
		s.Notifier.Notify(id, kind, payload)
	}
}

// forUpdate adds the row lock that serializes ledger operations per
// customer. SQLite has no FOR UPDATE grammar; it serializes writing
// transactions on its own, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockCustomer reads the customer row FOR UPDATE, serializing all ledger
// operations on the same customer for the rest of the transaction.
func lockCustomer(tx *gorm.DB, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := forUpdate(tx).First(&customer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("customer %d not found", id)
		}
		return nil, StoreFailure(err)
	}
	return &customer, nil
}

// walkInCustomerForUpdate resolves the walk-in sentinel by name, creating
// it on first use, and returns it locked FOR UPDATE.
func walkInCustomerForUpdate(tx *gorm.DB) (*models.Customer, error) {
	var customer models.Customer
	err := forUpdate(tx).
		Where("name = ?", models.WalkInCustomerName).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, StoreFailure(err)
	}
	customer = models.Customer{Name: models.WalkInCustomerName, IsActive: true}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return &customer, nil
}

func paymentMethod(m string) (string, error) {
	m = upperOr(m, models.MethodCash)
	switch m {
	case models.MethodCash, models.MethodOnline, models.MethodBankCard:
		return m, nil
	}
	return "", InvalidRequestf("unknown payment method %q", m)
}

func upperOr(v, def string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

// asServiceError keeps typed service errors intact and wraps anything else
// (driver failures, commit errors) as a retryable store failure.
func asServiceError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return StoreFailure(err)
}
