package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses
const (
	StatusCreated    = "CREATED"
	StatusPending    = "PENDING"
	StatusAssigned   = "ASSIGNED"
	StatusInProgress = "IN_PROGRESS"
	StatusDelivered  = "DELIVERED"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Order types
const (
	TypeDelivery  = "DELIVERY"
	TypeWalkIn    = "WALKIN"
	TypeClearBill = "CLEARBILL"
)

// Priorities
const (
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Payment statuses
const (
	PaymentNotPaid  = "NOT_PAID"
	PaymentPartial  = "PARTIAL"
	PaymentPaid     = "PAID"
	PaymentOverpaid = "OVERPAID"
	PaymentRefund   = "REFUND"
)

// Payment methods
const (
	MethodCash     = "CASH"
	MethodOnline   = "ONLINE"
	MethodBankCard = "CARD"
)

// Order carries both the charge for this order and a snapshot of the
// customer ledger around it:
//
//	CustomerBalance    – customer's balance immediately before this order
//	CurrentOrderAmount – this order's own charge (bottles * unit price)
//	TotalAmount        – CustomerBalance + CurrentOrderAmount, i.e. the
//	                     balance immediately after this order was applied
//
// CustomerBalance never changes after creation; it is the snapshot needed
// to reverse this order's effect on cancellation or amendment.
type Order struct {
	ID                 uint     `gorm:"primaryKey"`
	CustomerID         uint     `gorm:"not null;index"`
	Customer           Customer `gorm:"foreignKey:CustomerID"`
	RiderID            *uint    `gorm:"index"`
	Rider              *RiderProfile
	OrderType          string `gorm:"not null;default:'DELIVERY';index"`
	Status             string `gorm:"not null;index"`
	Priority           string `gorm:"not null;default:'NORMAL'"`
	NumberOfBottles    int
	UnitPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CurrentOrderAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerBalance    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus      string          `gorm:"not null;default:'NOT_PAID';index"`
	PaymentMethod      string          `gorm:"not null;default:'CASH'"`
	PaymentNotes       string
	Receivable         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Payable            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes              string
	DeliveredAt        *time.Time
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
}
