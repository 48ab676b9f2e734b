package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyClosing is the end-of-day snapshot, one row per PKT calendar date.
// The Date column stores the PKT date at UTC midnight. Breakdown children
// are fully replaced whenever the closing is re-saved for the same date.
type DailyClosing struct {
	ID                      uint            `gorm:"primaryKey"`
	Date                    time.Time       `gorm:"uniqueIndex;not null"`
	CustomerPayable         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerReceivable      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPaidAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCurrentOrderAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	WalkInAmount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ClearBillAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	BalanceClearedToday     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalBottles            int
	TotalOrders             int
	Riders                  []DailyClosingRider   `gorm:"foreignKey:ClosingID"`
	Payments                []DailyClosingPayment `gorm:"foreignKey:ClosingID"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DailyClosingRider is the per-rider breakdown of a day's deliveries.
type DailyClosingRider struct {
	ID         uint   `gorm:"primaryKey"`
	ClosingID  uint   `gorm:"not null;index"`
	RiderID    uint   `gorm:"not null"`
	RiderName  string // denormalized so historical closings survive renames
	Orders     int
	Bottles    int
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt  time.Time
}

// DailyClosingPayment is the per-payment-method breakdown of a day's orders.
type DailyClosingPayment struct {
	ID         uint   `gorm:"primaryKey"`
	ClosingID  uint   `gorm:"not null;index"`
	Method     string `gorm:"not null"`
	Orders     int
	PaidAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt  time.Time
}
