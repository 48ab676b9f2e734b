package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WalkInCustomerName identifies the singleton customer record that anonymous
// walk-in orders are booked against. It is resolved by name, never by id.
const WalkInCustomerName = "Walk-in Customer"

// Customer entity. CurrentBalance is the running ledger balance:
// positive means the customer owes us (receivable), negative means we owe
// the customer (payable). It is only ever mutated together with an order
// inside a ledger transaction.
type Customer struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null;index"`
	Phone           string `gorm:"index"`
	Whatsapp        string
	HouseNo         string
	StreetNo        string
	Area            string
	City            string
	BottleCount     int
	AvgDaysToRefill int
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`
	Orders          []Order         `gorm:"foreignKey:CustomerID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FullAddress joins the address parts, skipping empty ones.
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{c.HouseNo, c.StreetNo, c.Area, c.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsWalkIn reports whether this is the walk-in sentinel record.
func (c *Customer) IsWalkIn() bool { return c.Name == WalkInCustomerName }
