package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification kinds
const (
	NotifyOrderAssigned  = "order_assigned"
	NotifyOrderDelivered = "order_delivered"
)

type Notification struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"not null;index"` // recipient
	User      User           `gorm:"foreignKey:UserID"`
	Kind      string         `gorm:"not null"`
	Payload   datatypes.JSON // event payload as delivered to the client
	Read      bool           `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
