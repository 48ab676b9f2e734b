package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Phone     string `gorm:"index"`
	Password  string `gorm:"not null"` // bcrypt hash
	Role      string `gorm:"not null;default:'ADMIN';index"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User roles
const (
	RoleAdmin = "ADMIN"
	RoleRider = "RIDER"
)

// RiderProfile extends a RIDER user with delivery-specific attributes.
// Orders reference the profile, notifications target the underlying user.
type RiderProfile struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"unique;not null"`
	User      User   `gorm:"foreignKey:UserID"`
	Name      string `gorm:"not null;index"`
	Phone     string
	VehicleNo string
	Area      string // usual coverage area
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AdminProfile struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"unique;not null"`
	User      User   `gorm:"foreignKey:UserID"`
	Name      string `gorm:"not null"`
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
