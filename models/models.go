package models

import (
	"time"

	"gorm.io/gorm"
)

// Studio represents a salon tenant. Every other record in the system is
// scoped to exactly one studio.
type Studio struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Designer represents a staff member who can be booked for services
type Designer struct {
	gorm.Model
	StudioID uint   `gorm:"index;not null" json:"studio_id"`
	Name     string `gorm:"not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Customer represents a client of a specific studio. Phone numbers are
// unique within a studio, not globally.
type Customer struct {
	gorm.Model
	StudioID uint       `gorm:"not null;uniqueIndex:idx_customers_studio_phone" json:"studio_id"`
	Name     string     `gorm:"not null" json:"name"`
	Phone    string     `gorm:"not null;uniqueIndex:idx_customers_studio_phone" json:"phone"`
	Email    string     `json:"email"`
	Birthday *time.Time `json:"birthday"`
	Notes    string     `json:"notes"`
}

// SalonService is a bookable menu item offered by a studio
type SalonService struct {
	gorm.Model
	StudioID    uint    `gorm:"index;not null" json:"studio_id"`
	Name        string  `gorm:"not null" json:"name"`
	DurationMin int     `gorm:"default:60" json:"duration_min"`
	Price       float64 `json:"price"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}

// User roles
const (
	RoleAdmin    = "ADMIN"
	RoleStudio   = "STUDIO"
	RoleDesigner = "DESIGNER"
	RoleCustomer = "CUSTOMER"
)

// User represents a login identity. Depending on the role it links to a
// studio, a designer or a customer record. The credential itself lives in
// AuthLocal so that lockout bookkeeping never touches this row.
type User struct {
	gorm.Model
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Name       string `json:"name"`
	Role       string `gorm:"not null" json:"role"`
	StudioID   *uint  `json:"studio_id,omitempty"`
	DesignerID *uint  `json:"designer_id,omitempty"`
	CustomerID *uint  `json:"customer_id,omitempty"`
}
