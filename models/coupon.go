package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Coupon is a studio's discount policy. It defines either a percentage or
// a fixed amount off - never both - plus a validity window. Policies are
// soft-deleted so issued instances keep a valid reference.
type Coupon struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	StudioID     uint           `gorm:"index;not null" json:"studio_id"`
	Name         string         `gorm:"not null" json:"name"`
	PercentOff   *float64       `json:"percent_off,omitempty"`
	AmountOff    *float64       `json:"amount_off,omitempty"`
	StartsAt     time.Time      `json:"starts_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	IsBirthday   bool           `gorm:"default:false" json:"is_birthday"`
	IsFirstVisit bool           `gorm:"default:false" json:"is_first_visit"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

var (
	// ErrDiscountExclusive is returned when a policy sets both or neither
	// of the two discount kinds.
	ErrDiscountExclusive = errors.New("exactly one of percent_off and amount_off must be set")
	// ErrDiscountRange is returned for out-of-range discount values.
	ErrDiscountRange = errors.New("discount value out of range")
	// ErrValidityWindow is returned when the expiry does not follow the start.
	ErrValidityWindow = errors.New("expires_at must be after starts_at")
)

// Validate enforces the policy invariants before a create or patch is
// written.
func (c *Coupon) Validate() error {
	if (c.PercentOff == nil) == (c.AmountOff == nil) {
		return ErrDiscountExclusive
	}
	if c.PercentOff != nil && (*c.PercentOff <= 0 || *c.PercentOff > 100) {
		return ErrDiscountRange
	}
	if c.AmountOff != nil && *c.AmountOff <= 0 {
		return ErrDiscountRange
	}
	if !c.ExpiresAt.After(c.StartsAt) {
		return ErrValidityWindow
	}
	return nil
}

// IsExpired reports whether the validity window has passed.
func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CustomerCoupon statuses. EXPIRED is derived at read time, never stored:
// the stored transition is AVAILABLE -> USED only.
const (
	CustomerCouponAvailable = "AVAILABLE"
	CustomerCouponUsed      = "USED"
	CustomerCouponExpired   = "EXPIRED"
)

// CustomerCoupon is one issued instance of a coupon policy. A customer can
// hold at most one non-deleted instance per policy - enforced by a partial
// unique index on (coupon_id, customer_id) created in
// config.EnsureLedgerIndexes.
type CustomerCoupon struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	StudioID   uint           `gorm:"index;not null" json:"studio_id"`
	CouponID   uint           `gorm:"not null;index:idx_customer_coupons_pair" json:"coupon_id"`
	CustomerID uint           `gorm:"not null;index:idx_customer_coupons_pair" json:"customer_id"`
	Reference  string         `gorm:"size:36" json:"reference"`
	Status     string         `gorm:"not null;default:'AVAILABLE'" json:"status"`
	IssuedAt   time.Time      `json:"issued_at"`
	UsedAt     *time.Time     `json:"used_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Coupon Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
}

// EffectiveStatus derives what the holder actually sees: an AVAILABLE
// instance whose policy window has passed reads as EXPIRED.
func (cc *CustomerCoupon) EffectiveStatus(policy *Coupon, now time.Time) string {
	if cc.Status == CustomerCouponAvailable && policy.IsExpired(now) {
		return CustomerCouponExpired
	}
	return cc.Status
}
