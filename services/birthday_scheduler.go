package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

// BirthdayScheduler issues each studio's birthday coupons to customers on
// their birthday. Issuance goes through CouponService.Assign, so a sweep
// that runs twice (or overlaps a manual issue) is harmless: the second
// attempt comes back ErrAlreadyIssued and is skipped.
type BirthdayScheduler struct {
	db      *gorm.DB
	coupons *CouponService
	hour    int
	stop    chan struct{}
}

// NewBirthdayScheduler creates a scheduler that sweeps daily at the given
// local hour.
func NewBirthdayScheduler(db *gorm.DB, coupons *CouponService, hour int) *BirthdayScheduler {
	return &BirthdayScheduler{
		db:      db,
		coupons: coupons,
		hour:    hour,
		stop:    make(chan struct{}),
	}
}

// Start runs the sweep loop in a background goroutine
func (b *BirthdayScheduler) Start() {
	go func() {
		for {
			next := b.nextRun(time.Now())
			select {
			case <-time.After(time.Until(next)):
				if err := b.Sweep(time.Now()); err != nil {
					utils.LogError("Birthday sweep failed: %v", err)
				}
			case <-b.stop:
				return
			}
		}
	}()
	utils.LogInfo("Birthday scheduler started, daily at %02d:00", b.hour)
}

// Stop terminates the sweep loop
func (b *BirthdayScheduler) Stop() {
	close(b.stop)
}

func (b *BirthdayScheduler) nextRun(now time.Time) time.Time {
	run := time.Date(now.Year(), now.Month(), now.Day(), b.hour, 0, 0, 0, now.Location())
	if !run.After(now) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}

// Sweep issues every active birthday policy to the customers whose
// birthday falls on the given day. Failures for one customer are logged
// and skipped so a single bad row cannot stall the rest of the sweep.
func (b *BirthdayScheduler) Sweep(day time.Time) error {
	var policies []models.Coupon
	if err := b.db.
		Where("is_birthday = ? AND starts_at <= ? AND expires_at > ?", true, day, day).
		Find(&policies).Error; err != nil {
		return err
	}
	if len(policies) == 0 {
		return nil
	}

	issuer := models.Actor{Role: models.RoleAdmin}
	issued := 0
	for _, policy := range policies {
		var customers []models.Customer
		if err := b.db.
			Where("studio_id = ? AND birthday IS NOT NULL", policy.StudioID).
			Find(&customers).Error; err != nil {
			utils.LogError("Birthday sweep: customer listing failed for studio %d: %v", policy.StudioID, err)
			continue
		}
		for _, customer := range customers {
			// Month/day comparison in Go keeps the sweep portable across
			// database date functions.
			if customer.Birthday.Month() != day.Month() || customer.Birthday.Day() != day.Day() {
				continue
			}
			if _, err := b.coupons.Assign(issuer, policy.ID, customer.ID); err != nil {
				if errors.Is(err, ErrAlreadyIssued) {
					continue
				}
				utils.LogError("Birthday sweep: issue failed for customer %d policy %d: %v",
					customer.ID, policy.ID, err)
				continue
			}
			issued++
		}
	}

	utils.LogInfo("Birthday sweep done: date=%s policies=%d issued=%d",
		day.Format("2006-01-02"), len(policies), issued)
	return nil
}
