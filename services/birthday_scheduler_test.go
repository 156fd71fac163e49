package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo-dev/glowbook/models"
)

func TestSweepIssuesBirthdayCoupons(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	coupons := NewCouponService(db)
	scheduler := NewBirthdayScheduler(db, coupons, 9)

	day := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	birthday := time.Date(1995, 8, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Customer{}).
		Where("id = ?", f.Customer.ID).
		Update("birthday", birthday).Error)

	otherDay := time.Date(1992, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Customer{}).
		Where("id = ?", f.Customer2.ID).
		Update("birthday", otherDay).Error)

	policy := seedPolicy(t, db, f.Studio.ID, func(p *models.Coupon) {
		p.Name = "Birthday treat"
		p.IsBirthday = true
		p.StartsAt = day.Add(-24 * time.Hour)
		p.ExpiresAt = day.Add(30 * 24 * time.Hour)
	})
	// Non-birthday policies are not swept.
	seedPolicy(t, db, f.Studio.ID, nil)

	require.NoError(t, scheduler.Sweep(day))

	var issued []models.CustomerCoupon
	require.NoError(t, db.Find(&issued).Error)
	require.Len(t, issued, 1)
	assert.Equal(t, policy.ID, issued[0].CouponID)
	assert.Equal(t, f.Customer.ID, issued[0].CustomerID)
}

func TestSweepIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	coupons := NewCouponService(db)
	scheduler := NewBirthdayScheduler(db, coupons, 9)

	day := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	birthday := time.Date(1995, 8, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Customer{}).
		Where("id = ?", f.Customer.ID).
		Update("birthday", birthday).Error)

	seedPolicy(t, db, f.Studio.ID, func(p *models.Coupon) {
		p.IsBirthday = true
		p.StartsAt = day.Add(-24 * time.Hour)
		p.ExpiresAt = day.Add(30 * 24 * time.Hour)
	})

	require.NoError(t, scheduler.Sweep(day))
	require.NoError(t, scheduler.Sweep(day))

	var count int64
	require.NoError(t, db.Model(&models.CustomerCoupon{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSweepSkipsExpiredPolicies(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	coupons := NewCouponService(db)
	scheduler := NewBirthdayScheduler(db, coupons, 9)

	day := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	birthday := time.Date(1995, 8, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Customer{}).
		Where("id = ?", f.Customer.ID).
		Update("birthday", birthday).Error)

	seedPolicy(t, db, f.Studio.ID, func(p *models.Coupon) {
		p.IsBirthday = true
		p.StartsAt = day.Add(-60 * 24 * time.Hour)
		p.ExpiresAt = day.Add(-24 * time.Hour)
	})

	require.NoError(t, scheduler.Sweep(day))

	var count int64
	require.NoError(t, db.Model(&models.CustomerCoupon{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
