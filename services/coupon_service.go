package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

// CouponService owns coupon policies and their issued instances.
type CouponService struct {
	db *gorm.DB
}

// NewCouponService creates a coupon service on the given database
func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// CreatePolicy validates and stores a new coupon policy for the actor's
// studio.
func (s *CouponService) CreatePolicy(actor models.Actor, policy *models.Coupon) error {
	if !actor.CanManageStudio(policy.StudioID) {
		return ErrForbidden
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	if err := s.db.Create(policy).Error; err != nil {
		utils.LogError("Coupon policy create failed: %v", err)
		return err
	}
	utils.LogInfo("Coupon policy created: id=%d studio=%d name=%q", policy.ID, policy.StudioID, policy.Name)
	return nil
}

// PolicyPatch holds the patchable fields of a coupon policy
type PolicyPatch struct {
	Name       *string
	PercentOff *float64
	AmountOff  *float64
	StartsAt   *time.Time
	ExpiresAt  *time.Time
}

// UpdatePolicy applies a partial update after re-validating the merged
// policy. Already-issued instances follow the updated window.
func (s *CouponService) UpdatePolicy(actor models.Actor, policyID uint, patch PolicyPatch) (*models.Coupon, error) {
	var policy models.Coupon
	if err := s.db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.CanManageStudio(policy.StudioID) {
		return nil, ErrForbidden
	}

	if patch.Name != nil {
		policy.Name = *patch.Name
	}
	if patch.PercentOff != nil {
		policy.PercentOff = patch.PercentOff
		policy.AmountOff = nil
	}
	if patch.AmountOff != nil {
		policy.AmountOff = patch.AmountOff
		policy.PercentOff = nil
	}
	if patch.StartsAt != nil {
		policy.StartsAt = *patch.StartsAt
	}
	if patch.ExpiresAt != nil {
		policy.ExpiresAt = *patch.ExpiresAt
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.Save(&policy).Error; err != nil {
		utils.LogError("Coupon policy update failed: id=%d err=%v", policyID, err)
		return nil, err
	}
	utils.LogInfo("Coupon policy updated: id=%d", policyID)
	return &policy, nil
}

// DeletePolicy soft-deletes a policy. Issued instances keep their
// reference; redemption of them fails on the policy lookup afterwards.
func (s *CouponService) DeletePolicy(actor models.Actor, policyID uint) error {
	var policy models.Coupon
	if err := s.db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !actor.CanManageStudio(policy.StudioID) {
		return ErrForbidden
	}
	if err := s.db.Delete(&policy).Error; err != nil {
		return err
	}
	utils.LogInfo("Coupon policy deleted: id=%d", policyID)
	return nil
}

// ListPolicies returns a studio's policies with their derived expiry flag
func (s *CouponService) ListPolicies(actor models.Actor, studioID uint, offset, limit int) ([]models.Coupon, int64, error) {
	if !actor.CanManageStudio(studioID) {
		return nil, 0, ErrForbidden
	}
	q := s.db.Model(&models.Coupon{}).Where("studio_id = ?", studioID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var policies []models.Coupon
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&policies).Error; err != nil {
		return nil, 0, err
	}
	return policies, total, nil
}

// Assign issues one instance of a policy to a customer. Issuance is
// idempotent per (policy, customer): the partial unique index over
// non-deleted instances makes a concurrent double-issue lose with
// gorm.ErrDuplicatedKey, reported as ErrAlreadyIssued just like the
// pre-checked case.
func (s *CouponService) Assign(actor models.Actor, policyID, customerID uint) (*models.CustomerCoupon, error) {
	var policy models.Coupon
	if err := s.db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon policy: %w", ErrNotFound)
		}
		return nil, err
	}
	if !actor.CanManageStudio(policy.StudioID) {
		return nil, ErrForbidden
	}

	var customer models.Customer
	if err := s.db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer: %w", ErrNotFound)
		}
		return nil, err
	}
	if customer.StudioID != policy.StudioID {
		return nil, fmt.Errorf("customer belongs to another studio: %w", ErrPolicyMismatch)
	}

	now := time.Now()
	if policy.IsExpired(now) {
		return nil, ErrCouponExpired
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var held int64
	if err := tx.Model(&models.CustomerCoupon{}).
		Where("coupon_id = ? AND customer_id = ?", policyID, customerID).
		Count(&held).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if held > 0 {
		tx.Rollback()
		return nil, ErrAlreadyIssued
	}

	instance := models.CustomerCoupon{
		StudioID:   policy.StudioID,
		CouponID:   policyID,
		CustomerID: customerID,
		Reference:  uuid.New().String(),
		Status:     models.CustomerCouponAvailable,
		IssuedAt:   now,
	}
	if err := tx.Create(&instance).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.LogInfo("Coupon issue lost race: policy=%d customer=%d", policyID, customerID)
			return nil, ErrAlreadyIssued
		}
		utils.LogError("Coupon issue failed: policy=%d customer=%d err=%v", policyID, customerID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyIssued
		}
		return nil, err
	}

	instance.Coupon = policy
	utils.LogInfo("Coupon issued: id=%d policy=%d customer=%d ref=%s",
		instance.ID, policyID, customerID, instance.Reference)
	return &instance, nil
}

// Redeem marks an issued coupon USED. The flip is a compare-and-set on
// status so concurrent redemptions of the same instance cannot both
// succeed: the loser updates zero rows and gets ErrCouponNotAvailable.
// Expiry is checked against the policy window at redemption time; an
// expired instance is refused without any stored transition.
func (s *CouponService) Redeem(actor models.Actor, instanceID uint) (*models.CustomerCoupon, error) {
	var instance models.CustomerCoupon
	if err := s.db.Preload("Coupon").First(&instance, instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch actor.Role {
	case models.RoleCustomer:
		if actor.CustomerID != instance.CustomerID {
			return nil, ErrForbidden
		}
	case models.RoleAdmin, models.RoleStudio:
		if !actor.CanManageStudio(instance.StudioID) {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	now := time.Now()
	if instance.Coupon.ID == 0 {
		// Policy soft-deleted after issuance; the instance is unusable.
		return nil, ErrPolicyMismatch
	}
	if instance.Coupon.IsExpired(now) {
		utils.LogInfo("Coupon redeem refused, expired: id=%d", instanceID)
		return nil, ErrCouponExpired
	}

	res := s.db.Model(&models.CustomerCoupon{}).
		Where("id = ? AND status = ?", instanceID, models.CustomerCouponAvailable).
		Updates(map[string]interface{}{
			"status":  models.CustomerCouponUsed,
			"used_at": now,
		})
	if res.Error != nil {
		utils.LogError("Coupon redeem failed: id=%d err=%v", instanceID, res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		utils.LogInfo("Coupon redeem refused, not available: id=%d", instanceID)
		return nil, ErrCouponNotAvailable
	}

	instance.Status = models.CustomerCouponUsed
	instance.UsedAt = &now
	utils.LogInfo("Coupon redeemed: id=%d customer=%d", instanceID, instance.CustomerID)
	return &instance, nil
}

// ListCustomerCoupons returns a customer's issued coupons with their
// effective status: AVAILABLE instances of an expired policy read as
// EXPIRED without being rewritten.
func (s *CouponService) ListCustomerCoupons(actor models.Actor, customerID uint, offset, limit int) ([]models.CustomerCoupon, int64, error) {
	if actor.Role == models.RoleCustomer && actor.CustomerID != customerID {
		return nil, 0, ErrForbidden
	}

	q := s.db.Model(&models.CustomerCoupon{}).Where("customer_id = ?", customerID)
	if actor.Role == models.RoleStudio {
		q = q.Where("studio_id = ?", actor.StudioID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var instances []models.CustomerCoupon
	if err := q.Preload("Coupon").Order("issued_at DESC").Offset(offset).Limit(limit).Find(&instances).Error; err != nil {
		return nil, 0, err
	}

	now := time.Now()
	for i := range instances {
		instances[i].Status = instances[i].EffectiveStatus(&instances[i].Coupon, now)
	}
	return instances, total, nil
}
