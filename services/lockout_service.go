package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

// LockoutService tracks consecutive failed logins per credential and locks
// the account after a configurable threshold. All counter math happens in
// SQL so concurrent failures from different connections never lose an
// increment.
type LockoutService struct {
	db          *gorm.DB
	maxAttempts int
	lockWindow  time.Duration
}

// NewLockoutService creates a lockout service with the given threshold and
// lock window.
func NewLockoutService(db *gorm.DB, maxAttempts int, lockWindow time.Duration) *LockoutService {
	return &LockoutService{db: db, maxAttempts: maxAttempts, lockWindow: lockWindow}
}

// IsLocked reports whether the credential is currently locked and until
// when. An expired lock reads as unlocked without any write.
func (s *LockoutService) IsLocked(userID uint) (bool, *time.Time, error) {
	var auth models.AuthLocal
	if err := s.db.Where("user_id = ?", userID).First(&auth).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, ErrNotFound
		}
		return false, nil, err
	}
	if auth.IsLocked(time.Now()) {
		return true, auth.LockedUntil, nil
	}
	return false, nil, nil
}

// RecordFailure bumps the failure counter and, on reaching the threshold,
// locks the account. The increment runs as a single guarded UPDATE: the
// WHERE clause skips rows whose lock is still active, so failures arriving
// while locked are ignored, and the database serializes concurrent
// increments on the row. Hitting the threshold converts the counter into a
// lock in the same transaction. An expired lock is cleared by the first
// failure after it, which then counts as attempt one of a fresh streak.
func (s *LockoutService) RecordFailure(userID uint) (locked bool, until *time.Time, err error) {
	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	res := tx.Model(&models.AuthLocal{}).
		Where("user_id = ? AND (locked_until IS NULL OR locked_until <= ?)", userID, now).
		Updates(map[string]interface{}{
			"failed_attempts": gorm.Expr("failed_attempts + 1"),
			"locked_until":    nil,
		})
	if res.Error != nil {
		tx.Rollback()
		return false, nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row does not exist or the lock is still active; in
		// both cases the failure is not counted.
		tx.Rollback()
		var auth models.AuthLocal
		if err := s.db.Where("user_id = ?", userID).First(&auth).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil, ErrNotFound
			}
			return false, nil, err
		}
		return true, auth.LockedUntil, nil
	}

	lockUntil := now.Add(s.lockWindow)
	lockRes := tx.Model(&models.AuthLocal{}).
		Where("user_id = ? AND failed_attempts >= ? AND locked_until IS NULL", userID, s.maxAttempts).
		Updates(map[string]interface{}{
			"failed_attempts": 0,
			"locked_until":    lockUntil,
		})
	if lockRes.Error != nil {
		tx.Rollback()
		return false, nil, lockRes.Error
	}

	if err := tx.Commit().Error; err != nil {
		return false, nil, err
	}

	if lockRes.RowsAffected > 0 {
		utils.LogInfo("Account locked until %s: user=%d", lockUntil, userID)
		return true, &lockUntil, nil
	}
	return false, nil, nil
}

// RecordSuccess clears the failure streak after a successful login
func (s *LockoutService) RecordSuccess(userID uint) error {
	return s.db.Model(&models.AuthLocal{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"failed_attempts": 0,
			"locked_until":    nil,
		}).Error
}
