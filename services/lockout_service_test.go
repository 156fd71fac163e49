package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo-dev/glowbook/models"
)

func TestRecordFailureLocksAtThreshold(t *testing.T) {
	db := newTestDB(t)
	seedCredential(t, db, 1)
	svc := NewLockoutService(db, 5, 15*time.Minute)

	for i := 1; i <= 4; i++ {
		locked, _, err := svc.RecordFailure(1)
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d should not lock", i)
	}

	locked, until, err := svc.RecordFailure(1)
	require.NoError(t, err)
	assert.True(t, locked)
	require.NotNil(t, until)
	assert.True(t, until.After(time.Now()))

	// Counter and lock are mutually exclusive after the rollover.
	var auth models.AuthLocal
	require.NoError(t, db.Where("user_id = ?", 1).First(&auth).Error)
	assert.Equal(t, 0, auth.FailedAttempts)
	require.NotNil(t, auth.LockedUntil)
}

func TestFailuresWhileLockedAreNotCounted(t *testing.T) {
	db := newTestDB(t)
	seedCredential(t, db, 1)
	svc := NewLockoutService(db, 5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		_, _, err := svc.RecordFailure(1)
		require.NoError(t, err)
	}

	var before models.AuthLocal
	require.NoError(t, db.Where("user_id = ?", 1).First(&before).Error)

	// A failure during the lock window changes nothing.
	locked, until, err := svc.RecordFailure(1)
	require.NoError(t, err)
	assert.True(t, locked)
	require.NotNil(t, until)
	assert.True(t, until.Equal(*before.LockedUntil))

	var after models.AuthLocal
	require.NoError(t, db.Where("user_id = ?", 1).First(&after).Error)
	assert.Equal(t, 0, after.FailedAttempts)
}

func TestLockSelfClearsAfterWindow(t *testing.T) {
	db := newTestDB(t)
	seedCredential(t, db, 1)
	svc := NewLockoutService(db, 5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		_, _, err := svc.RecordFailure(1)
		require.NoError(t, err)
	}

	locked, _, err := svc.IsLocked(1)
	require.NoError(t, err)
	assert.True(t, locked)

	// Rewind the lock into the past; no sweep is needed to unlock.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.AuthLocal{}).
		Where("user_id = ?", 1).
		Update("locked_until", past).Error)

	locked, _, err = svc.IsLocked(1)
	require.NoError(t, err)
	assert.False(t, locked)

	// The first failure after expiry clears the stale lock and starts a
	// fresh streak at one.
	lockedNow, _, err := svc.RecordFailure(1)
	require.NoError(t, err)
	assert.False(t, lockedNow)

	var auth models.AuthLocal
	require.NoError(t, db.Where("user_id = ?", 1).First(&auth).Error)
	assert.Equal(t, 1, auth.FailedAttempts)
	assert.Nil(t, auth.LockedUntil)
}

func TestRecordSuccessClearsStreak(t *testing.T) {
	db := newTestDB(t)
	seedCredential(t, db, 1)
	svc := NewLockoutService(db, 5, 15*time.Minute)

	for i := 0; i < 3; i++ {
		_, _, err := svc.RecordFailure(1)
		require.NoError(t, err)
	}

	require.NoError(t, svc.RecordSuccess(1))

	var auth models.AuthLocal
	require.NoError(t, db.Where("user_id = ?", 1).First(&auth).Error)
	assert.Equal(t, 0, auth.FailedAttempts)
	assert.Nil(t, auth.LockedUntil)

	// The streak restarts from zero.
	locked, _, err := svc.RecordFailure(1)
	require.NoError(t, err)
	assert.False(t, locked)
	require.NoError(t, db.Where("user_id = ?", 1).First(&auth).Error)
	assert.Equal(t, 1, auth.FailedAttempts)
}

func TestConcurrentFailuresLoseNoIncrements(t *testing.T) {
	db := newTestDB(t)
	seedCredential(t, db, 1)
	svc := NewLockoutService(db, 10, 15*time.Minute)

	const n = 6
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RecordFailure(1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var auth models.AuthLocal
	require.NoError(t, db.Where("user_id = ?", 1).First(&auth).Error)
	assert.Equal(t, n, auth.FailedAttempts)
}

func TestRecordFailureUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewLockoutService(db, 5, 15*time.Minute)

	_, _, err := svc.RecordFailure(42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.IsLocked(42)
	assert.ErrorIs(t, err, ErrNotFound)
}
