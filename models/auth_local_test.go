package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthLocalIsLocked(t *testing.T) {
	now := time.Now()

	a := AuthLocal{}
	assert.False(t, a.IsLocked(now))

	future := now.Add(10 * time.Minute)
	a.LockedUntil = &future
	assert.True(t, a.IsLocked(now))

	// An expired lock reads as unlocked without being cleared.
	past := now.Add(-time.Minute)
	a.LockedUntil = &past
	assert.False(t, a.IsLocked(now))
}
