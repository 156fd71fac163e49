package services

import "errors"

// Sentinel errors returned by the guard services. Controllers map these to
// HTTP statuses and stable response codes; services never touch gin.
var (
	// ErrSlotTaken means another live reservation already holds the
	// requested (designer, time) slot.
	ErrSlotTaken = errors.New("slot already reserved")

	// ErrAlreadyCanceled means the reservation was canceled before and the
	// cancel is a no-op.
	ErrAlreadyCanceled = errors.New("reservation already canceled")

	// ErrAlreadyIssued means the customer already holds an instance of the
	// coupon policy.
	ErrAlreadyIssued = errors.New("coupon already issued to customer")

	// ErrCouponNotAvailable means the issued coupon is not in the
	// AVAILABLE state (already used, or lost a concurrent redemption).
	ErrCouponNotAvailable = errors.New("coupon not available")

	// ErrCouponExpired means the policy's validity window has passed.
	ErrCouponExpired = errors.New("coupon expired")

	// ErrPolicyMismatch means the coupon policy does not apply to the
	// customer (wrong studio, outside its window, deleted).
	ErrPolicyMismatch = errors.New("coupon policy does not apply")

	// ErrAccountLocked means the login is refused while the lock window is
	// active. Credentials are not checked in that state.
	ErrAccountLocked = errors.New("account locked")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is the service-level not-found, wrapped around
	// gorm.ErrRecordNotFound lookups.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden means the actor is not allowed to act on the resource.
	ErrForbidden = errors.New("forbidden")
)
