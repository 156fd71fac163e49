package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo-dev/glowbook/models"
)

func strPtr(s string) *string { return &s }

func TestConsultationStartsPending(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	svc := NewBookingService(db)

	r, err := svc.TryReserve(staffActor(f), reserveInput(f, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	completed := models.ConsultationCompleted
	c, err := svc.CreateConsultation(staffActor(f), r.ID, ConsultationInput{
		Memo: strPtr("ash brown, sensitive scalp"),
		// A status in the create request is ignored.
		Status: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationPending, c.Status)
	assert.Equal(t, "ash brown, sensitive scalp", c.Memo)
}

func TestConsultationTransitions(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	svc := NewBookingService(db)

	r, err := svc.TryReserve(staffActor(f), reserveInput(f, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = svc.CreateConsultation(staffActor(f), r.ID, ConsultationInput{})
	require.NoError(t, err)

	c, err := svc.UpdateConsultation(staffActor(f), r.ID, ConsultationInput{
		Status: strPtr(models.ConsultationInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationInProgress, c.Status)

	c, err = svc.UpdateConsultation(staffActor(f), r.ID, ConsultationInput{
		Status: strPtr(models.ConsultationCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCompleted, c.Status)

	// COMPLETED is terminal.
	_, err = svc.UpdateConsultation(staffActor(f), r.ID, ConsultationInput{
		Status: strPtr(models.ConsultationInProgress),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Content edits are still allowed on a terminal row.
	c, err = svc.UpdateConsultation(staffActor(f), r.ID, ConsultationInput{
		Memo: strPtr("follow-up in six weeks"),
	})
	require.NoError(t, err)
	assert.Equal(t, "follow-up in six weeks", c.Memo)

	_, err = svc.UpdateConsultation(staffActor(f), r.ID, ConsultationInput{
		Status: strPtr("SHIPPED"),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConsultationOnePerReservation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	svc := NewBookingService(db)

	r, err := svc.TryReserve(staffActor(f), reserveInput(f, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = svc.CreateConsultation(staffActor(f), r.ID, ConsultationInput{})
	require.NoError(t, err)

	_, err = svc.CreateConsultation(staffActor(f), r.ID, ConsultationInput{})
	assert.Error(t, err)
}

func TestConsultationCustomerReadOnly(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	svc := NewBookingService(db)

	r, err := svc.TryReserve(staffActor(f), reserveInput(f, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = svc.CreateConsultation(staffActor(f), r.ID, ConsultationInput{Memo: strPtr("memo")})
	require.NoError(t, err)

	// The booking customer can read but not edit.
	c, err := svc.GetConsultation(customerActor(f), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "memo", c.Memo)

	_, err = svc.UpdateConsultation(customerActor(f), r.ID, ConsultationInput{Memo: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateConsultation(customerActor(f), r.ID+1, ConsultationInput{})
	assert.Error(t, err)
}
