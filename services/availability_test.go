package services

import (
	"testing"
	"time"

	"github.com/ricabook/lovestayteste/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOccupiedDatesHalfOpenRange(t *testing.T) {
	bookings := []models.Booking{
		{
			CheckInDate:  day("2025-03-10"),
			CheckOutDate: day("2025-03-13"),
			Status:       models.BookingStatusConfirmed,
		},
	}

	occupied := OccupiedDates(bookings, nil)

	assert.True(t, occupied.Has(day("2025-03-10")))
	assert.True(t, occupied.Has(day("2025-03-11")))
	assert.True(t, occupied.Has(day("2025-03-12")))
	// checkout day stays bookable
	assert.False(t, occupied.Has(day("2025-03-13")))
	assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, occupied.Dates())
}

func TestOccupiedDatesIgnoresPendingAndCancelled(t *testing.T) {
	bookings := []models.Booking{
		{CheckInDate: day("2025-04-01"), CheckOutDate: day("2025-04-05"), Status: models.BookingStatusPending},
		{CheckInDate: day("2025-04-10"), CheckOutDate: day("2025-04-12"), Status: models.BookingStatusCancelled},
	}

	occupied := OccupiedDates(bookings, nil)
	assert.Empty(t, occupied.Dates())
}

func TestOccupiedDatesIncludesBlocks(t *testing.T) {
	blocks := []models.PropertyBlock{
		{BlockedDate: day("2025-05-20")},
		{BlockedDate: day("2025-05-21")},
	}

	occupied := OccupiedDates(nil, blocks)
	assert.True(t, occupied.Has(day("2025-05-20")))
	assert.True(t, occupied.Has(day("2025-05-21")))
	assert.False(t, occupied.Has(day("2025-05-22")))
}

func TestDateSetMembershipIgnoresTimeOfDay(t *testing.T) {
	occupied := make(DateSet)
	occupied.Add(time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC))

	assert.True(t, occupied.Has(time.Date(2025, 6, 1, 0, 1, 0, 0, time.UTC)))
}

func TestIsDateDisabled(t *testing.T) {
	today := day("2025-03-11")
	occupied := make(DateSet)
	occupied.Add(day("2025-03-15"))

	assert.True(t, IsDateDisabled(day("2025-03-10"), today, occupied), "past dates are disabled")
	assert.False(t, IsDateDisabled(day("2025-03-11"), today, occupied), "today is selectable")
	assert.True(t, IsDateDisabled(day("2025-03-15"), today, occupied), "occupied dates are disabled")
	assert.False(t, IsDateDisabled(day("2025-03-16"), today, occupied))
}

func TestHasDateConflict(t *testing.T) {
	occupied := make(DateSet)
	for d := day("2025-03-10"); d.Before(day("2025-03-13")); d = d.AddDate(0, 0, 1) {
		occupied.Add(d)
	}

	// back-to-back stay ending on an occupied check-in day does not conflict
	assert.False(t, HasDateConflict(day("2025-03-08"), day("2025-03-10"), occupied))
	// a stay starting on the occupied checkout day does not conflict either
	assert.False(t, HasDateConflict(day("2025-03-13"), day("2025-03-15"), occupied))

	assert.True(t, HasDateConflict(day("2025-03-09"), day("2025-03-11"), occupied))
	assert.True(t, HasDateConflict(day("2025-03-12"), day("2025-03-14"), occupied))
	assert.True(t, HasDateConflict(day("2025-03-09"), day("2025-03-14"), occupied), "range fully covering the occupied nights")
}

func TestTotalNights(t *testing.T) {
	assert.Equal(t, 3, TotalNights(day("2025-03-10"), day("2025-03-13")))
	assert.Equal(t, 1, TotalNights(day("2025-03-10"), day("2025-03-11")))
}

func TestOccupiedDatesForPropertyRefetches(t *testing.T) {
	db := openTestDB(t)
	svc := NewAvailabilityService(db)

	property := seedProperty(t, db, 4, 100)
	require.NoError(t, db.Create(&models.Booking{
		PropertyID:   property.ID,
		UserID:       1,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-12"),
		Status:       models.BookingStatusConfirmed,
	}).Error)

	occupied, err := svc.OccupiedDatesForProperty(property.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-10", "2025-03-11"}, occupied.Dates())

	// a block added after the first read shows up on the next one
	require.NoError(t, db.Create(&models.PropertyBlock{
		PropertyID:  property.ID,
		BlockedDate: day("2025-03-20"),
	}).Error)

	occupied, err = svc.OccupiedDatesForProperty(property.ID)
	require.NoError(t, err)
	assert.True(t, occupied.Has(day("2025-03-20")))
}
