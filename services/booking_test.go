package services

import (
	"testing"

	"github.com/ricabook/lovestayteste/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Booking{},
		&models.PropertyBlock{},
	))
	return db
}

func seedProperty(t *testing.T, db *gorm.DB, maxGuests int, nightlyPrice float64) *models.Property {
	t.Helper()
	property := models.Property{
		OwnerID:      42,
		Title:        "Beach flat",
		City:         "Florianópolis",
		MaxGuests:    maxGuests,
		NightlyPrice: nightlyPrice,
		Status:       "approved",
	}
	require.NoError(t, db.Create(&property).Error)
	return &property
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	svc := NewBookingService(openTestDB(t))

	_, err := svc.CreateBooking(0, CreateBookingInput{
		PropertyID:   1,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-12"),
	})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestCreateBookingValidatesDates(t *testing.T) {
	db := openTestDB(t)
	svc := NewBookingService(db)
	property := seedProperty(t, db, 4, 100)

	_, err := svc.CreateBooking(7, CreateBookingInput{PropertyID: property.ID})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-12"),
		CheckOutDate: day("2025-03-10"),
	})
	require.ErrorAs(t, err, &validationErr)

	// same-day in and out is zero nights, also invalid
	_, err = svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-10"),
	})
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateBookingUnknownProperty(t *testing.T) {
	svc := NewBookingService(openTestDB(t))

	_, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   999,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-12"),
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateBookingConflict(t *testing.T) {
	db := openTestDB(t)
	svc := NewBookingService(db)
	property := seedProperty(t, db, 4, 100)

	require.NoError(t, db.Create(&models.Booking{
		PropertyID:   property.ID,
		UserID:       1,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-13"),
		Status:       models.BookingStatusConfirmed,
	}).Error)

	_, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-12"),
		CheckOutDate: day("2025-03-14"),
		GuestCount:   2,
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// starting exactly on the existing checkout day is fine
	booking, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-13"),
		CheckOutDate: day("2025-03-15"),
		GuestCount:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestCreateBookingPendingDoesNotBlock(t *testing.T) {
	db := openTestDB(t)
	svc := NewBookingService(db)
	property := seedProperty(t, db, 4, 100)

	first, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-13"),
		GuestCount:   2,
	})
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusPending, first.Status)

	// a second request for the same nights is allowed while the first is
	// still pending; the owner resolves the race by confirming one
	second, err := svc.CreateBooking(8, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-13"),
		GuestCount:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, second.Status)
}

func TestCreateBookingCapacity(t *testing.T) {
	db := openTestDB(t)
	svc := NewBookingService(db)
	property := seedProperty(t, db, 2, 100)

	_, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-12"),
		GuestCount:   3,
	})

	var capacityErr *CapacityError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 3, capacityErr.GuestCount)
	assert.Equal(t, 2, capacityErr.MaxGuests)
}

func TestCreateBookingTotals(t *testing.T) {
	db := openTestDB(t)
	svc := NewBookingService(db)
	property := seedProperty(t, db, 4, 150)

	booking, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-13"),
		GuestCount:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, booking.TotalNights)
	assert.Equal(t, 450.0, booking.TotalPrice)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestSetStatusTransitions(t *testing.T) {
	db := openTestDB(t)
	svc := NewBookingService(db)
	property := seedProperty(t, db, 4, 100)

	booking, err := svc.CreateBooking(7, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-10"),
		CheckOutDate: day("2025-03-12"),
		GuestCount:   2,
	})
	require.NoError(t, err)

	confirmed, err := svc.SetStatus(booking.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	// confirmed dates now occupy the calendar
	_, err = svc.CreateBooking(8, CreateBookingInput{
		PropertyID:   property.ID,
		CheckInDate:  day("2025-03-11"),
		CheckOutDate: day("2025-03-13"),
		GuestCount:   2,
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// pending again is not a legal move
	_, err = svc.SetStatus(booking.ID, models.BookingStatusPending)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	cancelled, err := svc.SetStatus(booking.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// cancelled is terminal
	_, err = svc.SetStatus(booking.ID, models.BookingStatusCompleted)
	require.ErrorAs(t, err, &validationErr)
}
