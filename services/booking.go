package services

import (
	"errors"
	"time"

	"github.com/ricabook/lovestayteste/models"

	"gorm.io/gorm"
)

type CreateBookingInput struct {
	PropertyID   uint
	CheckInDate  time.Time
	CheckOutDate time.Time
	GuestCount   int
}

// BookingService validates and creates stay requests.
type BookingService struct {
	db           *gorm.DB
	availability *AvailabilityService
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db, availability: NewAvailabilityService(db)}
}

// CreateBooking runs the pre-submit checks in order (auth, dates, conflict,
// capacity), computes totals and persists the booking as pending.
//
// The conflict check reads occupancy immediately before the insert; two
// concurrent clients can still both pass against stale data. Real exclusion
// would need a database constraint, which Postgres-side tooling owns.
func (s *BookingService) CreateBooking(userID uint, in CreateBookingInput) (*models.Booking, error) {
	if userID == 0 {
		return nil, &AuthError{Message: "you must be signed in to request a booking"}
	}
	if in.CheckInDate.IsZero() || in.CheckOutDate.IsZero() {
		return nil, &ValidationError{Message: "check-in and check-out dates are required"}
	}
	if !startOfDay(in.CheckInDate).Before(startOfDay(in.CheckOutDate)) {
		return nil, &ValidationError{Message: "check-out must be after check-in"}
	}

	var property models.Property
	if err := s.db.First(&property, in.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Message: "property not found"}
		}
		return nil, &TransportError{Op: "load property", Err: err}
	}

	occupied, err := s.availability.OccupiedDatesForProperty(in.PropertyID)
	if err != nil {
		return nil, err
	}
	if HasDateConflict(in.CheckInDate, in.CheckOutDate, occupied) {
		return nil, &ConflictError{Message: "the selected dates are no longer available"}
	}

	if property.MaxGuests > 0 && in.GuestCount > property.MaxGuests {
		return nil, &CapacityError{GuestCount: in.GuestCount, MaxGuests: property.MaxGuests}
	}

	nights := TotalNights(in.CheckInDate, in.CheckOutDate)
	booking := models.Booking{
		PropertyID:   in.PropertyID,
		UserID:       userID,
		CheckInDate:  startOfDay(in.CheckInDate),
		CheckOutDate: startOfDay(in.CheckOutDate),
		GuestCount:   in.GuestCount,
		TotalNights:  nights,
		TotalPrice:   float64(nights) * property.NightlyPrice,
		Status:       models.BookingStatusPending,
	}

	if err := s.db.Create(&booking).Error; err != nil {
		return nil, &TransportError{Op: "create booking", Err: err}
	}

	return &booking, nil
}

var allowedTransitions = map[string][]string{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCancelled, models.BookingStatusCompleted},
}

// SetStatus applies an owner/admin status transition.
func (s *BookingService) SetStatus(bookingID uint, status string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("Property").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Message: "booking not found"}
		}
		return nil, &TransportError{Op: "load booking", Err: err}
	}

	allowed := false
	for _, next := range allowedTransitions[booking.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &ValidationError{Message: "cannot move booking from " + booking.Status + " to " + status}
	}

	booking.Status = status
	if err := s.db.Save(&booking).Error; err != nil {
		return nil, &TransportError{Op: "update booking status", Err: err}
	}

	return &booking, nil
}
