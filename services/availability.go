package services

import (
	"sort"
	"time"

	"github.com/ricabook/lovestayteste/models"

	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

// DateSet is a set of calendar days. Membership ignores time-of-day and
// timezone: two instants on the same calendar date are the same member.
type DateSet map[string]struct{}

func (s DateSet) Add(t time.Time) {
	s[t.Format(dayLayout)] = struct{}{}
}

func (s DateSet) Has(t time.Time) bool {
	_, ok := s[t.Format(dayLayout)]
	return ok
}

// Dates returns the members sorted ascending, for JSON responses.
func (s DateSet) Dates() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OccupiedDates derives the set of dates that cannot be booked for a
// property: every night of each confirmed booking plus every manual block.
// Bookings occupy the half-open range [checkIn, checkOut) so the checkout
// day itself stays bookable. Pending bookings do not reserve the calendar.
func OccupiedDates(bookings []models.Booking, blocks []models.PropertyBlock) DateSet {
	occupied := make(DateSet)

	for _, b := range bookings {
		if b.Status != models.BookingStatusConfirmed {
			continue
		}
		end := startOfDay(b.CheckOutDate)
		for d := startOfDay(b.CheckInDate); d.Before(end); d = d.AddDate(0, 0, 1) {
			occupied.Add(d)
		}
	}

	for _, bl := range blocks {
		occupied.Add(bl.BlockedDate)
	}

	return occupied
}

// IsDateDisabled reports whether a date should be unselectable in a booking
// calendar: any day strictly before today, and any occupied day.
func IsDateDisabled(date, today time.Time, occupied DateSet) bool {
	if startOfDay(date).Before(startOfDay(today)) {
		return true
	}
	return occupied.Has(date)
}

// HasDateConflict reports whether any night of [checkIn, checkOut) is
// already occupied.
func HasDateConflict(checkIn, checkOut time.Time, occupied DateSet) bool {
	end := startOfDay(checkOut)
	for d := startOfDay(checkIn); d.Before(end); d = d.AddDate(0, 0, 1) {
		if occupied.Has(d) {
			return true
		}
	}
	return false
}

// TotalNights counts the nights between check-in and check-out.
func TotalNights(checkIn, checkOut time.Time) int {
	return int(startOfDay(checkOut).Sub(startOfDay(checkIn)).Hours() / 24)
}

// AvailabilityService loads occupancy data for a property. Results are never
// cached: every call refetches so that booking or block mutations are picked
// up on the next validation.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

func (s *AvailabilityService) OccupiedDatesForProperty(propertyID uint) (DateSet, error) {
	var bookings []models.Booking
	if err := s.db.
		Select("check_in_date", "check_out_date", "status").
		Where("property_id = ? AND status = ?", propertyID, models.BookingStatusConfirmed).
		Find(&bookings).Error; err != nil {
		return nil, &TransportError{Op: "load confirmed bookings", Err: err}
	}

	var blocks []models.PropertyBlock
	if err := s.db.
		Select("blocked_date").
		Where("property_id = ?", propertyID).
		Find(&blocks).Error; err != nil {
		return nil, &TransportError{Op: "load property blocks", Err: err}
	}

	return OccupiedDates(bookings, blocks), nil
}
