package routes

import (
	"errors"
	"fmt"
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/services"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// handleBookingError translates service errors into HTTP responses.
func handleBookingError(err error, ctx iris.Context) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var capacityErr *services.CapacityError
	var authErr *services.AuthError

	switch {
	case errors.As(err, &validationErr):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", validationErr.Message, ctx)
	case errors.As(err, &conflictErr):
		utils.CreateError(iris.StatusConflict, "Dates Unavailable", conflictErr.Message, ctx)
	case errors.As(err, &capacityErr):
		utils.CreateError(iris.StatusUnprocessableEntity, "Too Many Guests", capacityErr.Error(), ctx)
	case errors.As(err, &authErr):
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", authErr.Message, ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}

// GetOccupiedDates returns every date that cannot be booked for a property:
// nights of confirmed bookings plus owner blocks. Drives the date pickers.
func GetOccupiedDates(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("id", 0)
	if propertyID == 0 {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid property ID"})
		return
	}

	availability := services.NewAvailabilityService(storage.DB)
	occupied, err := availability.OccupiedDatesForProperty(propertyID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":       true,
		"occupiedDates": occupied.Dates(),
	})
}

type CreateBookingInput struct {
	CheckInDate  time.Time `json:"checkInDate" validate:"required"`
	CheckOutDate time.Time `json:"checkOutDate" validate:"required"`
	GuestCount   int       `json:"guestCount" validate:"required,gte=1,lte=16"`
}

// CreateBooking validates the requested range against current occupancy and
// persists a pending booking request for the owner to confirm.
func CreateBooking(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("id", 0)
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	bookings := services.NewBookingService(storage.DB)
	booking, err := bookings.CreateBooking(claims.ID, services.CreateBookingInput{
		PropertyID:   propertyID,
		CheckInDate:  input.CheckInDate,
		CheckOutDate: input.CheckOutDate,
		GuestCount:   input.GuestCount,
	})
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	// Reload with relationships for the response
	storage.DB.Preload("Property").Preload("Guest").First(booking, booking.ID)

	if booking.Property != nil {
		var guest models.User
		if err := storage.DB.First(&guest, claims.ID).Error; err == nil {
			guestName := fmt.Sprintf("%s %s", guest.FirstName, guest.LastName)
			notificationService := services.NewNotificationService()
			go notificationService.SendBookingRequestToOwner(
				booking.Property.OwnerID,
				booking.ID,
				guestName,
				booking.Property.Title,
			)
		}
	}

	ctx.JSON(booking)
}

// GetUserBookings lists the authenticated guest's bookings, newest first.
func GetUserBookings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var bookings []models.Booking
	res := storage.DB.Preload("Property").Preload("Property.Owner").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings)
	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(bookings)
}

// GetOwnerBookings lists bookings across every property owned by the
// authenticated user.
func GetOwnerBookings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var bookings []models.Booking
	res := storage.DB.
		Joins("JOIN properties p ON p.id = bookings.property_id").
		Where("p.owner_id = ?", userID).
		Preload("Property").
		Preload("Guest").
		Order("bookings.created_at DESC").
		Find(&bookings)
	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(bookings)
}

type UpdateBookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

// UpdateBookingStatus applies an owner's decision on a booking request.
// Confirming makes the range occupy the calendar from the next availability
// fetch on; nothing else needs invalidating because occupancy is always
// recomputed from live rows.
func UpdateBookingStatus(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	bookingID := ctx.Params().GetUintDefault("id", 0)

	var input UpdateBookingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Only the property owner decides on its bookings
	var existing models.Booking
	if err := storage.DB.Preload("Property").First(&existing, bookingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if existing.Property == nil || existing.Property.OwnerID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Only the property owner can update this booking"})
		return
	}

	bookings := services.NewBookingService(storage.DB)
	booking, err := bookings.SetStatus(bookingID, input.Status)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	if booking.Property != nil {
		notificationService := services.NewNotificationService()
		go notificationService.SendBookingStatusToGuest(
			booking.UserID,
			booking.ID,
			booking.Property.Title,
			booking.Status,
		)
	}

	ctx.JSON(booking)
}

// CancelBooking lets a guest withdraw their own pending or confirmed booking.
func CancelBooking(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	bookingID := ctx.Params().GetUintDefault("id", 0)

	var booking models.Booking
	if err := storage.DB.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	bookings := services.NewBookingService(storage.DB)
	updated, err := bookings.SetStatus(bookingID, models.BookingStatusCancelled)
	if err != nil {
		handleBookingError(err, ctx)
		return
	}

	ctx.JSON(updated)
}
