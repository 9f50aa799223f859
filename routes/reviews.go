package routes

import (
	"errors"
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	Stars     int    `json:"stars" validate:"required,min=1,max=5"`
	Title     string `json:"title" validate:"max=100"`
	Body      string `json:"body" validate:"max=1000"`
	BookingID uint   `json:"bookingID"` // Link to the reviewed stay
}

type ReviewResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userID"`
	Stars     int       `json:"stars"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	User      struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		AvatarURL string `json:"avatarURL"`
	} `json:"user"`
	IsVerified bool `json:"isVerified"`
}

// ListPropertyReviews returns reviews, the average rating and whether the
// current user may still leave one.
func ListPropertyReviews(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("propertyId", 0)
	if propertyID == 0 {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid property ID"})
		return
	}

	var reviews []models.Review
	if err := storage.DB.Preload("User").
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to load reviews"})
		return
	}

	var totalStars float64
	for _, review := range reviews {
		totalStars += float64(review.Stars)
	}
	avgRating := 0.0
	if len(reviews) > 0 {
		avgRating = totalStars / float64(len(reviews))
	}

	// A guest can review after a confirmed stay, once per property
	canReview := false
	userBookingID := uint(0)

	if v := ctx.Values().Get("userID"); v != nil {
		if userID, ok := v.(uint); ok {
			var booking models.Booking
			if err := storage.DB.Where("property_id = ? AND user_id = ? AND status IN ?",
				propertyID, userID, []string{models.BookingStatusConfirmed, models.BookingStatusCompleted}).
				Order("check_out_date DESC").
				First(&booking).Error; err == nil {
				canReview = true
				userBookingID = booking.ID

				var existingReview models.Review
				if err := storage.DB.Where("property_id = ? AND user_id = ?", propertyID, userID).
					First(&existingReview).Error; err == nil {
					canReview = false
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					canReview = false
				}
			}
		}
	}

	reviewResponses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp := ReviewResponse{
			ID:         review.ID,
			UserID:     review.UserID,
			Stars:      review.Stars,
			Title:      review.Title,
			Body:       review.Body,
			CreatedAt:  review.CreatedAt,
			IsVerified: review.IsVerified,
		}
		resp.User.FirstName = review.User.FirstName
		resp.User.LastName = review.User.LastName
		resp.User.AvatarURL = review.User.AvatarURL
		reviewResponses = append(reviewResponses, resp)
	}

	ctx.JSON(iris.Map{
		"success":       true,
		"reviews":       reviewResponses,
		"averageRating": avgRating,
		"reviewCount":   len(reviews),
		"canReview":     canReview,
		"bookingID":     userBookingID,
	})
}

// CreatePropertyReview stores a review for a completed stay.
func CreatePropertyReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	propertyID := ctx.Params().GetUintDefault("propertyId", 0)
	if propertyID == 0 {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid property ID"})
		return
	}

	var input CreateReviewRequest
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Verify the stay before accepting the review
	var booking models.Booking
	bookingQuery := storage.DB.Where("property_id = ? AND user_id = ? AND status IN ?",
		propertyID, userID, []string{models.BookingStatusConfirmed, models.BookingStatusCompleted})
	if input.BookingID != 0 {
		bookingQuery = bookingQuery.Where("id = ?", input.BookingID)
	}
	if err := bookingQuery.First(&booking).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "You can only review properties you have stayed at"})
		return
	}

	var existingReview models.Review
	if err := storage.DB.Where("property_id = ? AND user_id = ?", propertyID, userID).
		First(&existingReview).Error; err == nil {
		ctx.StatusCode(iris.StatusConflict)
		ctx.JSON(iris.Map{"message": "You have already reviewed this property"})
		return
	}

	bookingID := booking.ID
	review := models.Review{
		UserID:     userID,
		PropertyID: propertyID,
		BookingID:  &bookingID,
		Stars:      input.Stars,
		Title:      input.Title,
		Body:       input.Body,
		IsVerified: true,
	}

	if err := storage.DB.Create(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Refresh the denormalized property rating
	var avg float64
	storage.DB.Model(&models.Review{}).
		Where("property_id = ?", propertyID).
		Select("COALESCE(AVG(stars), 0)").
		Scan(&avg)
	storage.DB.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("rating", float32(avg))

	storage.DB.Preload("User").First(&review, review.ID)
	ctx.JSON(review)
}
