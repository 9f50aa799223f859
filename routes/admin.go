package routes

import (
	"net/http"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/services"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
)

// AdminListProperties lists properties for moderation, optionally filtered by
// status (pending, approved, denied) or flagged state.
func AdminListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	flagged := ctx.URLParamDefault("flagged", "")

	q := storage.DB.Model(&models.Property{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if flagged == "true" {
		q = q.Where("is_flagged = ?", true)
	}

	var total int64
	q.Count(&total)

	var items []models.Property
	if err := q.Preload("Owner").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

type UpdatePropertyStatusInput struct {
	Status      string `json:"status" validate:"required,oneof=approved denied"`
	ReviewNotes string `json:"reviewNotes" validate:"max=1000"`
}

// AdminUpdatePropertyStatus approves or denies a pending listing and notifies
// its owner.
func AdminUpdatePropertyStatus(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("id", 0)
	if propertyID == 0 {
		utils.CreateError(iris.StatusBadRequest, "Invalid Request", "Invalid property ID", ctx)
		return
	}

	var input UpdatePropertyStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := property
	property.Status = input.Status
	property.ReviewNotes = input.ReviewNotes

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "property_status_"+input.Status, "property", property.ID, before, property)

	notificationService := services.NewNotificationService()
	go notificationService.SendPropertyStatusToOwner(property.OwnerID, property.ID, property.Title, property.Status)

	ctx.JSON(property)
}

type FlagPropertyInput struct {
	IsFlagged  bool   `json:"isFlagged"`
	FlagReason string `json:"flagReason" validate:"max=1000"`
}

// AdminFlagProperty marks a listing for follow-up without changing its status.
func AdminFlagProperty(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("id", 0)
	if propertyID == 0 {
		utils.CreateError(iris.StatusBadRequest, "Invalid Request", "Invalid property ID", ctx)
		return
	}

	var input FlagPropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := property
	property.IsFlagged = input.IsFlagged
	property.FlagReason = input.FlagReason

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	action := "property_flagged"
	if !input.IsFlagged {
		action = "property_unflagged"
	}
	utils.Audit(ctx, action, "property", property.ID, before, property)

	ctx.JSON(property)
}

// AdminListBookings lists bookings across all properties, optionally filtered
// by status, owner or guest.
func AdminListBookings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	ownerID := ctx.URLParamDefault("owner_id", "")
	guestID := ctx.URLParamDefault("guest_id", "")

	q := storage.DB.Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if ownerID != "" {
		q = q.Joins("JOIN properties ON properties.id = bookings.property_id").Where("properties.owner_id = ?", ownerID)
	}
	if guestID != "" {
		q = q.Where("user_id = ?", guestID)
	}

	var total int64
	q.Count(&total)

	var items []models.Booking
	if err := q.Preload("Property").Preload("Guest").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// AdminStats returns headline counts for the moderation dashboard.
func AdminStats(ctx iris.Context) {
	var userCount, propertyCount, pendingProperties, bookingCount, pendingBookings int64

	storage.DB.Model(&models.User{}).Count(&userCount)
	storage.DB.Model(&models.Property{}).Count(&propertyCount)
	storage.DB.Model(&models.Property{}).Where("status = ?", "pending").Count(&pendingProperties)
	storage.DB.Model(&models.Booking{}).Count(&bookingCount)
	storage.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&pendingBookings)

	ctx.JSON(iris.Map{
		"success": true,
		"stats": iris.Map{
			"users":             userCount,
			"properties":        propertyCount,
			"pendingProperties": pendingProperties,
			"bookings":          bookingCount,
			"pendingBookings":   pendingBookings,
		},
	})
}

// AdminListAuditLogs returns recent audit entries, newest first.
func AdminListAuditLogs(ctx iris.Context) {
	var logs []models.AuditLog
	if err := storage.DB.Order("created_at DESC").Limit(200).Find(&logs).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "logs": logs})
}
