package routes

import (
	"strings"
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
)

type BlockDatesInput struct {
	PropertyID uint      `json:"propertyID" validate:"required"`
	StartDate  time.Time `json:"startDate" validate:"required"`
	EndDate    time.Time `json:"endDate"`
	Reason     string    `json:"reason" validate:"max=500"`
}

// BlockPropertyDates creates one block row per day of the selected range
// (inclusive on both ends; a missing end date blocks a single day).
func BlockPropertyDates(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input BlockDatesInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Verify property ownership
	var property models.Property
	if err := storage.DB.Where("id = ? AND owner_id = ?", input.PropertyID, userID).First(&property).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Property not found or access denied"})
		return
	}

	end := input.EndDate
	if end.IsZero() {
		end = input.StartDate
	}
	if end.Before(input.StartDate) {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "endDate must not be before startDate"})
		return
	}

	var blocks []models.PropertyBlock
	for d := input.StartDate; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		blocks = append(blocks, models.PropertyBlock{
			PropertyID:  input.PropertyID,
			BlockedDate: day,
			Reason:      strings.TrimSpace(input.Reason),
			CreatedBy:   userID,
		})
	}

	if err := storage.DB.Create(&blocks).Error; err != nil {
		// the (property, day) unique index rejects double blocks
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") ||
			strings.Contains(strings.ToLower(err.Error()), "unique") {
			ctx.StatusCode(iris.StatusConflict)
			ctx.JSON(iris.Map{"message": "Some of these dates are already blocked for this property"})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Dates blocked successfully",
		"data":    blocks,
	})
}

// GetPropertyBlocks lists the manual blocks for a property, oldest first.
func GetPropertyBlocks(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("propertyID", 0)
	if propertyID == 0 {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid property ID"})
		return
	}

	var blocks []models.PropertyBlock
	result := storage.DB.Where("property_id = ?", propertyID).Order("blocked_date ASC").Find(&blocks)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data":    blocks,
	})
}

// UnblockPropertyDate removes a single block; only the owner of the blocked
// property may remove it.
func UnblockPropertyDate(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	blockID := ctx.Params().GetUintDefault("id", 0)

	var block models.PropertyBlock
	if err := storage.DB.First(&block, blockID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var property models.Property
	if err := storage.DB.Where("id = ? AND owner_id = ?", block.PropertyID, userID).First(&property).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Property not found or access denied"})
		return
	}

	if err := storage.DB.Delete(&block).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Block removed successfully",
	})
}
