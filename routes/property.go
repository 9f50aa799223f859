package routes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreatePropertyInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=10000"`
	PropertyType string   `json:"propertyType" validate:"required,oneof=entire_place private_room shared_room"`
	AddressLine1 string   `json:"addressLine1"`
	AddressLine2 string   `json:"addressLine2"`
	City         string   `json:"city" validate:"required,max=256"`
	State        string   `json:"state"`
	Zip          string   `json:"zip"`
	Country      string   `json:"country" validate:"required,max=256"`
	Lat          float32  `json:"lat"`
	Lng          float32  `json:"lng"`
	MaxGuests    int      `json:"maxGuests" validate:"required,gte=1,lte=16"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	Beds         int      `json:"beds" validate:"gte=0"`
	Bathrooms    float32  `json:"bathrooms" validate:"gte=0"`
	NightlyPrice float64  `json:"nightlyPrice" validate:"required,gt=0"`
	CleaningFee  float64  `json:"cleaningFee" validate:"gte=0"`
	Currency     string   `json:"currency"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"` // base64 payloads, uploaded on create
}

// CreateProperty stores a new listing; it goes live only after an admin
// approves it.
func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var imageURLs []string
	for i, image := range input.Images {
		publicID := fmt.Sprintf("property_%d_%d_%s", claims.ID, i, utils.GenerateShortToken(4))
		uploaded := storage.UploadBase64Image(image, publicID)
		if uploaded["url"] != "" {
			imageURLs = append(imageURLs, uploaded["url"])
		}
	}

	marshalledImages, _ := json.Marshal(imageURLs)
	marshalledAmenities, _ := json.Marshal(input.Amenities)

	currency := input.Currency
	if currency == "" {
		currency = "BRL"
	}

	property := models.Property{
		OwnerID:      claims.ID,
		Title:        input.Title,
		Description:  input.Description,
		PropertyType: input.PropertyType,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		MaxGuests:    input.MaxGuests,
		Bedrooms:     input.Bedrooms,
		Beds:         input.Beds,
		Bathrooms:    input.Bathrooms,
		NightlyPrice: input.NightlyPrice,
		CleaningFee:  input.CleaningFee,
		Currency:     currency,
		Amenities:    string(marshalledAmenities),
		Images:       string(marshalledImages),
		Status:       "pending",
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

func GetProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var property models.Property
	propertyExists := storage.DB.Preload("Owner").Find(&property, id)
	if propertyExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(property)
}

// GetPropertiesByUserID lists an owner's own properties regardless of
// moderation status.
func GetPropertiesByUserID(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var properties []models.Property
	propertiesExist := storage.DB.Where("owner_id = ?", id).Order("created_at DESC").Find(&properties)
	if propertiesExist.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(properties)
}

// SearchProperties: GET /api/properties/search?city=...&guests=...&maxPrice=...
// Only approved listings are visible to guests.
func SearchProperties(ctx iris.Context) {
	city := strings.TrimSpace(ctx.URLParam("city"))
	guests := ctx.URLParamIntDefault("guests", 0)
	maxPrice, _ := strconv.ParseFloat(ctx.URLParamDefault("maxPrice", "0"), 64)
	limit := ctx.URLParamIntDefault("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := storage.DB.Where("status = ?", "approved")
	if city != "" {
		q = q.Where("lower(city) LIKE lower(?)", "%"+city+"%")
	}
	if guests > 0 {
		q = q.Where("max_guests >= ?", guests)
	}
	if maxPrice > 0 {
		q = q.Where("nightly_price <= ?", maxPrice)
	}

	var properties []models.Property
	if err := q.Order("rating DESC, created_at DESC").Limit(limit).Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": properties})
}

type UpdatePropertyInput struct {
	Title        string   `json:"title" validate:"max=256"`
	Description  string   `json:"description" validate:"max=10000"`
	NightlyPrice float64  `json:"nightlyPrice" validate:"gte=0"`
	CleaningFee  float64  `json:"cleaningFee" validate:"gte=0"`
	MaxGuests    int      `json:"maxGuests" validate:"gte=0,lte=16"`
	Amenities    []string `json:"amenities"`
}

func UpdateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.Where("id = ? AND owner_id = ?", id, claims.ID).First(&property).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Property not found or access denied"})
		return
	}

	var input UpdatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != "" {
		property.Title = input.Title
	}
	if input.Description != "" {
		property.Description = input.Description
	}
	if input.NightlyPrice > 0 {
		property.NightlyPrice = input.NightlyPrice
	}
	if input.CleaningFee > 0 {
		property.CleaningFee = input.CleaningFee
	}
	if input.MaxGuests > 0 {
		property.MaxGuests = input.MaxGuests
	}
	if input.Amenities != nil {
		marshalledAmenities, _ := json.Marshal(input.Amenities)
		property.Amenities = string(marshalledAmenities)
	}

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

func DeleteProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var property models.Property
	if err := storage.DB.Where("id = ? AND owner_id = ?", id, claims.ID).First(&property).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Property not found or access denied"})
		return
	}

	// Remove uploaded images first
	if property.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(property.Images), &images); err == nil {
			for _, imageURL := range images {
				storage.DeleteImage(imageURL)
			}
		}
	}

	if err := storage.DB.Delete(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}
