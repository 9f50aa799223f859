package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	OwnerID      uint    `json:"ownerID" gorm:"not null;index"`
	Title        string  `json:"title"`
	Description  string  `json:"description" gorm:"type:text"`
	PropertyType string  `json:"propertyType"` // entire_place, private_room, shared_room
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city" gorm:"index"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`
	MaxGuests    int     `json:"maxGuests"`
	Bedrooms     int     `json:"bedrooms"`
	Beds         int     `json:"beds"`
	Bathrooms    float32 `json:"bathrooms"`
	NightlyPrice float64 `json:"nightlyPrice"`
	CleaningFee  float64 `json:"cleaningFee"`
	Currency     string  `json:"currency" gorm:"default:'BRL'"`
	Amenities    string  `json:"amenities"` // JSON string
	Images       string  `json:"images"`    // JSON array of URLs
	IsAvailable  *bool   `json:"isAvailable"`
	Rating       float32 `json:"rating"`

	Reviews  []Review  `json:"reviews"`
	Bookings []Booking `json:"bookings"`
	Owner    User      `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`

	// Admin moderation
	Status      string `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, approved, denied
	ReviewNotes string `json:"reviewNotes" gorm:"type:text"`
	IsFlagged   bool   `json:"isFlagged" gorm:"default:false;index"`
	FlagReason  string `json:"flagReason" gorm:"type:text"`
}

// Custom JSON marshaling to convert the Images and Amenities strings to arrays
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images    []string `json:"images"`
		Amenities []string `json:"amenities"`
		Owner     *User    `json:"owner,omitempty"`
		*Alias
	}{
		Images:    []string{},
		Amenities: []string{},
		Owner:     nil,
		Alias:     (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	if p.Amenities != "" {
		var amenities []string
		if err := json.Unmarshal([]byte(p.Amenities), &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	// Only include the owner when it is loaded, and strip its properties to
	// avoid a circular reference
	if p.Owner.ID > 0 {
		ownerCopy := p.Owner
		ownerCopy.Properties = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
