package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"-"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	Properties          []Property     `json:"properties" gorm:"foreignKey:OwnerID;references:ID"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, owner, admin, super_admin
}

// Custom JSON marshaling so the JSON columns come out as arrays
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	// Properties are excluded to prevent circular references
	return json.Marshal(aux)
}
