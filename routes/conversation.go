package routes

import (
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type StartConversationInput struct {
	PropertyID uint `json:"propertyID" validate:"required"`
	// OwnerID is the fallback for when the property row cannot be read but
	// the caller already knows who owns it
	OwnerID uint `json:"ownerID"`
}

// GetOrCreateConversation returns the guest's existing conversation for a
// property or creates one. The caller gets back only the conversation id.
func GetOrCreateConversation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input StartConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var ownerID uint
	var propertyID *uint

	var property models.Property
	if err := storage.DB.First(&property, input.PropertyID).Error; err == nil {
		ownerID = property.OwnerID
		pid := property.ID
		propertyID = &pid
	} else if input.OwnerID != 0 {
		// fallback path: resolve directly against the conversations table
		ownerID = input.OwnerID
	} else {
		utils.CreateNotFound(ctx)
		return
	}

	if ownerID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "You cannot start a conversation with yourself.", ctx)
		return
	}

	var conversation models.Conversation
	q := storage.DB.Where("guest_id = ? AND owner_id = ?", claims.ID, ownerID)
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	if err := q.First(&conversation).Error; err != nil {
		conversation = models.Conversation{
			GuestID:       claims.ID,
			OwnerID:       ownerID,
			PropertyID:    propertyID,
			LastMessageAt: time.Now(),
		}
		if err := storage.DB.Create(&conversation).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{
		"success":        true,
		"conversationID": conversation.ID,
	})
}

// GetUserConversations lists every conversation the authenticated user takes
// part in, most recently active first.
func GetUserConversations(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var conversations []models.Conversation
	res := storage.DB.
		Preload("Guest").
		Preload("Owner").
		Preload("Property").
		Where("guest_id = ? OR owner_id = ?", claims.ID, claims.ID).
		Order("last_message_at DESC").
		Find(&conversations)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "conversations": conversations})
}
