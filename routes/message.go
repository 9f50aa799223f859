package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ricabook/lovestayteste/messaging"
	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/realtime"
	"github.com/ricabook/lovestayteste/services"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var (
	messageFeed  realtime.Feed
	messageStore *messaging.GormStore
)

// InitMessaging wires the change feed used by message creation and the
// stream endpoint. Called once from main after storage is up.
func InitMessaging(feed realtime.Feed) {
	messageFeed = feed
	messageStore = messaging.NewGormStore(storage.DB, feed)
}

// conversationParticipant loads the conversation and checks membership.
func conversationParticipant(conversationID, userID uint, ctx iris.Context) *models.Conversation {
	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}
	if conversation.GuestID != userID && conversation.OwnerID != userID {
		ctx.StopWithStatus(http.StatusForbidden)
		return nil
	}
	return &conversation
}

// ListMessages: GET /api/messages/{conversationID} — full history, oldest first.
func ListMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	conversationID := ctx.Params().GetUintDefault("conversationID", 0)
	if conversationID == 0 {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	if conversationParticipant(conversationID, claims.ID, ctx) == nil {
		return
	}

	msgs, err := messageStore.ListMessages(ctx.Request().Context(), conversationID)
	if err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	ctx.JSON(iris.Map{"success": true, "messages": msgs})
}

type CreateMessageInput struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// CreateMessage persists a message, publishes the insert to the change feed
// and notifies the other participant.
func CreateMessage(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	conversationID := ctx.Params().GetUintDefault("conversationID", 0)

	conversation := conversationParticipant(conversationID, claims.ID, ctx)
	if conversation == nil {
		return
	}

	var input CreateMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	body := strings.TrimSpace(input.Body)
	if body == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Message body must not be empty.", ctx)
		return
	}

	message, err := messageStore.InsertMessage(ctx.Request().Context(), conversationID, claims.ID, body)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	receiverID := conversation.OwnerID
	if claims.ID == conversation.OwnerID {
		receiverID = conversation.GuestID
	}

	var sender models.User
	if err := storage.DB.First(&sender, claims.ID).Error; err == nil {
		senderName := fmt.Sprintf("%s %s", sender.FirstName, sender.LastName)
		notificationService := services.NewNotificationService()
		go notificationService.SendMessageNotification(receiverID, conversationID, senderName)
	}

	ctx.JSON(message)
}

// StreamMessages: GET /api/messages/{conversationID}/stream — server-sent
// events carrying each message inserted into the conversation while the
// client stays connected.
func StreamMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	conversationID := ctx.Params().GetUintDefault("conversationID", 0)

	if conversationParticipant(conversationID, claims.ID, ctx) == nil {
		return
	}

	flusher, ok := ctx.ResponseWriter().Flusher()
	if !ok {
		ctx.StopWithStatus(http.StatusNotImplemented)
		return
	}

	ctx.ContentType("text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	events, cancel := messageFeed.Subscribe(ctx.Request().Context(), conversationID)
	defer cancel()

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return
		case m, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(m)
			if err != nil {
				continue
			}
			fmt.Fprintf(ctx.ResponseWriter(), "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
