package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/storage"
	"github.com/ricabook/lovestayteste/utils"
)

// NotificationService persists in-app notifications and fans out Expo push
// messages best-effort. Push failures are logged, never surfaced.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser stores a notification row and pushes it to every
// registered device token.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body, notifType string, refID uint, refType string) error {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: body,
		Type:    notifType,
		RefID:   refID,
		RefType: refType,
	}
	if err := storage.DB.Create(&notification).Error; err != nil {
		log.Printf("failed to store notification for user %d: %v", userID, err)
	}

	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	data := map[string]string{
		"type": notifType,
		"id":   fmt.Sprintf("%d", refID),
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, data); err != nil {
			log.Printf("push to token failed for user %d: %v", userID, err)
			lastError = err
		}
	}
	return lastError
}

// SendBookingRequestToOwner notifies a property owner about a new pending
// booking request.
func (ns *NotificationService) SendBookingRequestToOwner(ownerID, bookingID uint, guestName, propertyTitle string) error {
	title := "New Booking Request"
	body := fmt.Sprintf("%s requested to book %s", guestName, propertyTitle)
	return ns.SendNotificationToUser(ownerID, title, body, "booking_request", bookingID, "booking")
}

// SendBookingStatusToGuest notifies a guest about a booking status change.
func (ns *NotificationService) SendBookingStatusToGuest(guestID, bookingID uint, propertyTitle, status string) error {
	title := "Booking Status Updated"
	body := fmt.Sprintf("Your booking for %s has been %s", propertyTitle, status)
	return ns.SendNotificationToUser(guestID, title, body, "booking_status", bookingID, "booking")
}

// SendMessageNotification notifies a conversation participant about a new
// chat message.
func (ns *NotificationService) SendMessageNotification(receiverID, conversationID uint, senderName string) error {
	title := "New Message"
	body := fmt.Sprintf("%s sent you a message", senderName)
	return ns.SendNotificationToUser(receiverID, title, body, "new_message", conversationID, "conversation")
}

// SendPropertyStatusToOwner notifies an owner about a moderation decision.
func (ns *NotificationService) SendPropertyStatusToOwner(ownerID, propertyID uint, propertyTitle, status string) error {
	title := "Listing Review Complete"
	body := fmt.Sprintf("Your listing %s has been %s", propertyTitle, status)
	return ns.SendNotificationToUser(ownerID, title, body, "property_status", propertyID, "property")
}
