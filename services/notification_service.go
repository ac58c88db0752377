// services/notification_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type NotificationInput struct {
	CustomerID    uuid.UUID
	SalonID       uuid.UUID
	AppointmentID *uuid.UUID
	Channel       string // "whatsapp" or "sms"; derived from the phone when empty
	Type          string
	Subject       string
	Body          string
}

type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// SendNotification delivers one message to a customer and logs the attempt.
// Callers treat delivery as best-effort; a returned error means the message
// did not go out, it never means any booking state was rolled back.
func (s *NotificationService) SendNotification(input NotificationInput) error {
	var customer models.Customer
	if err := s.db.Where("id = ?", input.CustomerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: load customer: %v", ErrCollaborator, err)
	}

	// Use WhatsApp if phone is in E.164 format and starts with '+'
	channel := input.Channel
	if channel == "" {
		channel = "sms"
		if strings.HasPrefix(customer.Phone, "+") {
			channel = "whatsapp"
		}
	}

	to := customer.Phone
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(input.Body)
	if channel == "whatsapp" {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetTo(to)
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, sendErr := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if sendErr != nil {
		log.Printf("Failed to send %s to %s: %v", input.Type, customer.Phone, sendErr)
		status = "failed"
		errorMsg = sendErr.Error()
	} else if resp.Sid != nil {
		log.Printf("Notification %s sent to %s, SID: %s", input.Type, customer.Phone, *resp.Sid)
	} else {
		log.Printf("Notification %s sent to %s, but no SID returned", input.Type, customer.Phone)
	}

	entry := models.NotificationLog{
		SalonID:       input.SalonID,
		CustomerID:    customer.ID,
		AppointmentID: input.AppointmentID,
		Type:          input.Type,
		Subject:       input.Subject,
		Body:          input.Body,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log notification for customer %s: %v", customer.ID, err)
	}

	if sendErr != nil {
		return fmt.Errorf("%w: twilio send: %v", ErrCollaborator, sendErr)
	}
	return nil
}

var _ Notifier = (*NotificationService)(nil)
