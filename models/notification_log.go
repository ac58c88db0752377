// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	SalonID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`
	Type          string     `gorm:"type:varchar(30)"` // waitlist_contacted, appointment_confirmed
	Subject       string     `gorm:"type:varchar(120)"`
	Body          string     `gorm:"type:text"`
	Status        string     `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage  string     `gorm:"type:text"`
	Channel       string     `gorm:"type:varchar(20)"` // whatsapp, sms
	SentAt        time.Time
	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
