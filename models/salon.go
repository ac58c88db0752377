package models

import (
	"github.com/google/uuid"
)

type Salon struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key"`
	Name                  string    `gorm:"not null"`
	Address               string
	District              string
	WorkingHours          JSONB `gorm:"type:jsonb;default:'{}'"`
	WhatsAppNotifications bool  `gorm:"default:false"`
	SMSNotifications      bool  `gorm:"default:true"`

	Users           []User          `gorm:"foreignKey:SalonID"`
	Customers       []Customer      `gorm:"foreignKey:SalonID"`
	Services        []Service       `gorm:"foreignKey:SalonID"`
	WaitlistEntries []WaitlistEntry `gorm:"foreignKey:SalonID"`
	Appointments    []Appointment   `gorm:"foreignKey:SalonID"`
}
