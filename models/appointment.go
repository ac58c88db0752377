package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses
const (
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

type Appointment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SalonID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	ServiceID  *uuid.UUID `gorm:"type:uuid;index" json:"serviceId"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;index" json:"employeeId"`

	ScheduledStart time.Time `gorm:"not null;index" json:"scheduledStart"`
	ScheduledEnd   time.Time `gorm:"not null" json:"scheduledEnd"`

	Status string `gorm:"type:varchar(20);default:'confirmed'" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
