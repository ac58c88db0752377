package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Waitlist entry statuses
const (
	WaitlistStatusPending   = "pending"
	WaitlistStatusContacted = "contacted"
	WaitlistStatusBooked    = "booked"
	WaitlistStatusCancelled = "cancelled"
	WaitlistStatusExpired   = "expired"
)

// DefaultWaitlistTTL is applied to ExpiresAt when the caller does not supply one.
const DefaultWaitlistTTL = 30 * 24 * time.Hour

type WaitlistEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	SalonID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	ServiceID  *uuid.UUID `gorm:"type:uuid;index" json:"serviceId"`

	// Set exactly once, when the entry is converted to an appointment.
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointmentId"`

	Status string `gorm:"type:varchar(20);index;default:'pending'" json:"status"`

	PreferredDate      *time.Time `json:"preferredDate"`
	PreferredTimeStart string     `gorm:"type:varchar(5)" json:"preferredTimeStart"` // "HH:MM"
	PreferredTimeEnd   string     `gorm:"type:varchar(5)" json:"preferredTimeEnd"`
	Flexible           bool       `gorm:"default:true" json:"flexible"`

	Priority int    `gorm:"default:0" json:"priority"` // 0-10, higher served first
	Notes    string `gorm:"type:text" json:"notes"`

	ContactedAt *time.Time `json:"contactedAt"`
	ExpiresAt   time.Time  `gorm:"index" json:"expiresAt"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// IsExpired reports whether the entry's deadline has passed, regardless of the
// stored status. Selection must treat such entries as ineligible even before
// the sweeper persists the expired status.
func (e *WaitlistEntry) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

var waitlistTransitions = map[string][]string{
	WaitlistStatusPending:   {WaitlistStatusContacted, WaitlistStatusBooked, WaitlistStatusCancelled, WaitlistStatusExpired},
	WaitlistStatusContacted: {WaitlistStatusContacted, WaitlistStatusBooked, WaitlistStatusCancelled, WaitlistStatusExpired},
}

// ValidWaitlistTransition reports whether an entry may move from one status to
// another. Booked, cancelled and expired are terminal: nothing transitions out
// of them. Re-contacting an already contacted entry is allowed.
func ValidWaitlistTransition(from, to string) bool {
	allowed, ok := waitlistTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// IsTerminalWaitlistStatus reports whether no further transition is permitted.
func IsTerminalWaitlistStatus(status string) bool {
	switch status {
	case WaitlistStatusBooked, WaitlistStatusCancelled, WaitlistStatusExpired:
		return true
	}
	return false
}

// IsWaitlistStatus reports whether s is one of the known entry statuses.
func IsWaitlistStatus(s string) bool {
	switch s {
	case WaitlistStatusPending, WaitlistStatusContacted, WaitlistStatusBooked,
		WaitlistStatusCancelled, WaitlistStatusExpired:
		return true
	}
	return false
}
