package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateAppointmentInput struct {
	CustomerID     uuid.UUID
	SalonID        uuid.UUID
	ServiceID      *uuid.UUID
	EmployeeID     *uuid.UUID
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Notes          string
}

// AppointmentService owns appointment records. It is both the appointment
// collaborator used by the waitlist engine and the backing for the
// appointments API.
type AppointmentService struct {
	db *gorm.DB
}

func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

func (s *AppointmentService) CreateAppointment(input CreateAppointmentInput) (*models.Appointment, error) {
	if input.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customerId is required", ErrValidation)
	}
	if input.SalonID == uuid.Nil {
		return nil, fmt.Errorf("%w: salonId is required", ErrValidation)
	}
	if input.ScheduledStart.IsZero() || input.ScheduledEnd.IsZero() {
		return nil, fmt.Errorf("%w: scheduledStart and scheduledEnd are required", ErrValidation)
	}
	if !input.ScheduledEnd.After(input.ScheduledStart) {
		return nil, fmt.Errorf("%w: scheduledEnd must be after scheduledStart", ErrValidation)
	}

	appointment := models.Appointment{
		CustomerID:     input.CustomerID,
		SalonID:        input.SalonID,
		ServiceID:      input.ServiceID,
		EmployeeID:     input.EmployeeID,
		ScheduledStart: input.ScheduledStart,
		ScheduledEnd:   input.ScheduledEnd,
		Status:         models.AppointmentStatusConfirmed,
		Notes:          input.Notes,
	}
	if err := s.db.Create(&appointment).Error; err != nil {
		return nil, fmt.Errorf("%w: create appointment: %v", ErrCollaborator, err)
	}
	return &appointment, nil
}

// DeleteAppointment erases an appointment row entirely. Used to compensate a
// conversion whose entry swap lost; a soft delete would leave an orphan
// visible to reporting queries.
func (s *AppointmentService) DeleteAppointment(id uuid.UUID) error {
	result := s.db.Unscoped().Where("id = ?", id).Delete(&models.Appointment{})
	if result.Error != nil {
		return fmt.Errorf("%w: delete appointment: %v", ErrCollaborator, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AppointmentService) GetAppointment(id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.Where("id = ?", id).First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get appointment: %v", ErrCollaborator, err)
	}
	return &appointment, nil
}

func (s *AppointmentService) ListAppointments(salonID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := s.db.Where("salon_id = ?", salonID).
		Order("scheduled_start ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("%w: list appointments: %v", ErrCollaborator, err)
	}
	return appointments, nil
}

// CancelAppointment marks an appointment cancelled. Completed appointments
// stay completed.
func (s *AppointmentService) CancelAppointment(id uuid.UUID) (*models.Appointment, error) {
	appointment, err := s.GetAppointment(id)
	if err != nil {
		return nil, err
	}
	switch appointment.Status {
	case models.AppointmentStatusCancelled:
		return appointment, nil
	case models.AppointmentStatusCompleted, models.AppointmentStatusNoShow:
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidStateTransition, appointment.Status)
	}

	appointment.Status = models.AppointmentStatusCancelled
	if err := s.db.Save(appointment).Error; err != nil {
		return nil, fmt.Errorf("%w: cancel appointment: %v", ErrCollaborator, err)
	}
	return appointment, nil
}

var _ AppointmentCreator = (*AppointmentService)(nil)
