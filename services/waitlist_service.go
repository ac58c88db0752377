// services/waitlist_service.go
package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/google/uuid"
)

// AppointmentCreator is the appointment collaborator boundary. Delete is the
// compensation hook used when an entry loses the booking race after the
// appointment row was already created.
type AppointmentCreator interface {
	CreateAppointment(input CreateAppointmentInput) (*models.Appointment, error)
	DeleteAppointment(id uuid.UUID) error
}

// Notifier delivers customer notifications. Best-effort: the engine logs
// failures and never surfaces them to its own callers.
type Notifier interface {
	SendNotification(input NotificationInput) error
}

type WaitlistService struct {
	store        EntryStore
	appointments AppointmentCreator
	notifier     Notifier
}

func NewWaitlistService(store EntryStore, appointments AppointmentCreator, notifier Notifier) *WaitlistService {
	return &WaitlistService{
		store:        store,
		appointments: appointments,
		notifier:     notifier,
	}
}

type CreateEntryInput struct {
	CustomerID         uuid.UUID
	SalonID            uuid.UUID
	ServiceID          *uuid.UUID
	PreferredDate      *time.Time
	PreferredTimeStart string
	PreferredTimeEnd   string
	Flexible           *bool
	Priority           *int
	Notes              string
	ExpiresAt          *time.Time
}

// EntryPatch carries optional updates; nil fields are left untouched.
// CustomerID and SalonID are immutable and deliberately absent.
type EntryPatch struct {
	ServiceID          *uuid.UUID
	PreferredDate      *time.Time
	PreferredTimeStart *string
	PreferredTimeEnd   *string
	Flexible           *bool
	Priority           *int
	Notes              *string
	ExpiresAt          *time.Time
	Status             *string
}

// ScheduleInput is the caller-resolved slot for a conversion. The engine does
// not compute or conflict-check schedules.
type ScheduleInput struct {
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	EmployeeID     *uuid.UUID
	Notes          string
}

// CreateEntry persists a new pending entry, applying the documented defaults.
func (s *WaitlistService) CreateEntry(input CreateEntryInput) (*models.WaitlistEntry, error) {
	if input.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customerId is required", ErrValidation)
	}
	if input.SalonID == uuid.Nil {
		return nil, fmt.Errorf("%w: salonId is required", ErrValidation)
	}

	now := time.Now()
	entry := models.WaitlistEntry{
		CustomerID:         input.CustomerID,
		SalonID:            input.SalonID,
		ServiceID:          input.ServiceID,
		Status:             models.WaitlistStatusPending,
		PreferredDate:      input.PreferredDate,
		PreferredTimeStart: input.PreferredTimeStart,
		PreferredTimeEnd:   input.PreferredTimeEnd,
		Flexible:           true,
		Notes:              input.Notes,
		ExpiresAt:          now.Add(models.DefaultWaitlistTTL),
	}
	if input.Flexible != nil {
		entry.Flexible = *input.Flexible
	}
	if input.Priority != nil {
		if err := validatePriority(*input.Priority); err != nil {
			return nil, err
		}
		entry.Priority = *input.Priority
	}
	if input.ExpiresAt != nil {
		entry.ExpiresAt = *input.ExpiresAt
	}

	if err := s.store.Create(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *WaitlistService) GetEntry(id uuid.UUID) (*models.WaitlistEntry, error) {
	return s.store.Get(id)
}

func (s *WaitlistService) ListEntries(filter EntryFilter) ([]models.WaitlistEntry, error) {
	if filter.Status != nil && !models.IsWaitlistStatus(*filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter.Status)
	}
	return s.store.List(filter)
}

// UpdateEntry merges a patch onto an existing entry. Terminal entries are
// read-only. The only status reachable through a plain update is cancelled;
// contacted, booked and expired have dedicated operations that keep their
// side effects (contactedAt, appointmentId, sweep accounting) consistent.
func (s *WaitlistService) UpdateEntry(id uuid.UUID, patch EntryPatch) (*models.WaitlistEntry, error) {
	entry, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalWaitlistStatus(entry.Status) {
		return nil, fmt.Errorf("%w: entry is %s", ErrInvalidStateTransition, entry.Status)
	}

	if patch.Status != nil {
		if !models.IsWaitlistStatus(*patch.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
		}
		if *patch.Status != models.WaitlistStatusCancelled {
			return nil, fmt.Errorf("%w: %s -> %s is not permitted through update", ErrInvalidStateTransition, entry.Status, *patch.Status)
		}
		entry.Status = models.WaitlistStatusCancelled
	}
	if patch.Priority != nil {
		if err := validatePriority(*patch.Priority); err != nil {
			return nil, err
		}
		entry.Priority = *patch.Priority
	}
	if patch.ServiceID != nil {
		entry.ServiceID = patch.ServiceID
	}
	if patch.PreferredDate != nil {
		entry.PreferredDate = patch.PreferredDate
	}
	if patch.PreferredTimeStart != nil {
		entry.PreferredTimeStart = *patch.PreferredTimeStart
	}
	if patch.PreferredTimeEnd != nil {
		entry.PreferredTimeEnd = *patch.PreferredTimeEnd
	}
	if patch.Flexible != nil {
		entry.Flexible = *patch.Flexible
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}
	if patch.ExpiresAt != nil {
		entry.ExpiresAt = *patch.ExpiresAt
	}

	if err := s.store.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *WaitlistService) RemoveEntry(id uuid.UUID) error {
	return s.store.Remove(id)
}

// MarkContacted transitions a pending or contacted entry to contacted, stamps
// contactedAt and appends notes to whatever is already there. The customer is
// notified best-effort.
func (s *WaitlistService) MarkContacted(id uuid.UUID, notes string) (*models.WaitlistEntry, error) {
	entry, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !models.ValidWaitlistTransition(entry.Status, models.WaitlistStatusContacted) {
		return nil, fmt.Errorf("%w: %s -> contacted", ErrInvalidStateTransition, entry.Status)
	}

	combined := entry.Notes
	if notes != "" {
		if combined != "" {
			combined += "\n"
		}
		combined += notes
	}

	now := time.Now()
	swapped, err := s.store.MarkContacted(id, now, combined)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, s.classifySwapFailure(id, models.WaitlistStatusContacted)
	}

	updated, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.notify(NotificationInput{
		CustomerID: updated.CustomerID,
		SalonID:    updated.SalonID,
		Type:       "waitlist_contacted",
		Subject:    "Your waitlist request",
		Body:       "A slot may be opening up for you. The salon will be in touch to confirm a time.",
	})
	return updated, nil
}

// SelectNext deterministically picks the next eligible entry for a salon:
// pending, not past its deadline, highest priority first, oldest first among
// equals. Returns nil when nothing is eligible. Pure read; a concurrent
// booking of the returned entry is resolved by the conversion guard, not here.
func (s *WaitlistService) SelectNext(salonID uuid.UUID, serviceID *uuid.UUID) (*models.WaitlistEntry, error) {
	if salonID == uuid.Nil {
		return nil, fmt.Errorf("%w: salonId is required", ErrValidation)
	}

	status := models.WaitlistStatusPending
	entries, err := s.store.List(EntryFilter{SalonID: &salonID, Status: &status})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidates := entries[:0]
	for _, entry := range entries {
		if entry.IsExpired(now) {
			continue
		}
		if serviceID != nil && (entry.ServiceID == nil || *entry.ServiceID != *serviceID) {
			continue
		}
		candidates = append(candidates, entry)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	next := candidates[0]
	return &next, nil
}

// ConvertToAppointment turns one entry into one confirmed appointment. The
// appointment is created first, then the entry is swapped to booked with a
// compare-and-set; if the swap loses (the entry was booked, cancelled or
// expired concurrently) the appointment is deleted again so no partial state
// survives. Exactly one of two concurrent conversions of the same entry can
// win the swap.
func (s *WaitlistService) ConvertToAppointment(id uuid.UUID, schedule ScheduleInput) (*models.WaitlistEntry, *models.Appointment, error) {
	entry, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if entry.Status == models.WaitlistStatusBooked {
		return nil, nil, fmt.Errorf("%w: entry already converted", ErrConflict)
	}
	if !models.ValidWaitlistTransition(entry.Status, models.WaitlistStatusBooked) {
		return nil, nil, fmt.Errorf("%w: %s -> booked", ErrInvalidStateTransition, entry.Status)
	}

	appointment, err := s.appointments.CreateAppointment(CreateAppointmentInput{
		CustomerID:     entry.CustomerID,
		SalonID:        entry.SalonID,
		ServiceID:      entry.ServiceID,
		EmployeeID:     schedule.EmployeeID,
		ScheduledStart: schedule.ScheduledStart,
		ScheduledEnd:   schedule.ScheduledEnd,
		Notes:          schedule.Notes,
	})
	if err != nil {
		// Entry untouched so far; surface the collaborator's failure.
		return nil, nil, err
	}

	swapped, err := s.store.MarkBooked(id, appointment.ID)
	if err != nil {
		s.compensateAppointment(appointment.ID)
		return nil, nil, err
	}
	if !swapped {
		s.compensateAppointment(appointment.ID)
		return nil, nil, s.classifySwapFailure(id, models.WaitlistStatusBooked)
	}

	updated, err := s.store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	s.notify(NotificationInput{
		CustomerID:    updated.CustomerID,
		SalonID:       updated.SalonID,
		AppointmentID: &appointment.ID,
		Type:          "appointment_confirmed",
		Subject:       "Appointment confirmed",
		Body: fmt.Sprintf("Your appointment is confirmed for %s.",
			appointment.ScheduledStart.Format("Mon, 02 Jan 2006 15:04")),
	})
	return updated, appointment, nil
}

// SweepExpired transitions every overdue pending entry to expired and returns
// how many rows changed. Idempotent; expiration sends no notification.
func (s *WaitlistService) SweepExpired() (int64, error) {
	count, err := s.store.ExpirePending(time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Printf("Waitlist sweep expired %d entries", count)
	}
	return count, nil
}

// classifySwapFailure re-reads an entry after a lost compare-and-set to report
// why the transition did not happen.
func (s *WaitlistService) classifySwapFailure(id uuid.UUID, target string) error {
	entry, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if target == models.WaitlistStatusBooked && entry.Status == models.WaitlistStatusBooked {
		return fmt.Errorf("%w: entry already converted", ErrConflict)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, entry.Status, target)
}

func (s *WaitlistService) compensateAppointment(id uuid.UUID) {
	if err := s.appointments.DeleteAppointment(id); err != nil {
		log.Printf("Failed to roll back appointment %s after lost conversion: %v", id, err)
	}
}

func (s *WaitlistService) notify(input NotificationInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendNotification(input); err != nil {
		log.Printf("Failed to notify customer %s: %v", input.CustomerID, err)
	}
}

func validatePriority(priority int) error {
	if priority < 0 || priority > 10 {
		return fmt.Errorf("%w: priority must be between 0 and 10", ErrValidation)
	}
	return nil
}
