package services

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memEntryStore is an in-memory EntryStore honoring the same compare-and-set
// contract as the gorm implementation, so conversion races can be exercised
// without a database.
type memEntryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.WaitlistEntry
}

func newMemEntryStore() *memEntryStore {
	return &memEntryStore{entries: make(map[uuid.UUID]*models.WaitlistEntry)}
}

func (s *memEntryStore) Create(entry *models.WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	stored := *entry
	s.entries[entry.ID] = &stored
	return nil
}

func (s *memEntryStore) Get(id uuid.UUID) (*models.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (s *memEntryStore) List(filter EntryFilter) ([]models.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WaitlistEntry
	for _, entry := range s.entries {
		if filter.SalonID != nil && entry.SalonID != *filter.SalonID {
			continue
		}
		if filter.Status != nil && entry.Status != *filter.Status {
			continue
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memEntryStore) Update(entry *models.WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return ErrNotFound
	}
	stored := *entry
	s.entries[entry.ID] = &stored
	return nil
}

func (s *memEntryStore) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *memEntryStore) MarkBooked(id, appointmentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return false, nil
	}
	if entry.Status != models.WaitlistStatusPending && entry.Status != models.WaitlistStatusContacted {
		return false, nil
	}
	entry.Status = models.WaitlistStatusBooked
	apptID := appointmentID
	entry.AppointmentID = &apptID
	return true, nil
}

func (s *memEntryStore) MarkContacted(id uuid.UUID, contactedAt time.Time, notes string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return false, nil
	}
	if entry.Status != models.WaitlistStatusPending && entry.Status != models.WaitlistStatusContacted {
		return false, nil
	}
	entry.Status = models.WaitlistStatusContacted
	when := contactedAt
	entry.ContactedAt = &when
	entry.Notes = notes
	return true, nil
}

func (s *memEntryStore) ExpirePending(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, entry := range s.entries {
		if entry.Status == models.WaitlistStatusPending && !entry.ExpiresAt.After(now) {
			entry.Status = models.WaitlistStatusExpired
			count++
		}
	}
	return count, nil
}

type fakeAppointments struct {
	mu      sync.Mutex
	active  map[uuid.UUID]*models.Appointment
	created int
	failErr error
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{active: make(map[uuid.UUID]*models.Appointment)}
}

func (f *fakeAppointments) CreateAppointment(input CreateAppointmentInput) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	appointment := &models.Appointment{
		ID:             uuid.New(),
		SalonID:        input.SalonID,
		CustomerID:     input.CustomerID,
		ServiceID:      input.ServiceID,
		EmployeeID:     input.EmployeeID,
		ScheduledStart: input.ScheduledStart,
		ScheduledEnd:   input.ScheduledEnd,
		Status:         models.AppointmentStatusConfirmed,
		Notes:          input.Notes,
	}
	f.active[appointment.ID] = appointment
	f.created++
	return appointment, nil
}

func (f *fakeAppointments) DeleteAppointment(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.active[id]; !ok {
		return ErrNotFound
	}
	delete(f.active, id)
	return nil
}

func (f *fakeAppointments) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []NotificationInput
	sendEr error
}

func (f *fakeNotifier) SendNotification(input NotificationInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, input)
	return f.sendEr
}

func (f *fakeNotifier) sentTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []string
	for _, n := range f.sent {
		types = append(types, n.Type)
	}
	return types
}

func newTestService() (*WaitlistService, *memEntryStore, *fakeAppointments, *fakeNotifier) {
	store := newMemEntryStore()
	appointments := newFakeAppointments()
	notifier := &fakeNotifier{}
	return NewWaitlistService(store, appointments, notifier), store, appointments, notifier
}

func seedEntry(t *testing.T, store *memEntryStore, salonID uuid.UUID, priority int, createdAt time.Time, mutate ...func(*models.WaitlistEntry)) *models.WaitlistEntry {
	t.Helper()
	entry := &models.WaitlistEntry{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		SalonID:    salonID,
		Status:     models.WaitlistStatusPending,
		Flexible:   true,
		Priority:   priority,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(models.DefaultWaitlistTTL),
	}
	for _, m := range mutate {
		m(entry)
	}
	require.NoError(t, store.Create(entry))
	return entry
}

func TestCreateEntryAppliesDefaults(t *testing.T) {
	svc, _, _, _ := newTestService()

	before := time.Now()
	entry, err := svc.CreateEntry(CreateEntryInput{
		CustomerID: uuid.New(),
		SalonID:    uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.WaitlistStatusPending, entry.Status)
	assert.True(t, entry.Flexible)
	assert.Equal(t, 0, entry.Priority)
	assert.Nil(t, entry.AppointmentID)
	assert.WithinDuration(t, before.Add(models.DefaultWaitlistTTL), entry.ExpiresAt, time.Minute)
}

func TestCreateEntryValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateEntry(CreateEntryInput{SalonID: uuid.New()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateEntry(CreateEntryInput{CustomerID: uuid.New()})
	assert.ErrorIs(t, err, ErrValidation)

	tooHigh := 11
	_, err = svc.CreateEntry(CreateEntryInput{
		CustomerID: uuid.New(),
		SalonID:    uuid.New(),
		Priority:   &tooHigh,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSelectNextOrdersByPriorityThenAge(t *testing.T) {
	svc, store, _, _ := newTestService()
	salonID := uuid.New()
	base := time.Now().Add(-time.Hour)

	a := seedEntry(t, store, salonID, 5, base)
	seedEntry(t, store, salonID, 5, base.Add(time.Second))

	// Equal priority: the older request wins
	next, err := svc.SelectNext(salonID, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, a.ID, next.ID)

	// Higher priority wins despite later creation
	c := seedEntry(t, store, salonID, 8, base.Add(2*time.Second))
	next, err = svc.SelectNext(salonID, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, c.ID, next.ID)
}

func TestSelectNextIsDeterministic(t *testing.T) {
	svc, store, _, _ := newTestService()
	salonID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		seedEntry(t, store, salonID, i%3, base.Add(time.Duration(i)*time.Second))
	}

	first, err := svc.SelectNext(salonID, nil)
	require.NoError(t, err)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		again, err := svc.SelectNext(salonID, nil)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestSelectNextExcludesExpiredEvenWhilePending(t *testing.T) {
	svc, store, _, _ := newTestService()
	salonID := uuid.New()

	// Stored status is still pending but the deadline already passed
	seedEntry(t, store, salonID, 9, time.Now().Add(-2*time.Hour), func(e *models.WaitlistEntry) {
		e.ExpiresAt = time.Now().Add(-time.Hour)
	})
	fresh := seedEntry(t, store, salonID, 1, time.Now().Add(-time.Minute))

	next, err := svc.SelectNext(salonID, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, fresh.ID, next.ID)
}

func TestSelectNextFiltersByService(t *testing.T) {
	svc, store, _, _ := newTestService()
	salonID := uuid.New()
	serviceID := uuid.New()
	base := time.Now().Add(-time.Hour)

	seedEntry(t, store, salonID, 9, base)
	wanted := seedEntry(t, store, salonID, 1, base.Add(time.Second), func(e *models.WaitlistEntry) {
		e.ServiceID = &serviceID
	})

	next, err := svc.SelectNext(salonID, &serviceID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, wanted.ID, next.ID)
}

func TestSelectNextReturnsNilWhenEmpty(t *testing.T) {
	svc, _, _, _ := newTestService()

	next, err := svc.SelectNext(uuid.New(), nil)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestConvertToAppointment(t *testing.T) {
	svc, store, appointments, notifier := newTestService()
	salonID := uuid.New()
	entry := seedEntry(t, store, salonID, 5, time.Now().Add(-time.Hour))

	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	updated, appointment, err := svc.ConvertToAppointment(entry.ID, ScheduleInput{
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, models.WaitlistStatusBooked, updated.Status)
	require.NotNil(t, updated.AppointmentID)
	assert.Equal(t, appointment.ID, *updated.AppointmentID)
	assert.Equal(t, entry.CustomerID, appointment.CustomerID)
	assert.Equal(t, salonID, appointment.SalonID)
	assert.Equal(t, 1, appointments.activeCount())
	assert.Contains(t, notifier.sentTypes(), "appointment_confirmed")

	// A second conversion reports Conflict, not silent success
	_, _, err = svc.ConvertToAppointment(entry.ID, ScheduleInput{
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, appointments.activeCount())
}

func TestConvertConcurrentOnlyOneWins(t *testing.T) {
	svc, store, appointments, _ := newTestService()
	entry := seedEntry(t, store, uuid.New(), 5, time.Now().Add(-time.Hour))

	start := time.Now().Add(24 * time.Hour)
	schedule := ScheduleInput{ScheduledStart: start, ScheduledEnd: start.Add(time.Hour)}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.ConvertToAppointment(entry.ID, schedule)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	// The loser's appointment was compensated away
	assert.Equal(t, 1, appointments.activeCount())

	final, err := store.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistStatusBooked, final.Status)
}

func TestConvertLeavesEntryUntouchedOnCollaboratorFailure(t *testing.T) {
	svc, store, appointments, _ := newTestService()
	entry := seedEntry(t, store, uuid.New(), 5, time.Now().Add(-time.Hour))
	appointments.failErr = errors.New("schedule rejected")

	start := time.Now().Add(24 * time.Hour)
	_, _, err := svc.ConvertToAppointment(entry.ID, ScheduleInput{
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
	})
	require.Error(t, err)

	after, getErr := store.Get(entry.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.WaitlistStatusPending, after.Status)
	assert.Nil(t, after.AppointmentID)
	assert.Equal(t, 0, appointments.activeCount())
}

func TestConvertTerminalEntries(t *testing.T) {
	svc, store, _, _ := newTestService()
	salonID := uuid.New()
	start := time.Now().Add(24 * time.Hour)
	schedule := ScheduleInput{ScheduledStart: start, ScheduledEnd: start.Add(time.Hour)}

	cancelled := seedEntry(t, store, salonID, 0, time.Now(), func(e *models.WaitlistEntry) {
		e.Status = models.WaitlistStatusCancelled
	})
	_, _, err := svc.ConvertToAppointment(cancelled.ID, schedule)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	expired := seedEntry(t, store, salonID, 0, time.Now(), func(e *models.WaitlistEntry) {
		e.Status = models.WaitlistStatusExpired
	})
	_, _, err = svc.ConvertToAppointment(expired.ID, schedule)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, _, err = svc.ConvertToAppointment(uuid.New(), schedule)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConvertSucceedsDespiteNotifierFailure(t *testing.T) {
	svc, store, _, notifier := newTestService()
	notifier.sendEr = errors.New("twilio down")
	entry := seedEntry(t, store, uuid.New(), 0, time.Now().Add(-time.Minute))

	start := time.Now().Add(24 * time.Hour)
	updated, _, err := svc.ConvertToAppointment(entry.ID, ScheduleInput{
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistStatusBooked, updated.Status)
}

func TestMarkContactedAppendsNotes(t *testing.T) {
	svc, store, _, notifier := newTestService()
	entry := seedEntry(t, store, uuid.New(), 0, time.Now().Add(-time.Minute), func(e *models.WaitlistEntry) {
		e.Notes = "initial request"
	})

	before := time.Now()
	updated, err := svc.MarkContacted(entry.ID, "called, will confirm tomorrow")
	require.NoError(t, err)

	assert.Equal(t, models.WaitlistStatusContacted, updated.Status)
	assert.Equal(t, "initial request\ncalled, will confirm tomorrow", updated.Notes)
	require.NotNil(t, updated.ContactedAt)
	assert.WithinDuration(t, before, *updated.ContactedAt, time.Minute)
	assert.Contains(t, notifier.sentTypes(), "waitlist_contacted")

	// Contacting again keeps appending
	again, err := svc.MarkContacted(entry.ID, "confirmed for Friday")
	require.NoError(t, err)
	assert.Equal(t, "initial request\ncalled, will confirm tomorrow\nconfirmed for Friday", again.Notes)
}

func TestMarkContactedRejectsTerminal(t *testing.T) {
	svc, store, _, _ := newTestService()
	entry := seedEntry(t, store, uuid.New(), 0, time.Now(), func(e *models.WaitlistEntry) {
		e.Status = models.WaitlistStatusBooked
	})

	_, err := svc.MarkContacted(entry.ID, "hello")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	svc, store, _, notifier := newTestService()
	salonID := uuid.New()

	overdue := seedEntry(t, store, salonID, 0, time.Now().Add(-2*time.Hour), func(e *models.WaitlistEntry) {
		e.ExpiresAt = time.Now().Add(-time.Hour)
	})
	fresh := seedEntry(t, store, salonID, 0, time.Now())

	count, err := svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	swept, err := store.Get(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistStatusExpired, swept.Status)

	untouched, err := store.Get(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistStatusPending, untouched.Status)

	// Second sweep with nothing new transitions zero entries
	count, err = svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Expiration never notifies the customer
	assert.Empty(t, notifier.sentTypes())
}

func TestUpdateEntry(t *testing.T) {
	svc, store, _, _ := newTestService()
	entry := seedEntry(t, store, uuid.New(), 2, time.Now().Add(-time.Minute))

	priority := 7
	notes := "prefers Saturday mornings"
	updated, err := svc.UpdateEntry(entry.ID, EntryPatch{Priority: &priority, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Priority)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, models.WaitlistStatusPending, updated.Status)

	cancelled := models.WaitlistStatusCancelled
	updated, err = svc.UpdateEntry(entry.ID, EntryPatch{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistStatusCancelled, updated.Status)

	// Terminal entries are read-only
	_, err = svc.UpdateEntry(entry.ID, EntryPatch{Priority: &priority})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestUpdateEntryStatusRules(t *testing.T) {
	svc, store, _, _ := newTestService()
	entry := seedEntry(t, store, uuid.New(), 0, time.Now())

	booked := models.WaitlistStatusBooked
	_, err := svc.UpdateEntry(entry.ID, EntryPatch{Status: &booked})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	expired := models.WaitlistStatusExpired
	_, err = svc.UpdateEntry(entry.ID, EntryPatch{Status: &expired})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	bogus := "waiting"
	_, err = svc.UpdateEntry(entry.ID, EntryPatch{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)

	badPriority := -1
	_, err = svc.UpdateEntry(entry.ID, EntryPatch{Priority: &badPriority})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveEntry(t *testing.T) {
	svc, store, _, _ := newTestService()
	entry := seedEntry(t, store, uuid.New(), 0, time.Now())

	require.NoError(t, svc.RemoveEntry(entry.ID))
	_, err := store.Get(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.RemoveEntry(entry.ID), ErrNotFound)
}

func TestListEntriesRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestService()

	bogus := "held"
	_, err := svc.ListEntries(EntryFilter{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)
}
