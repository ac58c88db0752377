package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryFilter narrows List results. Each field is optional; nil means
// "don't filter on this". List never filters on expiry implicitly.
type EntryFilter struct {
	SalonID *uuid.UUID
	Status  *string
}

// EntryStore is the persistence collaborator for waitlist entries. The two
// Mark* methods are compare-and-set: they only touch rows still in a
// non-terminal status and report whether the swap happened, which is the
// engine's row-level atomicity guarantee for concurrent conversions.
type EntryStore interface {
	Create(entry *models.WaitlistEntry) error
	Get(id uuid.UUID) (*models.WaitlistEntry, error)
	List(filter EntryFilter) ([]models.WaitlistEntry, error)
	Update(entry *models.WaitlistEntry) error
	Remove(id uuid.UUID) error

	MarkBooked(id, appointmentID uuid.UUID) (bool, error)
	MarkContacted(id uuid.UUID, contactedAt time.Time, notes string) (bool, error)
	ExpirePending(now time.Time) (int64, error)
}

type GormEntryStore struct {
	db *gorm.DB
}

func NewGormEntryStore(db *gorm.DB) *GormEntryStore {
	return &GormEntryStore{db: db}
}

func (s *GormEntryStore) Create(entry *models.WaitlistEntry) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("%w: create waitlist entry: %v", ErrCollaborator, err)
	}
	return nil
}

func (s *GormEntryStore) Get(id uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := s.db.Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get waitlist entry: %v", ErrCollaborator, err)
	}
	return &entry, nil
}

func (s *GormEntryStore) List(filter EntryFilter) ([]models.WaitlistEntry, error) {
	query := s.db.Model(&models.WaitlistEntry{})
	if filter.SalonID != nil {
		query = query.Where("salon_id = ?", *filter.SalonID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var entries []models.WaitlistEntry
	if err := query.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: list waitlist entries: %v", ErrCollaborator, err)
	}
	return entries, nil
}

func (s *GormEntryStore) Update(entry *models.WaitlistEntry) error {
	if err := s.db.Save(entry).Error; err != nil {
		return fmt.Errorf("%w: update waitlist entry: %v", ErrCollaborator, err)
	}
	return nil
}

func (s *GormEntryStore) Remove(id uuid.UUID) error {
	result := s.db.Where("id = ?", id).Delete(&models.WaitlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("%w: remove waitlist entry: %v", ErrCollaborator, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkBooked swaps the entry to booked and records the appointment id, but
// only while the row is still pending or contacted. A false return means the
// row was missing or already in another status at commit time.
func (s *GormEntryStore) MarkBooked(id, appointmentID uuid.UUID) (bool, error) {
	result := s.db.Model(&models.WaitlistEntry{}).
		Where("id = ? AND status IN ?", id, []string{models.WaitlistStatusPending, models.WaitlistStatusContacted}).
		Updates(map[string]interface{}{
			"status":         models.WaitlistStatusBooked,
			"appointment_id": appointmentID,
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: mark booked: %v", ErrCollaborator, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkContacted stamps contactedAt and replaces notes with the already
// combined text. Same CAS contract as MarkBooked.
func (s *GormEntryStore) MarkContacted(id uuid.UUID, contactedAt time.Time, notes string) (bool, error) {
	result := s.db.Model(&models.WaitlistEntry{}).
		Where("id = ? AND status IN ?", id, []string{models.WaitlistStatusPending, models.WaitlistStatusContacted}).
		Updates(map[string]interface{}{
			"status":       models.WaitlistStatusContacted,
			"contacted_at": contactedAt,
			"notes":        notes,
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: mark contacted: %v", ErrCollaborator, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ExpirePending transitions every overdue pending row in one statement, so a
// second sweep with no new overdue rows touches nothing.
func (s *GormEntryStore) ExpirePending(now time.Time) (int64, error) {
	result := s.db.Model(&models.WaitlistEntry{}).
		Where("status = ? AND expires_at <= ?", models.WaitlistStatusPending, now).
		Update("status", models.WaitlistStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: expire pending entries: %v", ErrCollaborator, result.Error)
	}
	return result.RowsAffected, nil
}

var _ EntryStore = (*GormEntryStore)(nil)
