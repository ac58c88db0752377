// controllers/waitlist.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/bosco250/myUrutiSaluni-sub016/services"
	"github.com/bosco250/myUrutiSaluni-sub016/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WaitlistController exposes the waitlist engine to the API layer.
type WaitlistController struct {
	Waitlist *services.WaitlistService
}

func NewWaitlistController(waitlist *services.WaitlistService) *WaitlistController {
	return &WaitlistController{Waitlist: waitlist}
}

// CreateWaitlistEntryInput defines the expected JSON structure for creating an entry
type CreateWaitlistEntryInput struct {
	CustomerID         string     `json:"customerId" binding:"required,uuid"`
	ServiceID          *string    `json:"serviceId" binding:"omitempty,uuid"`
	PreferredDate      *time.Time `json:"preferredDate"`
	PreferredTimeStart string     `json:"preferredTimeStart"`
	PreferredTimeEnd   string     `json:"preferredTimeEnd"`
	Flexible           *bool      `json:"flexible"`
	Priority           *int       `json:"priority" binding:"omitempty,min=0,max=10"`
	Notes              string     `json:"notes"`
	ExpiresAt          *time.Time `json:"expiresAt"`
}

// UpdateWaitlistEntryInput defines the expected JSON structure for updating an entry
type UpdateWaitlistEntryInput struct {
	ServiceID          *string    `json:"serviceId" binding:"omitempty,uuid"`
	PreferredDate      *time.Time `json:"preferredDate"`
	PreferredTimeStart *string    `json:"preferredTimeStart"`
	PreferredTimeEnd   *string    `json:"preferredTimeEnd"`
	Flexible           *bool      `json:"flexible"`
	Priority           *int       `json:"priority" binding:"omitempty,min=0,max=10"`
	Notes              *string    `json:"notes"`
	ExpiresAt          *time.Time `json:"expiresAt"`
	Status             *string    `json:"status"`
}

type ContactWaitlistEntryInput struct {
	Notes string `json:"notes"`
}

type ConvertWaitlistEntryInput struct {
	ScheduledStart time.Time `json:"scheduledStart" binding:"required"`
	ScheduledEnd   time.Time `json:"scheduledEnd" binding:"required"`
	EmployeeID     *string   `json:"employeeId" binding:"omitempty,uuid"`
	Notes          string    `json:"notes"`
}

// CreateEntry creates a new waitlist entry for the salon
func (wc *WaitlistController) CreateEntry(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateWaitlistEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidateTimeOfDay(input.PreferredTimeStart) || !utils.ValidateTimeOfDay(input.PreferredTimeEnd) {
		utils.RespondWithError(c, http.StatusBadRequest, "Preferred times must be HH:MM")
		return
	}

	customerUUID := uuid.Must(uuid.Parse(input.CustomerID))
	entry, err := wc.Waitlist.CreateEntry(services.CreateEntryInput{
		CustomerID:         customerUUID,
		SalonID:            salonUUID,
		ServiceID:          parseOptionalUUID(input.ServiceID),
		PreferredDate:      input.PreferredDate,
		PreferredTimeStart: input.PreferredTimeStart,
		PreferredTimeEnd:   input.PreferredTimeEnd,
		Flexible:           input.Flexible,
		Priority:           input.Priority,
		Notes:              input.Notes,
		ExpiresAt:          input.ExpiresAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetEntries retrieves the salon's waitlist, optionally filtered by status
func (wc *WaitlistController) GetEntries(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	filter := services.EntryFilter{SalonID: &salonUUID}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	entries, err := wc.Waitlist.ListEntries(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetEntry retrieves a specific waitlist entry by ID
func (wc *WaitlistController) GetEntry(c *gin.Context) {
	entry, ok := wc.salonEntry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateEntry applies a partial update to an entry
func (wc *WaitlistController) UpdateEntry(c *gin.Context) {
	entry, ok := wc.salonEntry(c)
	if !ok {
		return
	}

	var input UpdateWaitlistEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.PreferredTimeStart != nil && !utils.ValidateTimeOfDay(*input.PreferredTimeStart) {
		utils.RespondWithError(c, http.StatusBadRequest, "Preferred times must be HH:MM")
		return
	}
	if input.PreferredTimeEnd != nil && !utils.ValidateTimeOfDay(*input.PreferredTimeEnd) {
		utils.RespondWithError(c, http.StatusBadRequest, "Preferred times must be HH:MM")
		return
	}

	updated, err := wc.Waitlist.UpdateEntry(entry.ID, services.EntryPatch{
		ServiceID:          parseOptionalUUID(input.ServiceID),
		PreferredDate:      input.PreferredDate,
		PreferredTimeStart: input.PreferredTimeStart,
		PreferredTimeEnd:   input.PreferredTimeEnd,
		Flexible:           input.Flexible,
		Priority:           input.Priority,
		Notes:              input.Notes,
		ExpiresAt:          input.ExpiresAt,
		Status:             input.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteEntry removes an entry from the waitlist
func (wc *WaitlistController) DeleteEntry(c *gin.Context) {
	entry, ok := wc.salonEntry(c)
	if !ok {
		return
	}

	if err := wc.Waitlist.RemoveEntry(entry.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Waitlist entry removed"})
}

// ContactEntry marks an entry as contacted and appends notes
func (wc *WaitlistController) ContactEntry(c *gin.Context) {
	entry, ok := wc.salonEntry(c)
	if !ok {
		return
	}

	var input ContactWaitlistEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updated, err := wc.Waitlist.MarkContacted(entry.ID, input.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// NextEntry returns the next eligible entry for the salon, or null
func (wc *WaitlistController) NextEntry(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var serviceID *uuid.UUID
	if raw := c.Query("serviceId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
			return
		}
		serviceID = &parsed
	}

	entry, err := wc.Waitlist.SelectNext(salonUUID, serviceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// ConvertEntry books the entry into an appointment at the supplied slot
func (wc *WaitlistController) ConvertEntry(c *gin.Context) {
	entry, ok := wc.salonEntry(c)
	if !ok {
		return
	}

	var input ConvertWaitlistEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updated, appointment, err := wc.Waitlist.ConvertToAppointment(entry.ID, services.ScheduleInput{
		ScheduledStart: input.ScheduledStart,
		ScheduledEnd:   input.ScheduledEnd,
		EmployeeID:     parseOptionalUUID(input.EmployeeID),
		Notes:          input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":       updated,
		"appointment": appointment,
	})
}

// SweepEntries expires overdue pending entries and reports the count
func (wc *WaitlistController) SweepEntries(c *gin.Context) {
	count, err := wc.Waitlist.SweepExpired()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": count})
}

// salonEntry loads the entry in the path and checks it belongs to the
// caller's salon; cross-salon ids read as not found.
func (wc *WaitlistController) salonEntry(c *gin.Context) (*models.WaitlistEntry, bool) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return nil, false
	}

	entryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid waitlist entry ID format")
		return nil, false
	}

	entry, err := wc.Waitlist.GetEntry(entryUUID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if entry.SalonID != salonUUID {
		utils.RespondWithError(c, http.StatusNotFound, "Waitlist entry not found")
		return nil, false
	}
	return entry, true
}

func salonFromContext(c *gin.Context) (uuid.UUID, bool) {
	salonID, exists := c.Get("salonId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return uuid.Nil, false
	}

	salonUUID, err := uuid.Parse(salonID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid salon ID format")
		return uuid.Nil, false
	}
	return salonUUID, true
}

func parseOptionalUUID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidStateTransition):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal error")
	}
}
