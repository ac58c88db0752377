// controllers/appointment.go
package controllers

import (
	"net/http"

	"github.com/bosco250/myUrutiSaluni-sub016/services"
	"github.com/bosco250/myUrutiSaluni-sub016/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AppointmentController exposes read and cancel operations over appointments.
// Creation happens only through waitlist conversion.
type AppointmentController struct {
	Appointments *services.AppointmentService
}

func NewAppointmentController(appointments *services.AppointmentService) *AppointmentController {
	return &AppointmentController{Appointments: appointments}
}

// GetAppointments retrieves all appointments for the salon
func (ac *AppointmentController) GetAppointments(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	appointments, err := ac.Appointments.ListAppointments(salonUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appointment, err := ac.Appointments.GetAppointment(appointmentUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if appointment.SalonID != salonUUID {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// CancelAppointment marks an appointment as cancelled
func (ac *AppointmentController) CancelAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appointment, err := ac.Appointments.GetAppointment(appointmentUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if appointment.SalonID != salonUUID {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	}

	cancelled, err := ac.Appointments.CancelAppointment(appointmentUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}
