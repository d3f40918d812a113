// internal/handlers/appointments.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medical-back/internal/clinic"
	"medical-back/internal/middleware"
	"medical-back/internal/models"
)

type AppointmentRequest struct {
	Patient  uint             `json:"patient" binding:"required"`
	Name     string           `json:"name" binding:"required,max=100"`
	Date     models.Date      `json:"date"`
	TimeFrom models.TimeOfDay `json:"time_from" binding:"required"`
	TimeTo   models.TimeOfDay `json:"time_to" binding:"required"`
	Comment  *string          `json:"comment"`
}

func (r AppointmentRequest) input() clinic.AppointmentInput {
	return clinic.AppointmentInput{
		PatientID: r.Patient,
		Name:      r.Name,
		Date:      r.Date,
		TimeFrom:  r.TimeFrom,
		TimeTo:    r.TimeTo,
		Comment:   r.Comment,
	}
}

// ListAppointments returns appointments from today (UTC) onwards.
func ListAppointments(store *clinic.Store, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		today := models.DateOf(now().UTC())
		appts, err := store.ListUpcomingAppointments(c.Request.Context(), middleware.CurrentDoctor(c).ID, today)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, appts)
	}
}

func CreateAppointment(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		appt, err := store.CreateAppointment(c.Request.Context(), middleware.CurrentDoctor(c).ID, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, appt)
	}
}

func GetAppointment(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		appt, err := store.GetAppointment(c.Request.Context(), middleware.CurrentDoctor(c).ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, appt)
	}
}

func ReplaceAppointment(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req AppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		appt, err := store.ReplaceAppointment(c.Request.Context(), middleware.CurrentDoctor(c).ID, id, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, appt)
	}
}
