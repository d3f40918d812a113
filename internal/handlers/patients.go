// internal/handlers/patients.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medical-back/internal/clinic"
	"medical-back/internal/middleware"
	"medical-back/internal/models"
)

type PatientRequest struct {
	LastName    string       `json:"last_name" binding:"required,max=100"`
	FirstName   string       `json:"first_name" binding:"required,max=100"`
	MiddleName  *string      `json:"middle_name" binding:"omitempty,max=100"`
	PhoneNumber string       `json:"phone_number" binding:"required,max=15"`
	Comment     *string      `json:"comment"`
	IsContact   bool         `json:"is_contact"`
	BirthDate   *models.Date `json:"birth_date"`
}

type PatientPatchRequest struct {
	LastName    *string      `json:"last_name" binding:"omitempty,max=100"`
	FirstName   *string      `json:"first_name" binding:"omitempty,max=100"`
	MiddleName  *string      `json:"middle_name" binding:"omitempty,max=100"`
	PhoneNumber *string      `json:"phone_number" binding:"omitempty,max=15"`
	Comment     *string      `json:"comment"`
	IsContact   *bool        `json:"is_contact"`
	BirthDate   *models.Date `json:"birth_date"`
}

// ListPatients supports ?search= on last name.
func ListPatients(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		doctor := middleware.CurrentDoctor(c)
		patients, err := store.ListPatients(c.Request.Context(), doctor.ID, c.Query("search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, patients)
	}
}

func CreatePatient(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PatientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		doctor := middleware.CurrentDoctor(c)
		patient, err := store.CreatePatient(c.Request.Context(), doctor.ID, clinic.PatientInput{
			LastName:    req.LastName,
			FirstName:   req.FirstName,
			MiddleName:  req.MiddleName,
			PhoneNumber: req.PhoneNumber,
			Comment:     req.Comment,
			IsContact:   req.IsContact,
			BirthDate:   req.BirthDate,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, patient)
	}
}

func UpdatePatient(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req PatientPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		doctor := middleware.CurrentDoctor(c)
		patient, err := store.UpdatePatient(c.Request.Context(), doctor.ID, id, clinic.PatientUpdate{
			LastName:    req.LastName,
			FirstName:   req.FirstName,
			MiddleName:  req.MiddleName,
			PhoneNumber: req.PhoneNumber,
			Comment:     req.Comment,
			IsContact:   req.IsContact,
			BirthDate:   req.BirthDate,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, patient)
	}
}
