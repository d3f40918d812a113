// internal/handlers/anamnesis.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medical-back/internal/clinic"
	"medical-back/internal/middleware"
)

type AnamnesisRequest struct {
	Patient     *uint  `json:"patient"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
}

func (r AnamnesisRequest) input() clinic.AnamnesisInput {
	return clinic.AnamnesisInput{PatientID: r.Patient, Name: r.Name, Description: r.Description}
}

func ListAnamnesis(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := store.ListAnamnesis(c.Request.Context(), middleware.CurrentDoctor(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

func ListPatientAnamnesis(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		patientID, ok := idParam(c, "patient_id")
		if !ok {
			return
		}
		notes, err := store.ListAnamnesisForPatient(c.Request.Context(), middleware.CurrentDoctor(c).ID, patientID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

func CreateAnamnesis(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnamnesisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		note, err := store.CreateAnamnesis(c.Request.Context(), middleware.CurrentDoctor(c).ID, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, note)
	}
}

func GetAnamnesis(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		note, err := store.GetAnamnesis(c.Request.Context(), middleware.CurrentDoctor(c).ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}

func ReplaceAnamnesis(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req AnamnesisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		note, err := store.ReplaceAnamnesis(c.Request.Context(), middleware.CurrentDoctor(c).ID, id, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}
