// internal/handlers/medications.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medical-back/internal/clinic"
	"medical-back/internal/middleware"
)

type MedicationRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Quantity *int   `json:"quantity" binding:"omitempty,gte=0"`
}

func (r MedicationRequest) input() clinic.MedicationInput {
	return clinic.MedicationInput{Name: r.Name, Quantity: r.Quantity}
}

func ListMedications(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		meds, err := store.ListMedications(c.Request.Context(), middleware.CurrentDoctor(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, meds)
	}
}

func CreateMedication(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MedicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		med, err := store.CreateMedication(c.Request.Context(), middleware.CurrentDoctor(c).ID, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, med)
	}
}

func GetMedication(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		med, err := store.GetMedication(c.Request.Context(), middleware.CurrentDoctor(c).ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, med)
	}
}

func ReplaceMedication(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req MedicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		med, err := store.ReplaceMedication(c.Request.Context(), middleware.CurrentDoctor(c).ID, id, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, med)
	}
}
