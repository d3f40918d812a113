// internal/handlers/procedures.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medical-back/internal/clinic"
	"medical-back/internal/middleware"
	"medical-back/internal/models"
	"medical-back/internal/storage"
)

type ProcedureRequest struct {
	Patient uint        `json:"patient"`
	Date    models.Date `json:"date"`
	Name    string      `json:"name" binding:"required,max=100"`
	Details *string     `json:"details"`
}

type ProcedurePatchRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100"`
	Details *string `json:"details"`
}

// withImageURL fills the cover image address for the response.
func withImageURL(ctx context.Context, store storage.ImageStore, procs ...*models.Procedure) error {
	for _, p := range procs {
		if p.Image == nil {
			p.ImageURL = nil
			continue
		}
		url, err := store.URL(ctx, *p.Image)
		if err != nil {
			return err
		}
		p.ImageURL = &url
	}
	return nil
}

func respondProcedures(c *gin.Context, images storage.ImageStore, procs []models.Procedure) {
	for i := range procs {
		if err := withImageURL(c.Request.Context(), images, &procs[i]); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, procs)
}

func ListProcedures(store *clinic.Store, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		procs, err := store.ListProcedures(c.Request.Context(), middleware.CurrentDoctor(c).ID, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		respondProcedures(c, images, procs)
	}
}

// ListPatientProcedures serves /procedures/:id/ where id names the patient.
func ListPatientProcedures(store *clinic.Store, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		patientID, ok := idParam(c, "id")
		if !ok {
			return
		}
		procs, err := store.ListProcedures(c.Request.Context(), middleware.CurrentDoctor(c).ID, &patientID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondProcedures(c, images, procs)
	}
}

// CreateProcedure also serves /procedures/:id/, where the path patient is used
// when the body does not name one.
func CreateProcedure(store *clinic.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProcedureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Patient == 0 && c.Param("id") != "" {
			patientID, ok := idParam(c, "id")
			if !ok {
				return
			}
			req.Patient = patientID
		}
		proc, err := store.CreateProcedure(c.Request.Context(), middleware.CurrentDoctor(c).ID, clinic.ProcedureInput{
			PatientID: req.Patient,
			Date:      req.Date,
			Name:      req.Name,
			Details:   req.Details,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, proc)
	}
}

func GetProcedure(store *clinic.Store, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		proc, err := store.GetProcedure(c.Request.Context(), middleware.CurrentDoctor(c).ID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := withImageURL(c.Request.Context(), images, proc); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, proc)
	}
}

// UpdateProcedure accepts JSON or a multipart form. A multipart request may
// carry a new cover image in the "image" field; the replaced object is removed
// after the row is saved.
func UpdateProcedure(store *clinic.Store, images storage.ImageStore, maxBytes int64, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		doctorID := middleware.CurrentDoctor(c).ID

		var upd clinic.ProcedureUpdate
		var newKey string
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			if name, ok := c.GetPostForm("name"); ok {
				upd.Name = &name
			}
			if details, ok := c.GetPostForm("details"); ok {
				upd.Details = &details
			}
			if fh, err := c.FormFile("image"); err == nil {
				// Check ownership before anything is written to storage.
				if _, err := store.GetProcedure(ctx, doctorID, id); err != nil {
					respondError(c, err)
					return
				}
				key, err := saveUpload(ctx, images, fh, maxBytes)
				if err != nil {
					respondError(c, err)
					return
				}
				newKey = key
				upd.Image = &newKey
			}
		} else {
			var req ProcedurePatchRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			upd.Name, upd.Details = req.Name, req.Details
		}

		proc, replaced, err := store.UpdateProcedure(ctx, doctorID, id, upd)
		if err != nil {
			if newKey != "" {
				discardObjects(ctx, images, log, newKey)
			}
			respondError(c, err)
			return
		}
		if replaced != nil && *replaced != newKey {
			discardObjects(ctx, images, log, *replaced)
		}
		if err := withImageURL(ctx, images, proc); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, proc)
	}
}
