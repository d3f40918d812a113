// internal/clinic/procedures.go
package clinic

import (
	"context"
	"strings"
	"time"

	"medical-back/internal/models"
)

type ProcedureInput struct {
	PatientID uint        `json:"patient" validate:"required"`
	Date      models.Date `json:"date" validate:"required"`
	Name      string      `json:"name" validate:"required,max=100"`
	Details   *string     `json:"details"`
}

// ProcedureUpdate covers the only fields that may change after creation.
type ProcedureUpdate struct {
	Name    *string `json:"name" validate:"omitnil,min=1,max=100"`
	Details *string `json:"details"`
	Image   *string `json:"image"`
}

// ListProcedures returns the doctor's procedures, newest date first. A non-nil
// patientID restricts the list to that patient, who must belong to the doctor.
func (s *Store) ListProcedures(ctx context.Context, doctorID uint, patientID *uint) ([]models.Procedure, error) {
	q := s.db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if patientID != nil {
		if err := s.ownsPatient(ctx, doctorID, *patientID); err != nil {
			return nil, err
		}
		q = q.Where("patient_id = ?", *patientID)
	}
	procs := []models.Procedure{}
	if err := q.Order("date DESC").Order("id DESC").Find(&procs).Error; err != nil {
		return nil, err
	}
	return procs, nil
}

func (s *Store) CreateProcedure(ctx context.Context, doctorID uint, in ProcedureInput) (*models.Procedure, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.ownsPatient(ctx, doctorID, in.PatientID); err != nil {
		return nil, err
	}
	p := &models.Procedure{
		DoctorID:  doctorID,
		PatientID: in.PatientID,
		Date:      in.Date,
		Name:      in.Name,
		Details:   in.Details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.create(ctx, p, "procedure"); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetProcedure(ctx context.Context, doctorID, id uint) (*models.Procedure, error) {
	var p models.Procedure
	if err := s.first(ctx, &p, "procedure", "id = ? AND doctor_id = ?", id, doctorID); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProcedure applies upd and returns the updated procedure together with
// the cover image key it replaced, if any, so the caller can drop the old object.
func (s *Store) UpdateProcedure(ctx context.Context, doctorID, id uint, upd ProcedureUpdate) (*models.Procedure, *string, error) {
	p, err := s.GetProcedure(ctx, doctorID, id)
	if err != nil {
		return nil, nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		upd.Name = &name
	}
	if err := check(upd); err != nil {
		return nil, nil, err
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Details != nil {
		p.Details = upd.Details
	}
	var replaced *string
	if upd.Image != nil {
		replaced = p.Image
		p.Image = upd.Image
	}
	if err := s.save(ctx, p, "procedure"); err != nil {
		return nil, nil, err
	}
	return p, replaced, nil
}
