// internal/clinic/anamnesis.go
package clinic

import (
	"context"
	"strings"

	"medical-back/internal/models"
)

type AnamnesisInput struct {
	PatientID   *uint  `json:"patient"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

func (s *Store) validateAnamnesis(ctx context.Context, doctorID uint, in AnamnesisInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := check(in); err != nil {
		return err
	}
	if in.PatientID != nil {
		return s.ownsPatient(ctx, doctorID, *in.PatientID)
	}
	return nil
}

func (s *Store) ListAnamnesis(ctx context.Context, doctorID uint) ([]models.Anamnesis, error) {
	notes := []models.Anamnesis{}
	if err := s.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("id").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// ListAnamnesisForPatient returns the notes attached to one of the doctor's patients.
func (s *Store) ListAnamnesisForPatient(ctx context.Context, doctorID, patientID uint) ([]models.Anamnesis, error) {
	if err := s.ownsPatient(ctx, doctorID, patientID); err != nil {
		return nil, err
	}
	notes := []models.Anamnesis{}
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Order("id").Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Store) CreateAnamnesis(ctx context.Context, doctorID uint, in AnamnesisInput) (*models.Anamnesis, error) {
	if err := s.validateAnamnesis(ctx, doctorID, in); err != nil {
		return nil, err
	}
	a := &models.Anamnesis{
		DoctorID:    doctorID,
		PatientID:   in.PatientID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := s.create(ctx, a, "anamnesis"); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) GetAnamnesis(ctx context.Context, doctorID, id uint) (*models.Anamnesis, error) {
	var a models.Anamnesis
	if err := s.first(ctx, &a, "anamnesis", "id = ? AND doctor_id = ?", id, doctorID); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceAnamnesis is a full update; a nil PatientID detaches the note.
func (s *Store) ReplaceAnamnesis(ctx context.Context, doctorID, id uint, in AnamnesisInput) (*models.Anamnesis, error) {
	a, err := s.GetAnamnesis(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateAnamnesis(ctx, doctorID, in); err != nil {
		return nil, err
	}
	a.PatientID = in.PatientID
	a.Name = strings.TrimSpace(in.Name)
	a.Description = in.Description
	if err := s.save(ctx, a, "anamnesis"); err != nil {
		return nil, err
	}
	return a, nil
}
