// internal/clinic/medications.go
package clinic

import (
	"context"
	"strings"

	"medical-back/internal/models"
)

type MedicationInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Quantity *int   `json:"quantity" validate:"omitnil,gte=0"`
}

func (in MedicationInput) validate() (string, *uint, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return "", nil, err
	}
	if in.Quantity == nil {
		return in.Name, nil, nil
	}
	q := uint(*in.Quantity)
	return in.Name, &q, nil
}

func (s *Store) ListMedications(ctx context.Context, doctorID uint) ([]models.Medication, error) {
	meds := []models.Medication{}
	if err := s.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("id").Find(&meds).Error; err != nil {
		return nil, err
	}
	return meds, nil
}

func (s *Store) CreateMedication(ctx context.Context, doctorID uint, in MedicationInput) (*models.Medication, error) {
	name, qty, err := in.validate()
	if err != nil {
		return nil, err
	}
	m := &models.Medication{DoctorID: doctorID, Name: name, Quantity: qty}
	if err := s.create(ctx, m, "medication"); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) GetMedication(ctx context.Context, doctorID, id uint) (*models.Medication, error) {
	var m models.Medication
	if err := s.first(ctx, &m, "medication", "id = ? AND doctor_id = ?", id, doctorID); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReplaceMedication is a full update: an omitted quantity is cleared.
func (s *Store) ReplaceMedication(ctx context.Context, doctorID, id uint, in MedicationInput) (*models.Medication, error) {
	name, qty, err := in.validate()
	if err != nil {
		return nil, err
	}
	m, err := s.GetMedication(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	m.Name = name
	m.Quantity = qty
	if err := s.save(ctx, m, "medication"); err != nil {
		return nil, err
	}
	return m, nil
}
