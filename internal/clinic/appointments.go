// internal/clinic/appointments.go
package clinic

import (
	"context"
	"strings"

	"medical-back/internal/models"
)

type AppointmentInput struct {
	PatientID uint             `json:"patient" validate:"required"`
	Name      string           `json:"name" validate:"required,max=100"`
	Date      models.Date      `json:"date" validate:"required"`
	TimeFrom  models.TimeOfDay `json:"time_from" validate:"required"`
	TimeTo    models.TimeOfDay `json:"time_to" validate:"required"`
	Comment   *string          `json:"comment"`
}

func (in AppointmentInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return err
	}
	if in.TimeTo.Before(in.TimeFrom) {
		return invalid("time_to must not be earlier than time_from")
	}
	return nil
}

// ListUpcomingAppointments returns the doctor's appointments dated today or
// later, ordered by date and start time.
func (s *Store) ListUpcomingAppointments(ctx context.Context, doctorID uint, today models.Date) ([]models.Appointment, error) {
	appts := []models.Appointment{}
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND date >= ?", doctorID, today).
		Order("date").Order("time_from").Order("id").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *Store) CreateAppointment(ctx context.Context, doctorID uint, in AppointmentInput) (*models.Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.ownsPatient(ctx, doctorID, in.PatientID); err != nil {
		return nil, err
	}
	a := &models.Appointment{
		DoctorID:  doctorID,
		PatientID: in.PatientID,
		Name:      strings.TrimSpace(in.Name),
		Date:      in.Date,
		TimeFrom:  in.TimeFrom,
		TimeTo:    in.TimeTo,
		Comment:   in.Comment,
	}
	if err := s.create(ctx, a, "appointment"); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) GetAppointment(ctx context.Context, doctorID, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.first(ctx, &a, "appointment", "id = ? AND doctor_id = ?", id, doctorID); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceAppointment overwrites every editable field.
func (s *Store) ReplaceAppointment(ctx context.Context, doctorID, id uint, in AppointmentInput) (*models.Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a, err := s.GetAppointment(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	if in.PatientID != a.PatientID {
		if err := s.ownsPatient(ctx, doctorID, in.PatientID); err != nil {
			return nil, err
		}
	}
	a.PatientID = in.PatientID
	a.Name = strings.TrimSpace(in.Name)
	a.Date = in.Date
	a.TimeFrom = in.TimeFrom
	a.TimeTo = in.TimeTo
	a.Comment = in.Comment
	if err := s.save(ctx, a, "appointment"); err != nil {
		return nil, err
	}
	return a, nil
}
