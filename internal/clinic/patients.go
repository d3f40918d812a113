// internal/clinic/patients.go
package clinic

import (
	"context"
	"strings"

	"medical-back/internal/models"
)

type PatientInput struct {
	LastName    string       `json:"last_name" validate:"required,max=100"`
	FirstName   string       `json:"first_name" validate:"required,max=100"`
	MiddleName  *string      `json:"middle_name" validate:"omitnil,max=100"`
	PhoneNumber string       `json:"phone_number" validate:"required,max=15"`
	Comment     *string      `json:"comment"`
	IsContact   bool         `json:"is_contact"`
	BirthDate   *models.Date `json:"birth_date"`
}

// PatientUpdate is a partial update; nil fields keep their stored value.
type PatientUpdate struct {
	LastName    *string
	FirstName   *string
	MiddleName  *string
	PhoneNumber *string
	Comment     *string
	IsContact   *bool
	BirthDate   *models.Date
}

// ListPatients returns the doctor's patients, optionally narrowed to those whose
// last name contains search, ignoring case. Postgres matches with ILIKE; other
// drivers fold only ASCII in SQL, so there the match runs in Go.
func (s *Store) ListPatients(ctx context.Context, doctorID uint, search string) ([]models.Patient, error) {
	search = strings.TrimSpace(search)
	inSQL := s.db.Dialector.Name() == "postgres"

	q := s.db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if search != "" && inSQL {
		q = q.Where(`last_name ILIKE ? ESCAPE '\'`, "%"+escapeLike(search)+"%")
	}
	patients := []models.Patient{}
	if err := q.Order("id").Find(&patients).Error; err != nil {
		return nil, err
	}
	if search == "" || inSQL {
		return patients, nil
	}

	needle := strings.ToLower(search)
	matched := patients[:0]
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.LastName), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Store) CreatePatient(ctx context.Context, doctorID uint, in PatientInput) (*models.Patient, error) {
	p := &models.Patient{
		DoctorID:    doctorID,
		LastName:    strings.TrimSpace(in.LastName),
		FirstName:   strings.TrimSpace(in.FirstName),
		MiddleName:  in.MiddleName,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Comment:     in.Comment,
		IsContact:   in.IsContact,
		BirthDate:   in.BirthDate,
	}
	if err := validatePatient(p); err != nil {
		return nil, err
	}
	if err := s.create(ctx, p, "patient"); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetPatient(ctx context.Context, doctorID, id uint) (*models.Patient, error) {
	var p models.Patient
	if err := s.first(ctx, &p, "patient", "id = ? AND doctor_id = ?", id, doctorID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdatePatient(ctx context.Context, doctorID, id uint, upd PatientUpdate) (*models.Patient, error) {
	p, err := s.GetPatient(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	if upd.LastName != nil {
		p.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.FirstName != nil {
		p.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.MiddleName != nil {
		p.MiddleName = upd.MiddleName
	}
	if upd.PhoneNumber != nil {
		p.PhoneNumber = strings.TrimSpace(*upd.PhoneNumber)
	}
	if upd.Comment != nil {
		p.Comment = upd.Comment
	}
	if upd.IsContact != nil {
		p.IsContact = *upd.IsContact
	}
	if upd.BirthDate != nil {
		p.BirthDate = upd.BirthDate
	}
	if err := validatePatient(p); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p, "patient"); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePatient(p *models.Patient) error {
	return check(PatientInput{
		LastName:    p.LastName,
		FirstName:   p.FirstName,
		MiddleName:  p.MiddleName,
		PhoneNumber: p.PhoneNumber,
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
