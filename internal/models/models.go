// internal/models/models.go
package models

import (
	"time"
)

type Account struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	Email       string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FirstName   string    `gorm:"size:100;not null" json:"first_name"`
	LastName    string    `gorm:"size:100;not null" json:"last_name"`
	IsActive    bool      `gorm:"not null;default:true" json:"-"`
	IsStaff     bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Doctor struct {
	ID          uint   `gorm:"primarykey" json:"-"`
	AccountID   uint   `gorm:"uniqueIndex;not null" json:"-"`
	BirthDate   *Date  `gorm:"type:date" json:"birth_date"`
	PhoneNumber string `gorm:"size:15;not null" json:"phone_number"`

	Account Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"user"`
}

type Patient struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	DoctorID    uint    `gorm:"index;not null" json:"-"`
	LastName    string  `gorm:"size:100;not null" json:"last_name"`
	FirstName   string  `gorm:"size:100;not null" json:"first_name"`
	MiddleName  *string `gorm:"size:100" json:"middle_name"`
	PhoneNumber string  `gorm:"size:15;not null" json:"phone_number"`
	Comment     *string `json:"comment"`
	IsContact   bool    `gorm:"not null;default:false" json:"is_contact"`
	BirthDate   *Date   `gorm:"type:date" json:"birth_date"`

	Doctor Doctor `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
}

type Medication struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	DoctorID uint   `gorm:"index;not null" json:"-"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Quantity *uint  `json:"quantity"`

	Doctor Doctor `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
}

type Procedure struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	DoctorID  uint      `gorm:"index;not null" json:"doctor"`
	PatientID uint      `gorm:"index;not null" json:"patient"`
	Date      Date      `gorm:"type:date;not null" json:"date"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Details   *string   `json:"details"`
	Image     *string   `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// ImageURL is filled by the handler from Image before rendering.
	ImageURL *string `gorm:"-" json:"image"`

	Doctor  Doctor  `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

// Appointment rows are listed by date, then by TimeFrom.
type Appointment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	DoctorID  uint      `gorm:"index;not null" json:"-"`
	PatientID uint      `gorm:"index;not null" json:"patient"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Date      Date      `gorm:"type:date;index;not null" json:"date"`
	TimeFrom  TimeOfDay `gorm:"size:8;not null" json:"time_from"`
	TimeTo    TimeOfDay `gorm:"size:8;not null" json:"time_to"`
	Comment   *string   `json:"comment"`

	Doctor  Doctor  `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

// Anamnesis is a free-text history note. PatientID is nil for notes that
// belong to the doctor only.
type Anamnesis struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	DoctorID    uint   `gorm:"index;not null" json:"-"`
	PatientID   *uint  `gorm:"index" json:"patient"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"not null" json:"description"`

	Doctor  Doctor   `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	Patient *Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Anamnesis) TableName() string { return "anamnesis" }

type ProcedureImage struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	ProcedureID uint   `gorm:"index;not null" json:"-"`
	Thumbnail   string `gorm:"size:255;not null" json:"-"`

	Procedure Procedure `gorm:"foreignKey:ProcedureID;constraint:OnDelete:CASCADE" json:"-"`
}

// VerificationChallenge holds the latest emailed code for an address.
type VerificationChallenge struct {
	Email      string     `gorm:"primaryKey;size:254"`
	Code       string     `gorm:"size:6;not null"`
	IssuedAt   time.Time  `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"index;not null"`
	VerifiedAt *time.Time
}

// All returns every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Account{},
		&Doctor{},
		&Patient{},
		&Medication{},
		&Procedure{},
		&ProcedureImage{},
		&Appointment{},
		&Anamnesis{},
		&VerificationChallenge{},
	}
}
