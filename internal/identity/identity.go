// internal/identity/identity.go

// Package identity owns accounts and doctor profiles: registration, login,
// password reset and profile edits.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medical-back/internal/auth"
	"medical-back/internal/models"
	"medical-back/internal/validation"
)

const MinPasswordLength = 6

var (
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrNoDoctorProfile    = errors.New("doctor profile not found")
	ErrInvalidInput       = errors.New("invalid input")
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type RegisterInput struct {
	Email       string       `json:"email" validate:"required,email,max=254"`
	Password    string       `json:"password"`
	FirstName   string       `json:"first_name" validate:"required,max=100"`
	LastName    string       `json:"last_name" validate:"required,max=100"`
	BirthDate   *models.Date `json:"birth_date"`
	PhoneNumber string       `json:"phone_number" validate:"required,max=15"`
}

// Register creates the account and its doctor profile in one transaction.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*models.Doctor, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	in.Email = email
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doctor := &models.Doctor{
		BirthDate:   in.BirthDate,
		PhoneNumber: in.PhoneNumber,
		Account: models.Account{
			Email:     email,
			Password:  hash,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			IsActive:  true,
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(&doctor.Account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return err
		}
		doctor.AccountID = doctor.Account.ID
		return tx.Omit(clause.Associations).Create(doctor).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return doctor, nil
}

// Authenticate returns the active account matching email and password.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive || !auth.CheckPassword(password, account.Password) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// ResetPassword overwrites the stored hash for email.
func (s *Store) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	account, err := s.accountByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(account).Update("password", hash).Error; err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// DoctorForAccount resolves the doctor profile linked to an authenticated account.
func (s *Store) DoctorForAccount(ctx context.Context, accountID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := s.db.WithContext(ctx).Preload("Account").Where("account_id = ?", accountID).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDoctorProfile
		}
		return nil, fmt.Errorf("load doctor profile: %w", err)
	}
	return &doctor, nil
}

// ProfileUpdate carries the fields a doctor may change on their profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName   *string      `json:"first_name" validate:"omitnil,min=1,max=100"`
	LastName    *string      `json:"last_name" validate:"omitnil,min=1,max=100"`
	BirthDate   *models.Date `json:"birth_date"`
	PhoneNumber *string      `json:"phone_number" validate:"omitnil,min=1,max=15"`
}

func (s *Store) UpdateProfile(ctx context.Context, doctor *models.Doctor, upd ProfileUpdate) (*models.Doctor, error) {
	upd.FirstName = trimmed(upd.FirstName)
	upd.LastName = trimmed(upd.LastName)
	upd.PhoneNumber = trimmed(upd.PhoneNumber)
	if err := validation.Struct(upd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	accountFields := map[string]any{}
	if upd.FirstName != nil {
		accountFields["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		accountFields["last_name"] = *upd.LastName
	}
	doctorFields := map[string]any{}
	if upd.BirthDate != nil {
		doctorFields["birth_date"] = *upd.BirthDate
	}
	if upd.PhoneNumber != nil {
		doctorFields["phone_number"] = *upd.PhoneNumber
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(accountFields) > 0 {
			if err := tx.Model(&models.Account{}).Where("id = ?", doctor.AccountID).Updates(accountFields).Error; err != nil {
				return err
			}
		}
		if len(doctorFields) > 0 {
			if err := tx.Model(&models.Doctor{}).Where("id = ?", doctor.ID).Updates(doctorFields).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.DoctorForAccount(ctx, doctor.AccountID)
}

func (s *Store) accountByEmail(ctx context.Context, email string) (*models.Account, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	var account models.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &account, nil
}

// NormalizeEmail validates the address and lower-cases its domain part.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.Var("email", email, "required,email,max=254"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	at := strings.LastIndex(email, "@")
	return email[:at] + strings.ToLower(email[at:]), nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
