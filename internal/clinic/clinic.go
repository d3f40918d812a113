// internal/clinic/clinic.go

// Package clinic is the clinical data store. Every query takes the acting
// doctor's id and includes it in the WHERE clause, so a record owned by
// another doctor is reported exactly like a missing one.
package clinic

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medical-back/internal/validation"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// check runs the struct's validate tags.
func check(v any) error {
	if err := validation.Struct(v); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// first loads one row matching the owner-scoped predicate.
func (s *Store) first(ctx context.Context, dest any, what string, query string, args ...any) error {
	err := s.db.WithContext(ctx).Where(query, args...).First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s %w", what, ErrNotFound)
		}
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

func (s *Store) create(ctx context.Context, value any, what string) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error; err != nil {
		return fmt.Errorf("create %s: %w", what, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, value any, what string) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(value).Error; err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	return nil
}

// ownsPatient fails with ErrNotFound when patientID is not one of doctorID's patients.
func (s *Store) ownsPatient(ctx context.Context, doctorID, patientID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Table("patients").
		Where("id = ? AND doctor_id = ?", patientID, doctorID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("patient %w", ErrNotFound)
	}
	return nil
}
