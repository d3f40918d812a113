// internal/clinic/images.go
package clinic

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medical-back/internal/models"
)

func (s *Store) ListProcedureImages(ctx context.Context, doctorID, procedureID uint) ([]models.ProcedureImage, error) {
	if _, err := s.GetProcedure(ctx, doctorID, procedureID); err != nil {
		return nil, err
	}
	images := []models.ProcedureImage{}
	if err := s.db.WithContext(ctx).Where("procedure_id = ?", procedureID).Order("id").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// AddProcedureImages records already stored objects against a procedure in a
// single transaction.
func (s *Store) AddProcedureImages(ctx context.Context, doctorID, procedureID uint, keys []string) ([]models.ProcedureImage, error) {
	if len(keys) == 0 {
		return nil, invalid("no images to upload")
	}
	if _, err := s.GetProcedure(ctx, doctorID, procedureID); err != nil {
		return nil, err
	}
	images := make([]models.ProcedureImage, len(keys))
	for i, key := range keys {
		images[i] = models.ProcedureImage{ProcedureID: procedureID, Thumbnail: key}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&images).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create procedure images: %w", err)
	}
	return images, nil
}

// GetProcedureImage finds an image of one of the doctor's procedures.
func (s *Store) GetProcedureImage(ctx context.Context, doctorID, procedureID, imageID uint) (*models.ProcedureImage, error) {
	var img models.ProcedureImage
	err := s.db.WithContext(ctx).
		Joins("JOIN procedures ON procedures.id = procedure_images.procedure_id").
		Where("procedure_images.id = ? AND procedure_images.procedure_id = ? AND procedures.doctor_id = ?",
			imageID, procedureID, doctorID).
		First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("image %w", ErrNotFound)
		}
		return nil, fmt.Errorf("load image: %w", err)
	}
	return &img, nil
}

// DeleteProcedureImage removes the row. The caller removes the stored object
// first.
func (s *Store) DeleteProcedureImage(ctx context.Context, img *models.ProcedureImage) error {
	if err := s.db.WithContext(ctx).Delete(&models.ProcedureImage{}, img.ID).Error; err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
