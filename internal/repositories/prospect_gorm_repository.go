package repositories

import (
	"context"
	"fmt"

	"prospects/internal/models"

	"gorm.io/gorm"
)

// GORMProspectRepository is a GORM implementation of ProspectRepository.
type GORMProspectRepository struct {
	db *gorm.DB
}

// NewGORMProspectRepository creates a new instance of GORMProspectRepository.
func NewGORMProspectRepository(db *gorm.DB) *GORMProspectRepository {
	return &GORMProspectRepository{
		db: db,
	}
}

// Create inserts the prospect and bumps the owner's profile counter in one
// transaction.
func (r *GORMProspectRepository) Create(ctx context.Context, prospect *models.Prospect) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prospect).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Profile{}).
			Where("user_id = ?", prospect.UserID).
			UpdateColumn("saved_count", gorm.Expr("saved_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("profile for user %s: %w", prospect.UserID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}
	return nil
}

// ListByUser retrieves all prospects owned by userID.
func (r *GORMProspectRepository) ListByUser(ctx context.Context, userID string) ([]models.Prospect, error) {
	var prospects []models.Prospect
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&prospects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prospects for user %s: %w", userID, err)
	}
	return prospects, nil
}
