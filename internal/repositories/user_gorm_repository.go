package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prospects/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// FindByField retrieves the oldest user whose field matches value.
func (r *GORMUserRepository) FindByField(ctx context.Context, field Field, value string) (*models.User, error) {
	if !field.valid() {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	var user models.User
	err := r.db.WithContext(ctx).
		Where(string(field)+" = ?", value).
		Order("created_at").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s %s: %w", field, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", field, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetProfile retrieves the profile created with the user's account.
func (r *GORMUserRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// UsernameExists checks the username reservation table.
func (r *GORMUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UsernameReservation{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username %s: %w", username, err)
	}
	return count > 0, nil
}

// CreateAccount inserts the account batch in a single transaction. Unique
// index violations on id, email or username surface as ErrDuplicate.
func (r *GORMUserRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account.User).Error; err != nil {
			return err
		}
		if err := tx.Create(&account.Profile).Error; err != nil {
			return err
		}
		return tx.Create(&account.Reservation).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create account %s: %w", account.User.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create account %s: %w", account.User.ID, err)
	}
	return nil
}

// isUniqueViolation recognizes translated errors (gorm.Config.TranslateError)
// as well as raw driver messages from dialects that do not translate.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
