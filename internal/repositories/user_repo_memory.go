package repositories

import (
	"context"
	"fmt"
	"sync"

	"prospects/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// Uniqueness checks and inserts happen under one lock, so concurrent signups
// cannot both claim the same email or username.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[string]models.User
	byEmail    map[string]string
	byUsername map[string]string
	profiles   map[string]models.Profile
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:      make(map[string]models.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		profiles:   make(map[string]models.Profile),
	}
}

// FindByField returns the user indexed under field.
func (r *MemoryUserRepository) FindByField(_ context.Context, field Field, value string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var index map[string]string
	switch field {
	case FieldEmail:
		index = r.byEmail
	case FieldUsername:
		index = r.byUsername
	default:
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}

	id, ok := index[value]
	if !ok {
		return nil, fmt.Errorf("user with %s %s: %w", field, value, ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

// GetByID returns a user by its ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetProfile returns the profile stored for userID.
func (r *MemoryUserRepository) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
	}
	return &profile, nil
}

// UsernameExists reports whether username is reserved.
func (r *MemoryUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[username]
	return ok, nil
}

// CreateAccount stores the account batch if none of its keys are taken.
func (r *MemoryUserRepository) CreateAccount(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := account.User
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrDuplicate)
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
	}
	if _, ok := r.byUsername[account.Reservation.Username]; ok {
		return fmt.Errorf("user with username %s: %w", account.Reservation.Username, ErrDuplicate)
	}

	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	r.byUsername[account.Reservation.Username] = user.ID
	r.profiles[user.ID] = account.Profile
	return nil
}

// incrementSavedCount bumps the profile counter for userID.
func (r *MemoryUserRepository) incrementSavedCount(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
	}
	profile.SavedCount++
	r.profiles[userID] = profile
	return nil
}
