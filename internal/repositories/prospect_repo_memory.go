package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"prospects/internal/models"
)

// MemoryProspectRepository is an in-memory implementation of ProspectRepository.
type MemoryProspectRepository struct {
	prospects map[string]models.Prospect
	users     *MemoryUserRepository
	mu        sync.RWMutex
}

// NewMemoryProspectRepository creates a new instance of MemoryProspectRepository.
// Saved counts are kept on users' profiles when users is non-nil.
func NewMemoryProspectRepository(users *MemoryUserRepository) *MemoryProspectRepository {
	return &MemoryProspectRepository{
		prospects: make(map[string]models.Prospect),
		users:     users,
	}
}

// Create adds a new prospect.
func (r *MemoryProspectRepository) Create(_ context.Context, prospect *models.Prospect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prospects[prospect.ID]; ok {
		return fmt.Errorf("prospect with ID %s: %w", prospect.ID, ErrDuplicate)
	}
	if r.users != nil {
		if err := r.users.incrementSavedCount(prospect.UserID); err != nil {
			return fmt.Errorf("failed to create prospect: %w", err)
		}
	}
	if prospect.CreatedAt.IsZero() {
		prospect.CreatedAt = time.Now()
	}
	r.prospects[prospect.ID] = *prospect
	return nil
}

// ListByUser returns the user's prospects ordered by ID.
func (r *MemoryProspectRepository) ListByUser(_ context.Context, userID string) ([]models.Prospect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prospects := make([]models.Prospect, 0)
	for _, p := range r.prospects {
		if p.UserID == userID {
			prospects = append(prospects, p)
		}
	}
	sort.Slice(prospects, func(i, j int) bool { return prospects[i].ID < prospects[j].ID })
	return prospects, nil
}
