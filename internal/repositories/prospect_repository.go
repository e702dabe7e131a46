package repositories

import (
	"context"

	"prospects/internal/models"
)

// ProspectRepository defines the interface for prospect data access.
type ProspectRepository interface {
	// Create stores the prospect and increments the owner's saved count.
	Create(ctx context.Context, prospect *models.Prospect) error
	// ListByUser returns the user's prospects, oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.Prospect, error)
}
