package services

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"sync"
	"time"

	"prospects/internal/models"
	"prospects/internal/repositories"

	"github.com/oklog/ulid/v2"
)

// ProspectInput is a validated, normalized new-prospect request.
type ProspectInput struct {
	UserID        string
	CompanyName   string
	Address       string
	Coordinates   models.Coordinates
	Website       string
	JobAppliedFor string
	ContactPerson string
	ContactEmail  string
}

// ProspectService handles business logic related to prospects.
type ProspectService struct {
	prospectRepo repositories.ProspectRepository
	userRepo     repositories.UserRepository
	publisher    EventPublisher
	ids          *idGenerator
}

// NewProspectService creates a new ProspectService. publisher may be nil.
func NewProspectService(prospectRepo repositories.ProspectRepository, userRepo repositories.UserRepository, publisher EventPublisher) *ProspectService {
	return &ProspectService{
		prospectRepo: prospectRepo,
		userRepo:     userRepo,
		publisher:    publisher,
		ids:          newIDGenerator(),
	}
}

// Create records a prospect for an existing user.
func (s *ProspectService) Create(ctx context.Context, in ProspectInput) (*models.Prospect, error) {
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindNotFound, "User does not exist", err)
		}
		return nil, newError(KindUpstream, "Could not create prospect", err)
	}

	now := time.Now().UTC()
	prospect := &models.Prospect{
		ID:            s.ids.newAt(now),
		UserID:        in.UserID,
		CompanyName:   in.CompanyName,
		Address:       in.Address,
		Coordinates:   in.Coordinates,
		Website:       in.Website,
		JobAppliedFor: in.JobAppliedFor,
		ContactPerson: in.ContactPerson,
		ContactEmail:  in.ContactEmail,
		CreatedAt:     now,
	}
	if err := s.prospectRepo.Create(ctx, prospect); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindNotFound, "User does not exist", err)
		}
		return nil, newError(KindUpstream, "Could not create prospect", err)
	}

	publishEvent(s.publisher, EventProspectCreated, map[string]interface{}{
		"prospectId":  prospect.ID,
		"userId":      prospect.UserID,
		"companyName": prospect.CompanyName,
	})
	log.Printf("Created prospect %s for user %s", prospect.ID, prospect.UserID)

	return prospect, nil
}

// ListForUser returns the prospects saved by userID.
func (s *ProspectService) ListForUser(ctx context.Context, userID string) ([]models.Prospect, error) {
	prospects, err := s.prospectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, newError(KindUpstream, "Could not retrieve prospects", err)
	}
	return prospects, nil
}

// idGenerator hands out monotonic ULIDs, safe for concurrent use.
type idGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDGenerator() *idGenerator {
	return &idGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *idGenerator) newAt(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}
