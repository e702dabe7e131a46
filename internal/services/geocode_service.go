package services

import (
	"context"

	"prospects/internal/models"
)

// Geocoder resolves a free-text address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.GeocodeResult, error)
}

// GeocodeService handles address lookups.
type GeocodeService struct {
	geocoder Geocoder
}

// NewGeocodeService creates a new GeocodeService.
func NewGeocodeService(geocoder Geocoder) *GeocodeService {
	return &GeocodeService{
		geocoder: geocoder,
	}
}

// Lookup resolves address to its formatted form and coordinates.
func (s *GeocodeService) Lookup(ctx context.Context, address string) (*models.GeocodeResult, error) {
	result, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, newError(KindUpstream, "Could not resolve address", err)
	}
	return result, nil
}
