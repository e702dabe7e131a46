// Package geocoding is a client for the Google Geocoding JSON API.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"prospects/internal/models"

	"github.com/gofiber/fiber/v2"
)

const geocodePath = "/maps/api/geocode/json"

// ErrNoResults is returned when the API matches no location.
var ErrNoResults = errors.New("geocoding: no results")

// Config holds geocoding API details.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client resolves addresses through the geocoding API.
type Client struct {
	cfg Config
}

// NewClient creates a new geocoding Client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{cfg: cfg}
}

type apiResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Geocode returns the best match for address.
func (c *Client) Geocode(ctx context.Context, address string) (*models.GeocodeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("address", address)
	if c.cfg.APIKey != "" {
		query.Set("key", c.cfg.APIKey)
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	var resp apiResponse
	agent := fiber.Get(c.cfg.BaseURL + geocodePath + "?" + query.Encode()).Timeout(timeout)
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return nil, fmt.Errorf("geocoding request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("geocoding request failed with status %d", code)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocoding failed: %s %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}

	first := resp.Results[0]
	return &models.GeocodeResult{
		FormattedAddress: first.FormattedAddress,
		Coordinates: models.Coordinates{
			Lat: first.Geometry.Location.Lat,
			Lng: first.Geometry.Location.Lng,
		},
	}, nil
}
