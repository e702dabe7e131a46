package handlers

import (
	"strings"

	"prospects/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GeocodeHandler handles address lookups.
type GeocodeHandler struct {
	service  *services.GeocodeService
	validate *requestValidator
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(service *services.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{
		service:  service,
		validate: newRequestValidator(),
	}
}

// RegisterRoutes registers the coordinates routes with the Fiber app.
func (h *GeocodeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/coordinates", h.HandleCoordinates)
	router.Post("/coordinates", h.HandleCoordinates)
}

// CoordinatesLookupRequest carries the address to resolve, from the query
// string or a JSON body.
type CoordinatesLookupRequest struct {
	Address string `json:"address" query:"address" validate:"required,max=500"`
}

var geocodeStatus = statusOverrides{
	services.KindUpstream: fiber.StatusUnprocessableEntity,
	services.KindUnknown:  fiber.StatusUnprocessableEntity,
}

// HandleCoordinates resolves an address to its formatted form and location.
func (h *GeocodeHandler) HandleCoordinates(c *fiber.Ctx) error {
	var req CoordinatesLookupRequest
	if err := c.QueryParser(&req); err != nil {
		return writeError(c, invalidBody(err), geocodeStatus)
	}
	if req.Address == "" && c.Method() == fiber.MethodPost {
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, invalidBody(err), geocodeStatus)
		}
	}
	req.Address = strings.TrimSpace(req.Address)
	if err := h.validate.check(req); err != nil {
		return writeError(c, err, geocodeStatus)
	}

	result, err := h.service.Lookup(c.UserContext(), req.Address)
	if err != nil {
		return writeError(c, err, geocodeStatus)
	}
	return c.JSON(fiber.Map{"results": result})
}
