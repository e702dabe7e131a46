package handlers

import (
	"strings"

	"prospects/internal/middleware"
	"prospects/internal/models"
	"prospects/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProspectHandler handles HTTP requests for prospects.
type ProspectHandler struct {
	service  *services.ProspectService
	validate *requestValidator
}

// NewProspectHandler creates a new ProspectHandler.
func NewProspectHandler(service *services.ProspectService) *ProspectHandler {
	return &ProspectHandler{
		service:  service,
		validate: newRequestValidator(),
	}
}

// RegisterRoutes registers the prospect routes with the Fiber app.
func (h *ProspectHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Post("/new-prospect", h.HandleCreateProspect)
	router.Get("/prospects", requireAuth, h.HandleListProspects)
}

// CoordinatesRequest is a lat/lng pair in a request body.
type CoordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// ProspectRequest represents the request body for a new prospect.
type ProspectRequest struct {
	UserID        string              `json:"userId" validate:"required"`
	CompanyName   string              `json:"companyName" validate:"required,max=200"`
	Address       string              `json:"address" validate:"required,max=500"`
	Coordinates   *CoordinatesRequest `json:"coordinates"`
	Website       string              `json:"website" validate:"omitempty,url,max=500"`
	JobAppliedFor string              `json:"jobAppliedFor" validate:"required,max=200"`
	ContactPerson string              `json:"contactPerson" validate:"max=200"`
	ContactEmail  string              `json:"contactEmail" validate:"omitempty,email,max=255"`
}

func (r *ProspectRequest) normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.CompanyName = sanitize(r.CompanyName)
	r.Address = sanitize(r.Address)
	r.Website = strings.TrimSpace(r.Website)
	r.JobAppliedFor = sanitize(r.JobAppliedFor)
	r.ContactPerson = sanitize(r.ContactPerson)
	r.ContactEmail = normalizeEmail(r.ContactEmail)
}

var prospectStatus = statusOverrides{
	services.KindNotFound: fiber.StatusForbidden,
	services.KindUpstream: fiber.StatusUnprocessableEntity,
	services.KindUnknown:  fiber.StatusUnprocessableEntity,
}

// HandleCreateProspect records a new prospect for an existing user.
func (h *ProspectHandler) HandleCreateProspect(c *fiber.Ctx) error {
	var req ProspectRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, invalidBody(err), prospectStatus)
	}
	req.normalize()
	if err := h.validate.check(req); err != nil {
		return writeError(c, err, prospectStatus)
	}

	in := services.ProspectInput{
		UserID:        req.UserID,
		CompanyName:   req.CompanyName,
		Address:       req.Address,
		Website:       req.Website,
		JobAppliedFor: req.JobAppliedFor,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
	}
	if req.Coordinates != nil {
		in.Coordinates = models.Coordinates{Lat: req.Coordinates.Lat, Lng: req.Coordinates.Lng}
	}

	prospect, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err, prospectStatus)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Prospect created successfully",
		"id":      prospect.ID,
	})
}

// HandleListProspects returns the authenticated user's prospects.
func (h *ProspectHandler) HandleListProspects(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	prospects, err := h.service.ListForUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(fiber.Map{"prospects": prospects})
}
