package handlers

import (
	"log"

	"prospects/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusOverrides lets a route remap the default status of an error kind.
type statusOverrides map[services.Kind]int

var defaultStatus = map[services.Kind]int{
	services.KindValidation:         fiber.StatusUnprocessableEntity,
	services.KindDuplicateAccount:   fiber.StatusUnprocessableEntity,
	services.KindInvalidCredentials: fiber.StatusUnauthorized,
	services.KindNotFound:           fiber.StatusNotFound,
	services.KindUpstream:           fiber.StatusBadGateway,
	services.KindRateLimited:        fiber.StatusTooManyRequests,
	services.KindUnknown:            fiber.StatusInternalServerError,
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    int           `json:"code"`
	Kind    services.Kind `json:"kind"`
	Message string        `json:"message"`
	Fields  []string      `json:"fields,omitempty"`
}

// writeError maps err to a status and writes the error payload. Internal
// causes are logged and never sent to the client.
func writeError(c *fiber.Ctx, err error, overrides statusOverrides) error {
	se := services.AsError(err)

	status, ok := overrides[se.Kind]
	if !ok {
		status, ok = defaultStatus[se.Kind]
	}
	if !ok {
		status = fiber.StatusInternalServerError
	}

	if se.Err != nil {
		log.Printf("%s %s failed (%s): %v", c.Method(), c.Path(), se.Kind, se.Err)
	}

	return c.Status(status).JSON(ErrorResponse{
		Code:    status,
		Kind:    se.Kind,
		Message: se.Message,
		Fields:  se.Fields,
	})
}
