package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the booking and payment core. Wrap them with
// fmt.Errorf("...: %w", Err...) so callers can match with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrGateway         = errors.New("payment gateway error")
	ErrInternal        = errors.New("internal error")
)

// HTTPStatus maps a domain error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrGateway):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
