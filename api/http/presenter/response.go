package presenter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finance/pkg/apperr"
)

// LocalError is where FromError leaves the original error for the request logger.
const LocalError = "error"

type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// FromError writes err with the status of its kind. Storage and unclassified errors are
// reported as a generic 500 without their cause.
func FromError(c *fiber.Ctx, err error) error {
	c.Locals(LocalError, err)

	var ve apperr.ValidationError
	if errors.As(err, &ve) {
		resp := ErrorResponse{Message: "invalid request"}
		if ve.Field != "" {
			resp.Errors = map[string][]string{ve.Field: {ve.Message}}
		} else {
			resp.Message = ve.Message
		}
		return JSON(c, http.StatusBadRequest, resp)
	}

	status := StatusOf(err)
	switch status {
	case http.StatusInternalServerError:
		return Error(c, status, "internal server error")
	default:
		return Error(c, status, publicMessage(err))
	}
}

// publicMessage drops the trailing kind name that domain errors carry.
func publicMessage(err error) string {
	msg := err.Error()
	for _, kind := range []error{apperr.ErrConflict, apperr.ErrUnauthenticated, apperr.ErrNotFound, apperr.ErrInvalidInput} {
		msg = strings.TrimSuffix(msg, ": "+kind.Error())
	}
	return msg
}

// StatusOf maps an error kind to an HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
