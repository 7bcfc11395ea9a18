package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/finance/api/http/presenter"
	"github.com/artem13815/finance/pkg/logging"
)

const headerRequestID = "X-Request-ID"

// RequestLogger assigns a request id and logs one line per request. Server errors carry
// the error the handler reported.
func RequestLogger(log *logging.Logger) fiber.Handler {
	log = log.WithComponent(logging.ComponentHTTP)
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)

		chainErr := c.Next()
		if chainErr != nil {
			// Let fiber's error handler set the status before we read it.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		args := []any{
			logging.FieldRequestID, id,
			logging.FieldMethod, c.Method(),
			logging.FieldPath, c.Path(),
			logging.FieldStatusCode, status,
			logging.FieldDuration, time.Since(start).Milliseconds(),
			logging.FieldClientIP, c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			if err, ok := c.Locals(presenter.LocalError).(error); ok {
				args = append(args, logging.FieldError, err)
			} else if chainErr != nil {
				args = append(args, logging.FieldError, chainErr)
			}
			log.ErrorContext(c.UserContext(), "request failed", args...)
		case status >= fiber.StatusBadRequest:
			log.WarnContext(c.UserContext(), "request rejected", args...)
		default:
			log.InfoContext(c.UserContext(), "request handled", args...)
		}
		return nil
	}
}
