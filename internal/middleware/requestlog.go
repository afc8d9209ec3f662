package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDLocal  = "request_id"
)

// RequestLogger assigns every request an id, echoing an upstream X-Request-ID
// when present, and logs the completed request
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Locals(requestIDLocal, id)

		chainErr := c.Next()
		if chainErr != nil {
			// render the error now so the logged status is the one sent
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("Request")
		return nil
	}
}

// RequestIDFrom returns the id assigned by RequestLogger
func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocal).(string)
	return id
}
