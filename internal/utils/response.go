package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/mapsdb/internal/types"
)

// ErrorResponse sends the standard error envelope for an AppError
func ErrorResponse(c *fiber.Ctx, err *types.AppError) error {
	status := err.Status()
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   err.Message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      string(err.Kind),
		Fields:    err.Fields,
	})
}

// StatusErrorResponse sends the error envelope for a status with no AppError kind
func StatusErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      "http",
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, types.NotFound("%s", message))
}

// MutationSuccessResponse sends a success response for bulk mutations
func MutationSuccessResponse(c *fiber.Ctx, affectedRows int64) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:      "Success",
		Ok:           true,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		AffectedRows: affectedRows,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Ok        bool              `json:"ok"`
	Timestamp string            `json:"timestamp"`
	URL       string            `json:"url"`
	Type      string            `json:"type,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	AffectedRows int64  `json:"affectedRows"`
}
