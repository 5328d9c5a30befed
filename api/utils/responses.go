package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spicelanes/game-server/api/models"
	"github.com/spicelanes/game-server/spicelanes/game"
)

func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusCreated, models.NewSuccessResponse(data, message))
}

func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message, details))
}

func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// SendGameError maps an engine rejection onto the HTTP taxonomy: malformed
// input 400, state-forbidden 409, missing entity 404, everything else 500.
func SendGameError(c *fiber.Ctx, err error) error {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		return SendInternalServerError(c, "unexpected error")
	}

	status := http.StatusInternalServerError
	switch gameErr.Kind {
	case game.KindValidation:
		status = http.StatusBadRequest
	case game.KindPrecondition:
		status = http.StatusConflict
	case game.KindNotFound:
		status = http.StatusNotFound
	}
	return SendError(c, status, gameErr.Code, gameErr.Message, nil)
}

// GetIPAddress resolves the client IP, preferring proxy headers.
func GetIPAddress(c *fiber.Ctx) string {
	if ip := c.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.IP()
}
