package handlers

import (
	"toko/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error to its HTTP status. Internal causes are
// logged but never echoed to the client.
func respondError(c *fiber.Ctx, log logrus.FieldLogger, message string, err error) error {
	status := apperrors.HTTPStatus(err)
	entry := log.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   apperrors.PublicMessage(err),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
