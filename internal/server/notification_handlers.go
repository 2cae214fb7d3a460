package server

import (
	"soundbite/internal/models"

	"github.com/gofiber/fiber/v2"
)

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// GetNotifications handles GET /api/notifications, newest first.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	notifs, err := s.notificationService.List(c.UserContext(), currentHandle(c), parseLimit(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notifs)
}

// MarkNotificationsRead handles POST /api/notifications/read
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.notificationService.MarkRead(c.UserContext(), currentHandle(c), req.IDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
