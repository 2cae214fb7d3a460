package server

import (
	"time"

	"soundbite/internal/models"
	"soundbite/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	ImageURL *string `json:"image_url"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
}

// GetUserProfile handles GET /api/users/:handle, the public profile together
// with the user's latest snippets.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	handle := c.Params("handle")

	user, err := s.userService.GetProfile(c.UserContext(), handle)
	if err != nil {
		return respondServiceError(c, err)
	}

	snippets, err := s.snippetService.ListByOwner(c.UserContext(), handle, parseLimit(c), time.Time{})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"snippets": snippets,
	})
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentHandle(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Changing the image URL triggers
// propagation to the denormalized owner image on the user's snippets.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		Handle:   currentHandle(c),
		ImageURL: req.ImageURL,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
