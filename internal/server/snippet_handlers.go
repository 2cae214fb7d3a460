package server

import (
	"soundbite/internal/models"
	"soundbite/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createSnippetRequest struct {
	Body     string `json:"body"`
	AudioURL string `json:"audio_url"`
	Genre    string `json:"genre"`
}

// CreateSnippet handles POST /api/snippets
func (s *Server) CreateSnippet(c *fiber.Ctx) error {
	var req createSnippetRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	snippet, err := s.snippetService.CreateSnippet(c.UserContext(), service.CreateSnippetInput{
		OwnerHandle:   currentHandle(c),
		OwnerImageURL: currentImageURL(c),
		Body:          req.Body,
		AudioURL:      req.AudioURL,
		Genre:         req.Genre,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snippet)
}

// GetFeed handles GET /api/snippets with optional genre filter and
// created_at cursor pagination.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	after, err := parseAfter(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	snippets, err := s.snippetService.Feed(c.UserContext(), service.FeedInput{
		Genre: c.Query("genre"),
		Limit: parseLimit(c),
		After: after,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippets)
}

// GetSnippet handles GET /api/snippets/:id, returning the snippet with its
// comments attached.
func (s *Server) GetSnippet(c *fiber.Ctx) error {
	snippet, err := s.snippetService.GetSnippet(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippet)
}

// DeleteSnippet handles DELETE /api/snippets/:id
func (s *Server) DeleteSnippet(c *fiber.Ctx) error {
	if err := s.snippetService.DeleteSnippet(c.UserContext(), c.Params("id"), currentHandle(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Snippet deleted"})
}

// GetUserSnippets handles GET /api/users/:handle/snippets
func (s *Server) GetUserSnippets(c *fiber.Ctx) error {
	after, err := parseAfter(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	snippets, err := s.snippetService.ListByOwner(c.UserContext(), c.Params("handle"), parseLimit(c), after)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippets)
}
