package server

import (
	"soundbite/internal/models"
	"soundbite/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Body string `json:"body"`
}

// CreateComment handles POST /api/snippets/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		SnippetID:      c.Params("id"),
		Body:           req.Body,
		AuthorHandle:   currentHandle(c),
		AuthorImageURL: currentImageURL(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
