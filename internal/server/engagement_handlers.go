package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikeSnippet handles POST /api/snippets/:id/like. A duplicate like returns
// 400 without writing anything.
func (s *Server) LikeSnippet(c *fiber.Ctx) error {
	snippet, err := s.engagementService.Like(c.UserContext(), currentHandle(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippet)
}

// UnlikeSnippet handles DELETE /api/snippets/:id/like
func (s *Server) UnlikeSnippet(c *fiber.Ctx) error {
	snippet, err := s.engagementService.Unlike(c.UserContext(), currentHandle(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippet)
}

// PlaySnippet handles POST /api/snippets/:id/play. Each user counts once.
func (s *Server) PlaySnippet(c *fiber.Ctx) error {
	snippet, err := s.engagementService.Play(c.UserContext(), currentHandle(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippet)
}

// PlaySnippetAnonymous handles POST /api/snippets/:id/play/anonymous, the
// unauthenticated playback counter with no dedup.
func (s *Server) PlaySnippetAnonymous(c *fiber.Ctx) error {
	snippet, err := s.engagementService.PlayAnonymous(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snippet)
}
