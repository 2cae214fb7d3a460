package server

import (
	"log/slog"
	"time"

	"soundbite/internal/middleware"
	"soundbite/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// parseLimit extracts the limit query parameter, clamped to [1, maxPageLimit].
func parseLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit
}

// parseAfter extracts the "after" cursor, an RFC 3339 timestamp taken from
// the created_at of the last snippet on the previous page. A zero time means
// start from the newest.
func parseAfter(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("after")
	if raw == "" {
		return time.Time{}, nil
	}
	after, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, models.NewValidationError("after must be an RFC 3339 timestamp")
	}
	return after, nil
}

// currentHandle returns the authenticated user's handle set by AuthRequired.
func currentHandle(c *fiber.Ctx) string {
	if handle, ok := c.Locals("handle").(string); ok {
		return handle
	}
	return ""
}

// currentImageURL returns the authenticated user's profile image URL.
func currentImageURL(c *fiber.Ctx) string {
	if imageURL, ok := c.Locals("imageURL").(string); ok {
		return imageURL
	}
	return ""
}

// respondServiceError writes the JSON error response for a service failure,
// deriving the HTTP status from the error taxonomy. Store failures reach the
// client as an opaque code only, so the underlying cause is logged here.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "store failure",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}
