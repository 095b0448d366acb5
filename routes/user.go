package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/weave-app/weave-server/models"
)

type RegisterRequest struct {
	UserID           string   `json:"user_id"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	ProfilePicURL    string   `json:"profile_pic_url"`
	PreferredAuthors []string `json:"preferred_authors"`
}

// Register creates a user and stores their author preferences. A preference
// write failure is deliberately non-fatal: registration still reports
// success, just with a different message.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if req.UserID == "" || req.Email == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id, email and name are required"})
	}

	user := models.User{
		ExternalID:    req.UserID,
		Email:         req.Email,
		Name:          req.Name,
		ProfilePicURL: req.ProfilePicURL,
	}
	if err := db.CreateUser(&user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to create user"})
	}

	if len(req.PreferredAuthors) > 0 {
		if err := db.SetPreferences(req.UserID, req.PreferredAuthors); err != nil {
			log.Warn().Err(err).Str("user_id", req.UserID).Msg("could not store author preferences")
			return c.JSON(fiber.Map{"success": true, "message": "User registered but preferences could not be set"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "User registered successfully"})
}
