package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/weave-app/weave-server/catalog"
	"github.com/weave-app/weave-server/database"
	"github.com/weave-app/weave-server/story"
)

var (
	svc *story.Service
	db  *database.Store
	cat *catalog.Catalog
)

// Setup wires the handlers to their collaborators. Must be called before the
// app starts serving.
func Setup(service *story.Service, store *database.Store, catalog *catalog.Catalog) {
	svc = service
	db = store
	cat = catalog
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// statusForError maps the story error taxonomy onto HTTP statuses: unknown
// genre or story 404, racing writers 409, continuing a finished story 400,
// everything else 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, story.ErrUnknownGenre), errors.Is(err, story.ErrStoryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, story.ErrChapterConflict):
		return fiber.StatusConflict
	case errors.Is(err, story.ErrStoryCompleted):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}
