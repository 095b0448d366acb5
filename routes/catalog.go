package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type GenreResponse struct {
	GenreID   int    `json:"genre_id"`
	GenreName string `json:"genre_name"`
}

type AuthorResponse struct {
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	Genre      string `json:"genre,omitempty"`
}

type SuggestionResponse struct {
	Genre   string   `json:"genre"`
	Prompts []string `json:"prompts"`
}

func GetGenres(c *fiber.Ctx) error {
	genres := cat.Genres()
	resp := make([]GenreResponse, 0, len(genres))
	for i, genre := range genres {
		resp = append(resp, GenreResponse{GenreID: i + 1, GenreName: titleGenre(genre)})
	}
	return c.JSON(resp)
}

func titleGenre(genre string) string {
	parts := strings.Split(genre, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// GetAuthors lists authors, optionally filtered by genre.
func GetAuthors(c *fiber.Ctx) error {
	genre := c.Query("genre")

	var resp []AuthorResponse
	id := 1
	genres := cat.Genres()
	if genre != "" {
		genres = []string{genre}
	}
	for _, g := range genres {
		for _, author := range cat.AuthorsFor(g) {
			resp = append(resp, AuthorResponse{AuthorID: id, AuthorName: author, Genre: strings.ToLower(g)})
			id++
		}
	}
	if resp == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No authors found for genre: " + genre})
	}
	return c.JSON(resp)
}

// GetSuggestions returns seed-concept suggestions, for one genre or all.
func GetSuggestions(c *fiber.Ctx) error {
	genre := c.Query("genre")
	if genre != "" {
		prompts := cat.SuggestionsFor(genre)
		if len(prompts) == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No suggestions found for genre: " + genre})
		}
		return c.JSON([]SuggestionResponse{{Genre: strings.ToLower(genre), Prompts: prompts}})
	}

	genres := cat.Genres()
	resp := make([]SuggestionResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, SuggestionResponse{Genre: g, Prompts: cat.SuggestionsFor(g)})
	}
	return c.JSON(resp)
}
