package routes

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/weave-app/weave-server/models"
)

type GenerateStoryRequest struct {
	UserID       string `json:"user_id"`
	Genre        string `json:"genre"`
	CustomPrompt string `json:"custom_prompt"`
}

type ContinueStoryRequest struct {
	UserID      string `json:"user_id"`
	StoryID     uint   `json:"story_id"`
	Choice      string `json:"choice"`
	ChoiceIndex *int   `json:"choice_index"`
}

type ChapterResponse struct {
	ChapterNum int      `json:"chapter_num"`
	Content    string   `json:"content"`
	Choices    []string `json:"choices"`
}

type StoryResponse struct {
	StoryID        uint              `json:"story_id"`
	Title          string            `json:"title"`
	Genre          string            `json:"genre"`
	Chapters       []ChapterResponse `json:"chapters"`
	CurrentChapter int               `json:"current_chapter"`
}

type UserStoryResponse struct {
	StoryID        uint      `json:"story_id"`
	Title          string    `json:"title"`
	Genre          string    `json:"genre"`
	CurrentChapter int       `json:"current_chapter"`
	CreatedAt      time.Time `json:"created_at"`
}

type StoryDetailResponse struct {
	StoryID        uint      `json:"story_id"`
	Title          string    `json:"title"`
	Genre          string    `json:"genre"`
	CreatedAt      time.Time `json:"created_at"`
	CurrentChapter int       `json:"current_chapter"`
	StoryContent   string    `json:"story_content"`
}

// GenerateStory starts a new story and returns its first chapter.
func GenerateStory(c *fiber.Ctx) error {
	var req GenerateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if req.UserID == "" || req.Genre == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and genre are required"})
	}

	result, err := svc.Start(c.Context(), req.UserID, req.Genre, req.CustomPrompt)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(StoryResponse{
		StoryID: result.StoryID,
		Title:   result.Title,
		Genre:   result.Genre,
		Chapters: []ChapterResponse{{
			ChapterNum: result.Number,
			Content:    result.Body,
			Choices:    choicesOrEmpty(result.Choices),
		}},
		CurrentChapter: result.Number,
	})
}

// ContinueStory advances an existing story based on the reader's choice.
func ContinueStory(c *fiber.Ctx) error {
	var req ContinueStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if req.UserID == "" || req.StoryID == 0 || req.Choice == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id, story_id and choice are required"})
	}

	result, err := svc.Continue(c.Context(), req.UserID, req.StoryID, req.Choice, req.ChoiceIndex)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(ChapterResponse{
		ChapterNum: result.Number,
		Content:    result.Body,
		Choices:    choicesOrEmpty(result.Choices),
	})
}

// GetStories lists the user's stories with their derived current chapter.
func GetStories(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	summaries, err := db.UserStories(userID)
	if err != nil {
		return errorJSON(c, err)
	}

	resp := make([]UserStoryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, UserStoryResponse{
			StoryID:        s.Story.ID,
			Title:          s.Story.Title,
			Genre:          s.Story.Genre,
			CurrentChapter: s.CurrentChapter,
			CreatedAt:      s.Story.CreatedAt,
		})
	}
	return c.JSON(resp)
}

// GetStoryDetail returns one story with its chapters rendered as a single
// formatted text block.
func GetStoryDetail(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	storyID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if userID == "" || err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and a numeric story id are required"})
	}
	upTo, _ := strconv.Atoi(c.Query("chapter_num"))

	stry, chapters, err := storyWithChapters(userID, uint(storyID), upTo)
	if err != nil {
		return errorJSON(c, err)
	}

	current := 0
	for _, ch := range chapters {
		if ch.Number > current {
			current = ch.Number
		}
	}

	return c.JSON(StoryDetailResponse{
		StoryID:        stry.ID,
		Title:          stry.Title,
		Genre:          stry.Genre,
		CreatedAt:      stry.CreatedAt,
		CurrentChapter: current,
		StoryContent:   formatStoryContent(stry, chapters),
	})
}

// ReadStory renders the story as an HTML page.
func ReadStory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	storyID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if userID == "" || err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("user_id and a numeric story id are required")
	}

	stry, chapters, err := storyWithChapters(userID, uint(storyID), 0)
	if err != nil {
		return c.Status(statusForError(err)).SendString(err.Error())
	}

	type chapterView struct {
		Number  int
		Body    string
		Choices []string
	}
	views := make([]chapterView, 0, len(chapters))
	for _, ch := range chapters {
		views = append(views, chapterView{Number: ch.Number, Body: ch.Body, Choices: ch.Choices()})
	}

	return c.Render("story", fiber.Map{
		"Title":    stry.Title,
		"Genre":    stry.Genre,
		"Chapters": views,
	})
}

func storyWithChapters(userID string, storyID uint, upTo int) (*models.Story, []models.Chapter, error) {
	stry, err := db.FindStory(userID, storyID)
	if err != nil {
		return nil, nil, err
	}
	chapters, err := db.LoadHistory(userID, storyID, upTo)
	if err != nil {
		return nil, nil, err
	}
	return stry, chapters, nil
}

func formatStoryContent(stry *models.Story, chapters []models.Chapter) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", stry.Title)
	fmt.Fprintf(&sb, "*Genre: %s*\n\n", stry.Genre)

	for _, ch := range chapters {
		fmt.Fprintf(&sb, "**Chapter %d**\n%s\n\n", ch.Number, ch.Body)
		choices := ch.Choices()
		if len(choices) == 0 {
			continue
		}
		sb.WriteString("**Choose your path:**\n")
		for i, choice := range choices {
			fmt.Fprintf(&sb, "%c) %s\n", rune('A'+i), choice)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func choicesOrEmpty(choices []string) []string {
	if choices == nil {
		return []string{}
	}
	return choices
}
