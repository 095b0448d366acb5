package story

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/weave-app/weave-server/catalog"
	"github.com/weave-app/weave-server/models"
)

// Store is the persistence surface the orchestrator needs. The chapter and
// progress writes of a transition happen as one atomic unit; a chapter saved
// without its progress row must not be possible.
type Store interface {
	CreateStory(userID, genre, title string) (uint, error)
	FindStory(userID string, storyID uint) (*models.Story, error)
	AppendChapterWithProgress(userID string, storyID uint, chapterNum int, body string, choices []string, seedConcept string, choiceIndex int) (uint, error)
	LatestProgress(userID string, storyID uint) (chapterNum int, choiceIndex int, err error)
	LoadHistory(userID string, storyID uint, upTo int) ([]models.Chapter, error)
}

// ChapterResult is what a successful transition hands back to the caller.
type ChapterResult struct {
	StoryID uint
	Title   string
	Genre   string
	Number  int
	Body    string
	Choices []string
}

// Service drives story transitions: it builds the generation context, calls
// the model, parses the output and persists the outcome. Failure at any step
// aborts the whole transition; no partial chapter is surfaced.
type Service struct {
	store   Store
	gen     Generator
	prompts *PromptBuilder
	catalog *catalog.Catalog
	authors catalog.AuthorSelector
	log     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store Store, gen Generator, cat *catalog.Catalog, selector catalog.AuthorSelector, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		gen:     gen,
		prompts: NewPromptBuilder(),
		catalog: cat,
		authors: selector,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Start creates a new story for the user and generates its first chapter.
// The progress row for chapter 1 is written with choice index 1 as a start
// marker.
func (s *Service) Start(ctx context.Context, userID, genre, seedConcept string) (*ChapterResult, error) {
	authors := s.catalog.AuthorsFor(genre)
	if len(authors) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenre, genre)
	}
	author := s.authors.Select(userID, authors)
	title := titleCase(genre) + " Adventure"

	prompt := s.prompts.FirstChapterPrompt(genre, author, seedConcept)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	body, choices := ParseChapter(raw)
	if body == "" {
		return nil, &GenerationError{Message: "generated chapter is empty"}
	}
	s.warnIfDegraded(userID, 1, choices)

	storyID, err := s.store.CreateStory(userID, genre, title)
	if err != nil {
		return nil, fmt.Errorf("creating story: %w", err)
	}

	unlock := s.lock(userID, storyID)
	defer unlock()
	if _, err := s.store.AppendChapterWithProgress(userID, storyID, 1, body, choices, seedConcept, 1); err != nil {
		return nil, fmt.Errorf("persisting first chapter: %w", err)
	}

	return &ChapterResult{
		StoryID: storyID,
		Title:   title,
		Genre:   genre,
		Number:  1,
		Body:    body,
		Choices: choices,
	}, nil
}

// Continue advances an existing story by one chapter based on the reader's
// decision. When the caller supplies an explicit choice index it wins;
// otherwise the index falls back to the letter-prefix heuristic (a decision
// starting with "A" means the first option).
func (s *Service) Continue(ctx context.Context, userID string, storyID uint, decision string, choiceIndex *int) (*ChapterResult, error) {
	current, _, err := s.store.LatestProgress(userID, storyID)
	if err != nil {
		return nil, err
	}
	if current >= FinalChapter {
		return nil, ErrStoryCompleted
	}
	next := current + 1

	stry, err := s.store.FindStory(userID, storyID)
	if err != nil {
		return nil, err
	}

	history, err := s.store.LoadHistory(userID, storyID, current)
	if err != nil {
		return nil, fmt.Errorf("loading story history: %w", err)
	}

	authors := s.catalog.AuthorsFor(stry.Genre)
	author := "Unknown Author"
	if len(authors) > 0 {
		author = s.authors.Select(userID, authors)
	}

	idx := deriveChoiceIndex(decision)
	if choiceIndex != nil {
		idx = *choiceIndex
	}

	prompt := s.prompts.ContinuationPrompt(history, stry.Genre, author, decision, next)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	body, choices := ParseChapter(raw)
	if body == "" {
		return nil, &GenerationError{Message: "generated chapter is empty"}
	}
	s.warnIfDegraded(userID, next, choices)

	// The lock only covers the write span. Holding it across the generation
	// call would serialize every reader of the same story on a seconds-long
	// network request.
	unlock := s.lock(userID, storyID)
	defer unlock()
	if _, err := s.store.AppendChapterWithProgress(userID, storyID, next, body, choices, "", idx); err != nil {
		return nil, err
	}

	return &ChapterResult{
		StoryID: storyID,
		Title:   stry.Title,
		Genre:   stry.Genre,
		Number:  next,
		Body:    body,
		Choices: choices,
	}, nil
}

func (s *Service) warnIfDegraded(userID string, chapterNum int, choices []string) {
	if len(choices) == 0 {
		s.log.Warn().
			Str("user_id", userID).
			Int("chapter_num", chapterNum).
			Msg("chapter parsed without choices, treating as terminal")
	}
}

func (s *Service) lock(userID string, storyID uint) func() {
	key := fmt.Sprintf("%s/%d", userID, storyID)
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// deriveChoiceIndex maps free-text decisions onto the binary choice index:
// anything starting with the letter A selects the first option, everything
// else the second.
func deriveChoiceIndex(decision string) int {
	d := strings.TrimSpace(decision)
	if d != "" && (d[0] == 'A' || d[0] == 'a') {
		return 0
	}
	return 1
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' })
	seps := make([]rune, 0, len(words))
	for _, r := range s {
		if r == ' ' || r == '-' {
			seps = append(seps, r)
		}
	}
	var sb strings.Builder
	for i, w := range words {
		if i > 0 && i-1 < len(seps) {
			sb.WriteRune(seps[i-1])
		}
		sb.WriteString(strings.ToUpper(w[:1]) + strings.ToLower(w[1:]))
	}
	return sb.String()
}
