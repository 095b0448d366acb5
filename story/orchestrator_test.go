package story

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weave-app/weave-server/catalog"
	"github.com/weave-app/weave-server/models"
)

const twoChoiceChapter = `**Chapter %d**
The corridor narrowed and the torchlight flickered.
Something moved in the dark ahead.

**Choose your path:**
A) Follow the dragon
B) Hide behind the fallen pillar`

// memStore is an in-memory Store with the same append guarantees as the real
// one: chapter + progress are written together, and the next chapter number
// is re-checked under the store lock.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	stories  map[uint]*models.Story
	chapters map[uint][]models.Chapter
	progress map[string][]models.ProgressRecord
}

func newMemStore() *memStore {
	return &memStore{
		stories:  make(map[uint]*models.Story),
		chapters: make(map[uint][]models.Chapter),
		progress: make(map[string][]models.ProgressRecord),
	}
}

func (m *memStore) progressKey(userID string, storyID uint) string {
	return fmt.Sprintf("%s/%d", userID, storyID)
}

func (m *memStore) CreateStory(userID, genre, title string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stry := &models.Story{UserID: userID, Genre: genre, Title: title}
	stry.ID = m.nextID
	m.stories[m.nextID] = stry
	return m.nextID, nil
}

func (m *memStore) FindStory(userID string, storyID uint) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stry, ok := m.stories[storyID]
	if !ok || stry.UserID != userID {
		return nil, ErrStoryNotFound
	}
	copied := *stry
	return &copied, nil
}

func (m *memStore) AppendChapterWithProgress(userID string, storyID uint, chapterNum int, body string, choices []string, seedConcept string, choiceIndex int) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.chapters[storyID]
	if chapterNum != len(existing)+1 {
		return 0, ErrChapterConflict
	}
	chapter := models.Chapter{StoryID: storyID, Number: chapterNum, Body: body, SeedConcept: seedConcept}
	if err := chapter.SetChoices(choices); err != nil {
		return 0, err
	}
	m.chapters[storyID] = append(existing, chapter)
	key := m.progressKey(userID, storyID)
	m.progress[key] = append(m.progress[key], models.ProgressRecord{
		UserID: userID, StoryID: storyID, ChapterNum: chapterNum, ChoiceIndex: choiceIndex,
	})
	return uint(chapterNum), nil
}

func (m *memStore) LatestProgress(userID string, storyID uint) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.progress[m.progressKey(userID, storyID)]
	if len(records) == 0 {
		return 0, 0, ErrStoryNotFound
	}
	latest := records[0]
	for _, r := range records {
		if r.ChapterNum > latest.ChapterNum {
			latest = r
		}
	}
	return latest.ChapterNum, latest.ChoiceIndex, nil
}

func (m *memStore) LoadHistory(userID string, storyID uint, upTo int) ([]models.Chapter, error) {
	if _, err := m.FindStory(userID, storyID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chapter
	for _, ch := range m.chapters[storyID] {
		if upTo <= 0 || ch.Number <= upTo {
			out = append(out, ch)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	output  string
	err     error
	prompts []string
	ready   chan struct{}
	gate    chan struct{}
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	ready, gate := f.ready, f.gate
	output, err := f.output, f.err
	f.mu.Unlock()
	if ready != nil {
		ready <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	return output, nil
}

func newTestService(gen Generator) (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, gen, catalog.NewDefault(), catalog.FirstAuthor{}, zerolog.Nop())
	return svc, store
}

func TestStartCreatesFirstChapter(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	result, err := svc.Start(context.Background(), "u1", "fantasy", "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Number)
	assert.Equal(t, "Fantasy Adventure", result.Title)
	assert.Len(t, result.Choices, 2)
	assert.Contains(t, result.Body, "corridor narrowed")

	current, choice, err := store.LatestProgress("u1", result.StoryID)
	require.NoError(t, err)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, choice, "start marker uses choice index 1")

	// first author of the genre pool is the default selection
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "J.R.R. Tolkien")
}

func TestStartUnknownGenre(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{})

	_, err := svc.Start(context.Background(), "u1", "western", "")
	assert.ErrorIs(t, err, ErrUnknownGenre)
}

func TestStartPropagatesGenerationFailure(t *testing.T) {
	genErr := &GenerationError{StatusCode: 500, Message: "boom"}
	svc, store := newTestService(&fakeGenerator{err: genErr})

	_, err := svc.Start(context.Background(), "u1", "fantasy", "")

	var got *GenerationError
	require.ErrorAs(t, err, &got)
	assert.Empty(t, store.stories, "no story persisted on a failed transition")
}

func TestStartEmptyBodyIsHardFailure(t *testing.T) {
	svc, store := newTestService(&fakeGenerator{output: "**Chapter 1**\n\n"})

	_, err := svc.Start(context.Background(), "u1", "fantasy", "")

	var got *GenerationError
	require.ErrorAs(t, err, &got)
	assert.Empty(t, store.stories)
}

func TestStartSeedConceptReachesPromptAndStorage(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	result, err := svc.Start(context.Background(), "u1", "horror", "a clock that ticks backwards")
	require.NoError(t, err)

	assert.Contains(t, gen.prompts[0], "a clock that ticks backwards")

	history, err := store.LoadHistory("u1", result.StoryID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a clock that ticks backwards", history[0].SeedConcept)
}

func TestContinueAdvancesStory(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	started, err := svc.Start(context.Background(), "u1", "fantasy", "")
	require.NoError(t, err)

	gen.output = fmt.Sprintf(twoChoiceChapter, 2)
	result, err := svc.Continue(context.Background(), "u1", started.StoryID, "A) Follow the dragon", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Number)
	assert.Len(t, result.Choices, 2)

	current, choice, err := store.LatestProgress("u1", started.StoryID)
	require.NoError(t, err)
	assert.Equal(t, 2, current)
	assert.Equal(t, 0, choice, `a decision starting with "A" maps to index 0`)

	// the continuation prompt carries the prior chapter and the decision
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "corridor narrowed")
	assert.Contains(t, gen.prompts[1], "The reader has chosen: A) Follow the dragon")
	assert.Contains(t, gen.prompts[1], "write Chapter 2")
}

func TestContinueExplicitChoiceIndexWins(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	started, err := svc.Start(context.Background(), "u1", "fantasy", "")
	require.NoError(t, err)

	gen.output = fmt.Sprintf(twoChoiceChapter, 2)
	idx := 0
	_, err = svc.Continue(context.Background(), "u1", started.StoryID, "Hide behind the fallen pillar", &idx)
	require.NoError(t, err)

	_, choice, err := store.LatestProgress("u1", started.StoryID)
	require.NoError(t, err)
	assert.Equal(t, 0, choice, "explicit index overrides the letter heuristic")
}

func TestContinueUnknownStory(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{})

	_, err := svc.Continue(context.Background(), "u1", 99, "A", nil)
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestContinueRefusesPastFinalChapter(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	started, err := svc.Start(context.Background(), "u1", "fantasy", "")
	require.NoError(t, err)

	// fast-forward the log to the final chapter
	for n := 2; n <= FinalChapter; n++ {
		_, err := store.AppendChapterWithProgress("u1", started.StoryID, n, "body", nil, "", 0)
		require.NoError(t, err)
	}

	_, err = svc.Continue(context.Background(), "u1", started.StoryID, "A", nil)
	assert.ErrorIs(t, err, ErrStoryCompleted)
}

func TestContinueAcceptsDegradedTerminalChapter(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, _ := newTestService(gen)

	started, err := svc.Start(context.Background(), "u1", "fantasy", "")
	require.NoError(t, err)

	gen.output = "**Chapter 2**\nAnd they all went home. The end."
	result, err := svc.Continue(context.Background(), "u1", started.StoryID, "B", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Choices)
}

func TestProgressionMonotonicity(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	started, err := svc.Start(context.Background(), "u1", "mystery", "")
	require.NoError(t, err)

	for n := 2; n <= 6; n++ {
		gen.output = fmt.Sprintf(twoChoiceChapter, n)
		result, err := svc.Continue(context.Background(), "u1", started.StoryID, "A", nil)
		require.NoError(t, err)
		assert.Equal(t, n, result.Number)
	}

	history, err := store.LoadHistory("u1", started.StoryID, 0)
	require.NoError(t, err)
	require.Len(t, history, 6)
	for i, ch := range history {
		assert.Equal(t, i+1, ch.Number, "chapter numbers are contiguous from 1")
	}
}

func TestConcurrentContinueOneWinnerOneConflict(t *testing.T) {
	gen := &fakeGenerator{output: fmt.Sprintf(twoChoiceChapter, 1)}
	svc, store := newTestService(gen)

	started, err := svc.Start(context.Background(), "u1", "fantasy", "")
	require.NoError(t, err)

	// hold both continuations inside the generation call so they both read
	// the same current chapter before either writes
	gate := make(chan struct{})
	ready := make(chan struct{}, 2)
	gen.mu.Lock()
	gen.output = fmt.Sprintf(twoChoiceChapter, 2)
	gen.gate = gate
	gen.ready = ready
	gen.mu.Unlock()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Continue(context.Background(), "u1", started.StoryID, "A", nil)
			errs <- err
		}()
	}
	<-ready
	<-ready
	close(gate)

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}

	require.Len(t, failures, 1, "exactly one continuation must lose the race")
	assert.ErrorIs(t, failures[0], ErrChapterConflict)

	history, err := store.LoadHistory("u1", started.StoryID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2, "never two chapters with the same number")
}

func TestDeriveChoiceIndex(t *testing.T) {
	cases := map[string]int{
		"A":                    0,
		"a) sneak past":        0,
		"  A) Follow":          0,
		"B":                    1,
		"b) fight":             1,
		"Hide behind a pillar": 1,
		"":                     1,
	}
	for decision, want := range cases {
		assert.Equal(t, want, deriveChoiceIndex(decision), "decision %q", decision)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Fantasy", titleCase("fantasy"))
	assert.Equal(t, "Sci-Fi", titleCase("sci-fi"))
	assert.Equal(t, "Dark Fantasy", titleCase("dark fantasy"))
}

func TestStartUnknownGenreErrorIsWrapped(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{})
	_, err := svc.Start(context.Background(), "u1", "western", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownGenre))
	assert.Contains(t, err.Error(), "western")
}
