package story

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownGenre means the requested genre resolves to an empty author pool.
	ErrUnknownGenre = errors.New("no authors available for genre")

	// ErrStoryNotFound means no progress exists for the (user, story) pair.
	ErrStoryNotFound = errors.New("story progress not found")

	// ErrStoryCompleted means the story already reached the final chapter and
	// cannot be continued.
	ErrStoryCompleted = errors.New("story has reached its final chapter")

	// ErrChapterConflict means two writers raced on the same next chapter
	// number and this one lost.
	ErrChapterConflict = errors.New("chapter already written for this position")
)

// GenerationError is returned when the external generation service fails or
// answers without usable text. It is a hard failure for the request; retries
// are left to the caller.
type GenerationError struct {
	StatusCode int
	Message    string
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}
