package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Chapter is one generated narrative unit. Chapters are append-only: the
// unique composite index on (StoryID, Number) is the storage-level guard
// against two writers racing on the same next chapter number.
type Chapter struct {
	gorm.Model
	StoryID uint   `json:"story_id" gorm:"index:idx_story_chapter,unique"`
	Number  int    `json:"chapter_num" gorm:"index:idx_story_chapter,unique"`
	Body    string `json:"content" gorm:"type:text"`
	// ChoicesJSON holds the ordered choice list as a JSON array. Empty list
	// means the model declined to offer a choice (degraded terminal chapter).
	ChoicesJSON string `json:"-" gorm:"type:text"`
	// SeedConcept is only ever set on chapter 1. Continuation prompts carry
	// it forward from the first chapter of the history.
	SeedConcept string `json:"-" gorm:"type:text"`
}

func (c *Chapter) Choices() []string {
	if c.ChoicesJSON == "" {
		return nil
	}
	var choices []string
	if err := json.Unmarshal([]byte(c.ChoicesJSON), &choices); err != nil {
		return nil
	}
	return choices
}

func (c *Chapter) SetChoices(choices []string) error {
	if len(choices) == 0 {
		c.ChoicesJSON = ""
		return nil
	}
	raw, err := json.Marshal(choices)
	if err != nil {
		return err
	}
	c.ChoicesJSON = string(raw)
	return nil
}
