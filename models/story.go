package models

import "gorm.io/gorm"

// Story is created once per generate request and never mutated afterwards;
// everything that happens to it later is recorded as Chapters and ProgressRecords.
type Story struct {
	gorm.Model
	UserID string `json:"user_id" gorm:"index"`
	Genre  string `json:"genre"`
	Title  string `json:"title"`
}

// ProgressRecord is an append-only log entry marking that a user advanced a
// story to a chapter via a choice. The current chapter of a (user, story) pair
// is the row with the highest ChapterNum, never a mutable pointer. Rows are
// never deleted; rewinding a story is not supported.
type ProgressRecord struct {
	gorm.Model
	UserID      string `json:"user_id" gorm:"index:idx_progress_user_story"`
	StoryID     uint   `json:"story_id" gorm:"index:idx_progress_user_story"`
	ChapterNum  int    `json:"chapter_num"`
	ChoiceIndex int    `json:"choice"`
}
