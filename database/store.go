package database

import (
	"errors"
	"strings"

	"github.com/weave-app/weave-server/models"
	"github.com/weave-app/weave-server/story"
	"gorm.io/gorm"
)

// Store implements the persistence surface of the story orchestrator plus
// the read paths the HTTP layer needs.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateStory(userID, genre, title string) (uint, error) {
	stry := models.Story{UserID: userID, Genre: genre, Title: title}
	if err := s.db.Create(&stry).Error; err != nil {
		return 0, err
	}
	return stry.ID, nil
}

func (s *Store) FindStory(userID string, storyID uint) (*models.Story, error) {
	var stry models.Story
	err := s.db.Where("user_id = ? AND id = ?", userID, storyID).First(&stry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, story.ErrStoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stry, nil
}

// AppendChapterWithProgress writes the chapter and its progress row in a
// single transaction, so a chapter can never exist without the progress entry
// that references it. Inside the transaction the next chapter number is
// re-checked against the stored maximum: a caller that lost a race gets
// story.ErrChapterConflict instead of a gap or a duplicate.
func (s *Store) AppendChapterWithProgress(userID string, storyID uint, chapterNum int, body string, choices []string, seedConcept string, choiceIndex int) (uint, error) {
	var chapterID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxNum int
		if err := tx.Model(&models.Chapter{}).
			Where("story_id = ?", storyID).
			Select("COALESCE(MAX(number), 0)").
			Scan(&maxNum).Error; err != nil {
			return err
		}
		if chapterNum != maxNum+1 {
			return story.ErrChapterConflict
		}

		chapter := models.Chapter{
			StoryID:     storyID,
			Number:      chapterNum,
			Body:        body,
			SeedConcept: seedConcept,
		}
		if err := chapter.SetChoices(choices); err != nil {
			return err
		}
		if err := tx.Create(&chapter).Error; err != nil {
			if isUniqueViolation(err) {
				return story.ErrChapterConflict
			}
			return err
		}
		chapterID = chapter.ID

		record := models.ProgressRecord{
			UserID:      userID,
			StoryID:     storyID,
			ChapterNum:  chapterNum,
			ChoiceIndex: choiceIndex,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return 0, err
	}
	return chapterID, nil
}

func (s *Store) LatestProgress(userID string, storyID uint) (int, int, error) {
	var record models.ProgressRecord
	err := s.db.Where("user_id = ? AND story_id = ?", userID, storyID).
		Order("chapter_num DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, story.ErrStoryNotFound
	}
	if err != nil {
		return 0, 0, err
	}
	return record.ChapterNum, record.ChoiceIndex, nil
}

// LoadHistory returns the story's chapters up to and including upTo, in
// ascending chapter order. upTo <= 0 means all chapters.
func (s *Store) LoadHistory(userID string, storyID uint, upTo int) ([]models.Chapter, error) {
	if _, err := s.FindStory(userID, storyID); err != nil {
		return nil, err
	}

	query := s.db.Where("story_id = ?", storyID)
	if upTo > 0 {
		query = query.Where("number <= ?", upTo)
	}
	var chapters []models.Chapter
	if err := query.Order("number ASC").Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

// StorySummary is the list-view shape: a story plus its derived current
// chapter (the highest progress entry, 0 when none exists yet).
type StorySummary struct {
	Story          models.Story
	CurrentChapter int
}

func (s *Store) UserStories(userID string) ([]StorySummary, error) {
	var stories []models.Story
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&stories).Error; err != nil {
		return nil, err
	}

	summaries := make([]StorySummary, 0, len(stories))
	for _, stry := range stories {
		var current int
		if err := s.db.Model(&models.ProgressRecord{}).
			Where("user_id = ? AND story_id = ?", userID, stry.ID).
			Select("COALESCE(MAX(chapter_num), 0)").
			Scan(&current).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, StorySummary{Story: stry, CurrentChapter: current})
	}
	return summaries, nil
}

func (s *Store) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

// SetPreferences replaces the user's preferred authors. Callers treat a
// failure here as non-fatal.
func (s *Store) SetPreferences(userID string, authors []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.UserPreference{}).Error; err != nil {
			return err
		}
		for _, author := range authors {
			if err := tx.Create(&models.UserPreference{UserID: userID, Author: author}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// PreferredAuthors satisfies catalog.PreferenceReader.
func (s *Store) PreferredAuthors(userID string) ([]string, error) {
	var prefs []models.UserPreference
	if err := s.db.Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
		return nil, err
	}
	authors := make([]string, 0, len(prefs))
	for _, p := range prefs {
		authors = append(authors, p.Author)
	}
	return authors, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
