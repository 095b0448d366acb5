package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	ExternalID    string `gorm:"uniqueIndex" json:"user_id"`
	Email         string `gorm:"uniqueIndex" json:"email"`
	Name          string `json:"name"`
	ProfilePicURL string `json:"profile_pic_url"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserPreference stores one preferred author per row. Preference writes are
// best-effort: a failed write never fails the registration that carried it.
type UserPreference struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"index"`
	Author string
}
