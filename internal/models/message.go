package models

import "time"

// CourseMessage is an announcement posted on a course board.
// Content is a JSON document produced by the frontend editor.
type CourseMessage struct {
	ID        uint   `gorm:"primaryKey"`
	CourseID  uint   `gorm:"index;not null"`
	AccountID uint   `gorm:"index;not null"`
	Title     string `gorm:"size:128;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Course Course `gorm:"constraint:OnDelete:CASCADE"`
}

// CourseFile is attachment metadata; the payload lives in the blob store
// under ObjectKey.
type CourseFile struct {
	ID        uint   `gorm:"primaryKey"`
	MessageID uint   `gorm:"index;not null"`
	Name      string `gorm:"size:128;not null"`
	ObjectKey string `gorm:"size:255;not null"`
	Owner     uint   `gorm:"index;not null"`
	CreatedAt time.Time

	Message CourseMessage `gorm:"constraint:OnDelete:CASCADE"`
}
