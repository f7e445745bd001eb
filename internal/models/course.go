package models

import "time"

type TaskType string

const (
	TaskTyping TaskType = "typing"
	TaskVideo  TaskType = "video"
	TaskQuiz   TaskType = "quiz"
)

// Course is the top-level unit owned by a teacher.
type Course struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:128;uniqueIndex;not null"`
	IsPublished bool   `gorm:"not null;default:false"`
	Owner       uint   `gorm:"index;not null"`

	Info     *CourseInfo     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Sections []CourseSection `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

type CourseInfo struct {
	CourseID    uint   `gorm:"primaryKey"`
	Description string `gorm:"size:256"`
	Tags        string `gorm:"size:512"` // comma-separated
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CourseSection struct {
	ID       uint   `gorm:"primaryKey"`
	CourseID uint   `gorm:"index;not null"`
	Name     string `gorm:"size:64;not null"`
	Duration int    `gorm:"not null"`
	IsOpened bool   `gorm:"not null;default:true"`

	Lessons []CourseLesson `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
}

type CourseLesson struct {
	ID        uint   `gorm:"primaryKey"`
	SectionID uint   `gorm:"index;not null"`
	Name      string `gorm:"size:64;not null"`
	Position  int    `gorm:"not null;default:0"`

	Tasks []CourseTask `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
}

type CourseTask struct {
	ID       uint     `gorm:"primaryKey"`
	LessonID uint     `gorm:"index;not null"`
	Name     string   `gorm:"size:64;not null"`
	TaskType TaskType `gorm:"size:16;not null"`
	Points   int      `gorm:"not null;default:0"`
	Position int      `gorm:"not null;default:0"`
}

// CourseStatistics is a student's registration on a course plus
// aggregated progress.
type CourseStatistics struct {
	AccountID    uint `gorm:"primaryKey;autoIncrement:false"`
	CourseID     uint `gorm:"primaryKey;autoIncrement:false;index"`
	LastTask     *uint
	LastActionAt time.Time
	TotalPoints  int  `gorm:"not null;default:0"`
	Finished     bool `gorm:"not null;default:false"`
	FinishedAt   *time.Time
}

// CourseProgress tracks completion of a single task by a student.
type CourseProgress struct {
	AccountID  uint `gorm:"primaryKey;autoIncrement:false"`
	TaskID     uint `gorm:"primaryKey;autoIncrement:false;index"`
	Finished   bool `gorm:"not null;default:false"`
	Points     int  `gorm:"not null;default:0"`
	FinishedAt *time.Time
	UpdatedAt  time.Time
}
