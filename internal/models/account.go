package models

import (
	"strings"
	"time"
)

type AccountType string

const (
	AccountAdmin   AccountType = "admin"
	AccountTeacher AccountType = "teacher"
	AccountStudent AccountType = "student"
)

type GenderType string

const (
	GenderMale   GenderType = "male"
	GenderFemale GenderType = "female"
)

// Account represents a platform user (student, teacher or admin).
type Account struct {
	ID                uint        `gorm:"primaryKey"`
	Username          string      `gorm:"size:64;uniqueIndex;not null"`
	Email             string      `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash      string      `gorm:"size:255;not null"`
	IsActive          bool        `gorm:"not null;default:false"`
	AccountType       AccountType `gorm:"size:16;index;not null"`
	PasswordChangedAt *time.Time
	CreatedAt         time.Time

	Info     *AccountInfo     `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Sessions []AccountSession `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// AccountInfo holds the personal profile attached to an account.
type AccountInfo struct {
	AccountID   uint       `gorm:"primaryKey"`
	Name        string     `gorm:"size:32;not null"`
	Surname     string     `gorm:"size:32;not null"`
	Patronymic  string     `gorm:"size:32"`
	Gender      GenderType `gorm:"size:8;index"`
	Phone       string     `gorm:"size:16;uniqueIndex"`
	DateJoined  time.Time
	DateOfBirth *time.Time
}

// FullName returns "Surname Name [Patronymic]".
func (i *AccountInfo) FullName() string {
	parts := []string{i.Surname, i.Name}
	if i.Patronymic != "" {
		parts = append(parts, i.Patronymic)
	}
	return strings.Join(parts, " ")
}

// AccountSession binds an account to a device fingerprint and an expiry.
// Identity rotates on every refresh, which is what makes a replayed
// refresh token detectable.
type AccountSession struct {
	ID           uint      `gorm:"primaryKey"`
	AccountID    uint      `gorm:"index;not null"`
	Fingerprint  string    `gorm:"size:512;not null"`
	Identity     string    `gorm:"size:64;not null"`
	InvalidAfter time.Time `gorm:"not null"`
	CreatedAt    time.Time

	Account Account `gorm:"constraint:OnDelete:CASCADE"`
}
