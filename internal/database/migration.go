package database

import (
	"fmt"

	"github.com/Filadrif/MPBFQW-backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.AccountInfo{},
		&models.AccountSession{},
		&models.Course{},
		&models.CourseInfo{},
		&models.CourseSection{},
		&models.CourseLesson{},
		&models.CourseTask{},
		&models.CourseStatistics{},
		&models.CourseProgress{},
		&models.CourseMessage{},
		&models.CourseFile{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
