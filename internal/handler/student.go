package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/middleware"
	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StudentHandler serves course registration and the student's own
// course lists.
type StudentHandler struct {
	DB *gorm.DB
}

func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{DB: db}
}

func (h *StudentHandler) Register(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	account := middleware.CurrentAccount(c)

	var course models.Course
	if err := h.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		}
		return
	}

	var count int64
	if err := h.DB.Model(&models.CourseStatistics{}).
		Where("account_id = ? AND course_id = ?", account.ID, courseID).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "registration lookup failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable,
			"course registration already exists")
		return
	}

	registration := models.CourseStatistics{
		AccountID:    account.ID,
		CourseID:     courseID,
		LastActionAt: time.Now(),
	}
	if err := h.DB.Create(&registration).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "registration failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type enrolledCourse struct {
	CourseID     uint
	Name         string
	TotalPoints  int
	Finished     bool
	LastActionAt time.Time
}

func (h *StudentHandler) listEnrolled(accountID uint, limit int) ([]enrolledCourse, error) {
	q := h.DB.Model(&models.CourseStatistics{}).
		Select("course_statistics.course_id, courses.name, course_statistics.total_points, "+
			"course_statistics.finished, course_statistics.last_action_at").
		Joins("JOIN courses ON courses.id = course_statistics.course_id").
		Where("course_statistics.account_id = ?", accountID).
		Order("course_statistics.last_action_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var courses []enrolledCourse
	if err := q.Scan(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (h *StudentHandler) MyCourses(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	courses, err := h.listEnrolled(account.ID, 0)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		return
	}

	items := make([]gin.H, 0, len(courses))
	for _, course := range courses {
		items = append(items, gin.H{
			"id":             course.CourseID,
			"name":           course.Name,
			"total_points":   course.TotalPoints,
			"finished":       course.Finished,
			"last_action_at": course.LastActionAt,
		})
	}
	util.Success(c, util.Response{"items": items})
}

// RecentCourses returns the three most recently active registrations.
func (h *StudentHandler) RecentCourses(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	courses, err := h.listEnrolled(account.ID, 3)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		return
	}

	items := make([]gin.H, 0, len(courses))
	for _, course := range courses {
		items = append(items, gin.H{
			"id":   course.CourseID,
			"name": course.Name,
		})
	}
	util.Success(c, util.Response{"items": items})
}
