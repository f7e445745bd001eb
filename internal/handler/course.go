package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/middleware"
	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CourseHandler serves course and course-structure CRUD.
type CourseHandler struct {
	DB *gorm.DB
}

func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{DB: db}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// loadOwnedCourse fetches the course and enforces the ownership rule:
// teachers may only touch their own courses, admins may touch any.
func (h *CourseHandler) loadOwnedCourse(c *gin.Context, courseID uint) (*models.Course, bool) {
	var course models.Course
	if err := h.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		}
		return nil, false
	}

	account := middleware.CurrentAccount(c)
	if account.AccountType == models.AccountTeacher && course.Owner != account.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "access denied")
		return nil, false
	}
	return &course, true
}

type createCourseReq struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	var req createCourseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Course{}).
		Where("name = ?", req.Name).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, "course name is not unique")
		return
	}

	course := models.Course{Name: req.Name, Owner: account.ID}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		info := models.CourseInfo{
			CourseID:    course.ID,
			Description: req.Description,
			Tags:        strings.Join(req.Tags, ","),
		}
		return tx.Create(&info).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course creation failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"id": course.ID},
	})
}

// List shows published courses plus, for teachers and admins, their own
// unpublished ones.
func (h *CourseHandler) List(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	q := h.DB.Model(&models.Course{})
	switch account.AccountType {
	case models.AccountAdmin:
		// admins see everything
	case models.AccountTeacher:
		q = q.Where("is_published = ? OR owner = ?", true, account.ID)
	default:
		q = q.Where("is_published = ?", true)
	}

	var courses []models.Course
	if err := q.Preload("Info").Find(&courses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		return
	}

	items := make([]gin.H, 0, len(courses))
	for _, course := range courses {
		item := gin.H{
			"id":           course.ID,
			"name":         course.Name,
			"is_published": course.IsPublished,
			"owner":        course.Owner,
		}
		if course.Info != nil {
			item["description"] = course.Info.Description
			if course.Info.Tags != "" {
				item["tags"] = strings.Split(course.Info.Tags, ",")
			}
		}
		items = append(items, item)
	}
	util.Success(c, util.Response{"items": items})
}

func (h *CourseHandler) Get(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var course models.Course
	err := h.DB.Preload("Info").
		Preload("Sections.Lessons.Tasks").
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		}
		return
	}

	account := middleware.CurrentAccount(c)
	if !course.IsPublished &&
		account.AccountType == models.AccountStudent {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		return
	}

	sections := make([]gin.H, 0, len(course.Sections))
	for _, s := range course.Sections {
		lessons := make([]gin.H, 0, len(s.Lessons))
		for _, l := range s.Lessons {
			tasks := make([]gin.H, 0, len(l.Tasks))
			for _, t := range l.Tasks {
				tasks = append(tasks, gin.H{
					"id":        t.ID,
					"name":      t.Name,
					"task_type": t.TaskType,
					"points":    t.Points,
					"position":  t.Position,
				})
			}
			lessons = append(lessons, gin.H{
				"id":       l.ID,
				"name":     l.Name,
				"position": l.Position,
				"tasks":    tasks,
			})
		}
		sections = append(sections, gin.H{
			"id":        s.ID,
			"name":      s.Name,
			"duration":  s.Duration,
			"is_opened": s.IsOpened,
			"lessons":   lessons,
		})
	}

	data := util.Response{
		"id":           course.ID,
		"name":         course.Name,
		"is_published": course.IsPublished,
		"owner":        course.Owner,
		"sections":     sections,
	}
	if course.Info != nil {
		data["description"] = course.Info.Description
		if course.Info.Tags != "" {
			data["tags"] = strings.Split(course.Info.Tags, ",")
		}
	}
	util.Success(c, data)
}

type updateCourseReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *CourseHandler) Update(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, ok := h.loadOwnedCourse(c, courseID)
	if !ok {
		return
	}

	var req updateCourseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Name != "" && req.Name != course.Name {
			var count int64
			if err := tx.Model(&models.Course{}).
				Where("name = ? AND id <> ?", req.Name, course.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errors.New("course name is not unique")
			}
			if err := tx.Model(course).Update("name", req.Name).Error; err != nil {
				return err
			}
		}
		updates := map[string]interface{}{"updated_at": time.Now()}
		if req.Description != "" {
			updates["description"] = req.Description
		}
		if req.Tags != nil {
			updates["tags"] = strings.Join(req.Tags, ",")
		}
		return tx.Model(&models.CourseInfo{}).
			Where("course_id = ?", course.ID).
			Updates(updates).Error
	})
	if err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) Publish(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, ok := h.loadOwnedCourse(c, courseID)
	if !ok {
		return
	}

	if err := h.DB.Model(course).Update("is_published", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course update failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a course with all dependent rows. Admin only (wired at
// the router).
func (h *CourseHandler) Delete(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var course models.Course
	if err := h.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		}
		return
	}

	if err := h.DB.Select("Info", "Sections").Delete(&course).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course deletion failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type createSectionReq struct {
	Name     string `json:"name" binding:"required"`
	Duration int    `json:"duration"`
	IsOpened *bool  `json:"is_opened"`
}

func (h *CourseHandler) CreateSection(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.loadOwnedCourse(c, courseID); !ok {
		return
	}

	var req createSectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	section := models.CourseSection{
		CourseID: courseID,
		Name:     req.Name,
		Duration: req.Duration,
		IsOpened: true,
	}
	if req.IsOpened != nil {
		section.IsOpened = *req.IsOpened
	}
	if err := h.DB.Create(&section).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "section creation failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"id": section.ID},
	})
}

func (h *CourseHandler) DeleteSection(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "sid")
	if !ok {
		return
	}
	if _, ok := h.loadOwnedCourse(c, courseID); !ok {
		return
	}

	res := h.DB.Where("course_id = ?", courseID).Delete(&models.CourseSection{}, sectionID)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "section deletion failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "section not found")
		return
	}
	c.Status(http.StatusNoContent)
}

type createLessonReq struct {
	SectionID uint   `json:"section_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Position  int    `json:"position"`
}

func (h *CourseHandler) CreateLesson(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.loadOwnedCourse(c, courseID); !ok {
		return
	}

	var req createLessonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var section models.CourseSection
	if err := h.DB.Where("course_id = ?", courseID).
		First(&section, req.SectionID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "section not found")
		return
	}

	lesson := models.CourseLesson{
		SectionID: section.ID,
		Name:      req.Name,
		Position:  req.Position,
	}
	if err := h.DB.Create(&lesson).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "lesson creation failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"id": lesson.ID},
	})
}

type createTaskReq struct {
	LessonID uint            `json:"lesson_id" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	TaskType models.TaskType `json:"task_type" binding:"required"`
	Points   int             `json:"points"`
	Position int             `json:"position"`
}

func (h *CourseHandler) CreateTask(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.loadOwnedCourse(c, courseID); !ok {
		return
	}

	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	switch req.TaskType {
	case models.TaskTyping, models.TaskVideo, models.TaskQuiz:
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown task type")
		return
	}

	var lesson models.CourseLesson
	err := h.DB.Joins("JOIN course_sections ON course_sections.id = course_lessons.section_id").
		Where("course_sections.course_id = ?", courseID).
		First(&lesson, "course_lessons.id = ?", req.LessonID).Error
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "lesson not found")
		return
	}

	task := models.CourseTask{
		LessonID: lesson.ID,
		Name:     req.Name,
		TaskType: req.TaskType,
		Points:   req.Points,
		Position: req.Position,
	}
	if err := h.DB.Create(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "task creation failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"id": task.ID},
	})
}
