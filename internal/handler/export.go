package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler produces xlsx progress reports for course owners.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

type progressRow struct {
	Username     string
	Surname      string
	Name         string
	TotalPoints  int
	Finished     bool
	LastActionAt time.Time
}

// ExportProgress writes per-student course statistics as an xlsx sheet.
func (h *ExportHandler) ExportProgress(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	courseHandler := CourseHandler{DB: h.DB}
	course, ok := courseHandler.loadOwnedCourse(c, courseID)
	if !ok {
		return
	}

	var rows []progressRow
	err := h.DB.Model(&models.CourseStatistics{}).
		Select("accounts.username, account_infos.surname, account_infos.name, "+
			"course_statistics.total_points, course_statistics.finished, "+
			"course_statistics.last_action_at").
		Joins("JOIN accounts ON accounts.id = course_statistics.account_id").
		Joins("LEFT JOIN account_infos ON account_infos.account_id = course_statistics.account_id").
		Where("course_statistics.course_id = ?", course.ID).
		Order("account_infos.surname ASC").
		Scan(&rows).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "progress lookup failed")
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Username", "Surname", "Name", "Points", "Finished", "Last activity"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
		return
	}
	for i, row := range rows {
		finished := "no"
		if row.Finished {
			finished = "yes"
		}
		cells := []interface{}{
			row.Username,
			row.Surname,
			row.Name,
			row.TotalPoints,
			finished,
			row.LastActionAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
			return
		}
	}

	c.Header("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"progress_%d_%s.xlsx\"",
		course.ID, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
		return
	}
}
