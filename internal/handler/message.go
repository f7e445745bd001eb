package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Filadrif/MPBFQW-backend/internal/middleware"
	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/storage"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MessageHandler serves course board messages and their attachments.
// Attachment payloads live in the blob store; the database keeps only
// metadata with the object key.
type MessageHandler struct {
	DB    *gorm.DB
	Store storage.Store
}

func NewMessageHandler(db *gorm.DB, store storage.Store) *MessageHandler {
	return &MessageHandler{DB: db, Store: store}
}

// loadMessage fetches a message scoped to its course.
func (h *MessageHandler) loadMessage(c *gin.Context, courseID, messageID uint) (*models.CourseMessage, bool) {
	var message models.CourseMessage
	err := h.DB.Where("course_id = ?", courseID).First(&message, messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course message not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "message lookup failed")
		}
		return nil, false
	}
	return &message, true
}

// canManageMessage applies the ownership rule for mutations: a teacher
// may only touch messages they posted, an admin may touch any.
func canManageMessage(account *models.Account, message *models.CourseMessage) bool {
	if account.AccountType == models.AccountAdmin {
		return true
	}
	return message.AccountID == account.ID
}

func (h *MessageHandler) ownerName(accountID uint) string {
	var info models.AccountInfo
	if err := h.DB.First(&info, "account_id = ?", accountID).Error; err != nil {
		return ""
	}
	return info.FullName()
}

type createMessageReq struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *MessageHandler) Create(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	account := middleware.CurrentAccount(c)

	var course models.Course
	if err := h.DB.First(&course, courseID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		return
	}
	if account.AccountType == models.AccountTeacher && course.Owner != account.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "access denied")
		return
	}

	var req createMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	message := models.CourseMessage{
		CourseID:  courseID,
		AccountID: account.ID,
		Title:     req.Title,
		Content:   req.Content,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "message creation failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"message_id": message.ID},
	})
}

type updateMessageReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *MessageHandler) Update(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	message, ok := h.loadMessage(c, courseID, messageID)
	if !ok {
		return
	}
	if !canManageMessage(middleware.CurrentAccount(c), message) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "access denied")
		return
	}

	var req updateMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Title != "" {
		message.Title = req.Title
	}
	if req.Content != "" {
		message.Content = req.Content
	}
	if err := h.DB.Save(message).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "message update failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) Get(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	message, ok := h.loadMessage(c, courseID, messageID)
	if !ok {
		return
	}

	var attachments []models.CourseFile
	if err := h.DB.Where("message_id = ?", message.ID).
		Find(&attachments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "attachment lookup failed")
		return
	}
	files := make([]gin.H, 0, len(attachments))
	for _, a := range attachments {
		files = append(files, gin.H{"id": a.ID, "file_name": a.Name})
	}

	util.Success(c, util.Response{
		"title":            message.Title,
		"content":          message.Content,
		"owner_name":       h.ownerName(message.AccountID),
		"last_activity_at": message.UpdatedAt,
		"attachments":      files,
	})
}

// Delete removes a message together with its attachments, both rows and
// blobs.
func (h *MessageHandler) Delete(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	message, ok := h.loadMessage(c, courseID, messageID)
	if !ok {
		return
	}
	if !canManageMessage(middleware.CurrentAccount(c), message) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "access denied")
		return
	}

	var attachments []models.CourseFile
	if err := h.DB.Where("message_id = ?", message.ID).
		Find(&attachments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "attachment lookup failed")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).
			Delete(&models.CourseFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(message).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "message deletion failed")
		return
	}

	// Blob removal happens after the commit; a leftover blob is
	// harmless, a dangling row is not.
	for _, a := range attachments {
		_ = h.Store.Delete(a.ObjectKey)
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) List(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 0 {
		page = 0
	}

	var messages []models.CourseMessage
	if err := h.DB.Where("course_id = ?", courseID).
		Order("created_at DESC").
		Limit(limit).
		Offset(page * limit).
		Find(&messages).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "message lookup failed")
		return
	}

	ownerNames := map[uint]string{}
	items := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		name, ok := ownerNames[m.AccountID]
		if !ok {
			name = h.ownerName(m.AccountID)
			ownerNames[m.AccountID] = name
		}
		items = append(items, gin.H{
			"message_id":       m.ID,
			"title":            m.Title,
			"content":          m.Content,
			"owner_name":       name,
			"last_activity_at": m.UpdatedAt,
		})
	}
	util.Success(c, util.Response{"items": items})
}

func (h *MessageHandler) UploadAttachment(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	message, ok := h.loadMessage(c, courseID, messageID)
	if !ok {
		return
	}
	account := middleware.CurrentAccount(c)
	if !canManageMessage(account, message) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "access denied")
		return
	}

	title := c.PostForm("file_title")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file is required")
		return
	}
	if title == "" {
		title = fileHeader.Filename
	}

	f, err := fileHeader.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "file read failed")
		return
	}
	defer f.Close()

	key := fmt.Sprintf("attachments/%d/message/%s", courseID, storage.NewKey())
	if err := h.Store.Save(key, f); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "file upload failed")
		return
	}

	attachment := models.CourseFile{
		MessageID: message.ID,
		Name:      title,
		ObjectKey: key,
		Owner:     account.ID,
	}
	if err := h.DB.Create(&attachment).Error; err != nil {
		_ = h.Store.Delete(key)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "attachment creation failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"id": attachment.ID},
	})
}

func (h *MessageHandler) ListAttachments(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	message, ok := h.loadMessage(c, courseID, messageID)
	if !ok {
		return
	}

	var attachments []models.CourseFile
	if err := h.DB.Where("message_id = ?", message.ID).
		Find(&attachments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "attachment lookup failed")
		return
	}

	items := make([]gin.H, 0, len(attachments))
	for _, a := range attachments {
		items = append(items, gin.H{"id": a.ID, "title": a.Name})
	}
	util.Success(c, util.Response{"items": items})
}

func (h *MessageHandler) loadAttachment(c *gin.Context, messageID uint) (*models.CourseFile, bool) {
	attachmentID, err := strconv.ParseUint(c.Param("aid"), 10, 32)
	if err != nil || attachmentID == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}

	var attachment models.CourseFile
	dberr := h.DB.Where("message_id = ?", messageID).
		First(&attachment, uint(attachmentID)).Error
	if dberr != nil {
		if errors.Is(dberr, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "attachment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "attachment lookup failed")
		}
		return nil, false
	}
	return &attachment, true
}

func (h *MessageHandler) DeleteAttachment(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	message, ok := h.loadMessage(c, courseID, messageID)
	if !ok {
		return
	}
	if !canManageMessage(middleware.CurrentAccount(c), message) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "access denied")
		return
	}
	attachment, ok := h.loadAttachment(c, message.ID)
	if !ok {
		return
	}

	if !h.Store.Has(attachment.ObjectKey) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "resource not found")
		return
	}
	if err := h.Store.Delete(attachment.ObjectKey); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "file deletion failed")
		return
	}
	if err := h.DB.Delete(attachment).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "attachment deletion failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) DownloadAttachment(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messageID, ok := paramID(c, "mid")
	if !ok {
		return
	}
	if _, ok := h.loadMessage(c, courseID, messageID); !ok {
		return
	}

	attachment, ok := h.loadAttachment(c, messageID)
	if !ok {
		return
	}

	rc, size, err := h.Store.Open(attachment.ObjectKey)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "resource not found")
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", attachment.Name),
	}
	c.DataFromReader(http.StatusOK, size, "application/octet-stream", rc, extraHeaders)
}
