package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/middleware"
	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountHandler serves the profile endpoints and the admin audit view.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

func (h *AccountHandler) GetMe(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	var info models.AccountInfo
	if err := h.DB.First(&info, "account_id = ?", account.ID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "profile lookup failed")
		return
	}

	util.Success(c, util.Response{
		"id":           account.ID,
		"username":     account.Username,
		"email":        account.Email,
		"account_type": account.AccountType,
		"name":         info.Name,
		"surname":      info.Surname,
		"patronymic":   info.Patronymic,
		"gender":       info.Gender,
		"phone":        info.Phone,
	})
}

type updateProfileReq struct {
	Name        string            `json:"name"`
	Surname     string            `json:"surname"`
	Patronymic  string            `json:"patronymic"`
	Gender      models.GenderType `json:"gender"`
	Phone       string            `json:"phone"`
	DateOfBirth *time.Time        `json:"date_of_birth"`
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidatePhone(req.Phone); err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, err.Error())
		return
	}

	var info models.AccountInfo
	if err := h.DB.First(&info, "account_id = ?", account.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "profile lookup failed")
		return
	}

	if req.Name != "" {
		info.Name = req.Name
	}
	if req.Surname != "" {
		info.Surname = req.Surname
	}
	if req.Patronymic != "" {
		info.Patronymic = req.Patronymic
	}
	if req.Gender != "" {
		info.Gender = req.Gender
	}
	if req.Phone != "" {
		info.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		info.DateOfBirth = req.DateOfBirth
	}

	if err := h.DB.Save(&info).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "profile update failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.OldPassword)) != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid credentials")
		return
	}
	if err := util.ValidatePassword(req.NewPassword); err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "password hashing failed")
		return
	}

	now := time.Now()
	err = h.DB.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"password_hash":       string(hash),
			"password_changed_at": now,
		}).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "password update failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAudit returns audit rows, newest first. Admin only.
func (h *AccountHandler) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 0 {
		page = 0
	}

	var entries []models.AuditLog
	if err := h.DB.Order("created_at DESC").
		Limit(limit).
		Offset(page * limit).
		Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "audit lookup failed")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		items = append(items, gin.H{
			"id":         e.ID,
			"account_id": e.AccountID,
			"method":     e.Method,
			"path":       e.Path,
			"ip":         e.IP,
			"user_agent": e.UserAgent,
			"created_at": e.CreatedAt,
		})
	}
	util.Success(c, util.Response{"items": items})
}
