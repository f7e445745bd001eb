package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Filadrif/MPBFQW-backend/internal/auth"
	"github.com/Filadrif/MPBFQW-backend/internal/middleware"
	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves login/logout/refresh/signup.
type AuthHandler struct {
	DB   *gorm.DB
	Auth *auth.Service
}

func NewAuthHandler(db *gorm.DB, service *auth.Service) *AuthHandler {
	return &AuthHandler{DB: db, Auth: service}
}

// setAccessCookie puts the access token into the transport cookie.
// Refresh tokens never travel in cookies, only in response bodies.
func setAccessCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access", token, maxAge, "/", "", false, true)
}

func clearAccessCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access", "", -1, "/", "", false, true)
}

type loginReq struct {
	Login      string `json:"login" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var account models.Account
	err := h.DB.Where("username = ? OR email = ?", req.Login, req.Login).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid credentials")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "account lookup failed")
		}
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid credentials")
		return
	}

	pair, err := h.Auth.Issue(&account, req.RememberMe, c.Request)
	if err != nil {
		util.AuthError(c, err)
		return
	}

	setAccessCookie(c, pair.Access, pair.MaxAge)
	util.Success(c, util.Response{"refresh": pair.Refresh})
}

type refreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	// The access token may already be expired; Refresh reads it
	// leniently and re-checks the session it names.
	access, _ := c.Cookie("access")

	pair, err := h.Auth.Refresh(access, req.Refresh, c.Request)
	if err != nil {
		util.AuthError(c, err)
		return
	}

	setAccessCookie(c, pair.Access, pair.MaxAge)
	util.Success(c, util.Response{"refresh": pair.Refresh})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.CurrentSession(c)
	clearAccessCookie(c)
	if session != nil {
		if err := h.Auth.Logout(session); err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "logout failed")
			return
		}
	}
	c.Status(http.StatusNoContent)
}

type signupReq struct {
	Username    string            `json:"username" binding:"required"`
	Email       string            `json:"email" binding:"required,email"`
	Password    string            `json:"password" binding:"required"`
	Name        string            `json:"name" binding:"required"`
	Surname     string            `json:"surname" binding:"required"`
	Patronymic  string            `json:"patronymic"`
	Gender      models.GenderType `json:"gender"`
	Phone       string            `json:"phone"`
	DateOfBirth *time.Time        `json:"date_of_birth"`
	Student     bool              `json:"student"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := util.ValidateUsername(req.Username); err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, err.Error())
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, err.Error())
		return
	}
	if err := util.ValidatePhone(req.Phone); err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, err.Error())
		return
	}

	var count int64
	if err := h.DB.Model(&models.Account{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "account lookup failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable,
			"user with such username or email already exists")
		return
	}

	if req.Phone != "" {
		if err := h.DB.Model(&models.AccountInfo{}).
			Where("phone = ?", req.Phone).
			Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "account lookup failed")
			return
		}
		if count > 0 {
			util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, "phone is not unique")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "password hashing failed")
		return
	}

	accountType := models.AccountTeacher
	if req.Student {
		accountType = models.AccountStudent
	}

	account := models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		AccountType:  accountType,
	}

	// Account and profile are created atomically: a conflict on the
	// profile fails the whole signup instead of leaving a bare account.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		info := models.AccountInfo{
			AccountID:   account.ID,
			Name:        req.Name,
			Surname:     req.Surname,
			Patronymic:  req.Patronymic,
			Gender:      req.Gender,
			Phone:       req.Phone,
			DateJoined:  time.Now(),
			DateOfBirth: req.DateOfBirth,
		}
		return tx.Create(&info).Error
	})
	if err != nil {
		util.Error(c, http.StatusNotAcceptable, util.CodeNotCreatable, "unable to create such user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": util.CodeOK,
		"data": gin.H{"id": account.ID},
	})
}
