package middleware

import (
	"net/http"

	"github.com/Filadrif/MPBFQW-backend/internal/auth"
	"github.com/Filadrif/MPBFQW-backend/internal/models"
	"github.com/Filadrif/MPBFQW-backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	ctxSession = "currentSession"
	ctxAccount = "currentAccount"
)

// Auth verifies the access cookie against the session store and puts
// the live session and its account into the context. Every protected
// route goes through here first.
func Auth(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, err := c.Cookie("access")
		if err != nil || access == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, auth.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		session, err := service.VerifyAccess(access, c.Request)
		if err != nil {
			util.AuthError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxSession, session)
		c.Set(ctxAccount, &session.Account)
		c.Next()
	}
}

// CurrentSession returns the session stored by Auth, or nil.
func CurrentSession(c *gin.Context) *models.AccountSession {
	if v, ok := c.Get(ctxSession); ok {
		if session, ok := v.(*models.AccountSession); ok {
			return session
		}
	}
	return nil
}

// CurrentAccount returns the account stored by Auth, or nil.
func CurrentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(ctxAccount); ok {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}

func requireRole(c *gin.Context, allowed func(*models.Account) bool) {
	account := CurrentAccount(c)
	if account == nil || !account.IsActive || !allowed(account) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, auth.ErrAccessDenied.Error())
		c.Abort()
		return
	}
	c.Next()
}

// RequireUser allows any active account.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		requireRole(c, func(*models.Account) bool { return true })
	}
}

// RequireTeacher allows active teachers and admins.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		requireRole(c, func(a *models.Account) bool {
			return a.AccountType == models.AccountTeacher || a.AccountType == models.AccountAdmin
		})
	}
}

// RequireAdmin allows active admins only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		requireRole(c, func(a *models.Account) bool {
			return a.AccountType == models.AccountAdmin
		})
	}
}
