package middleware

import (
	"github.com/Filadrif/MPBFQW-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Audit records one row per authenticated request after the handler
// has run. Unauthenticated requests are not recorded.
func Audit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		account := CurrentAccount(c)
		if account == nil {
			return
		}

		entry := models.AuditLog{
			AccountID: &account.ID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&entry).Error
	}
}
