package util

import (
	"errors"
	"net/http"

	"github.com/Filadrif/MPBFQW-backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a successful reply.
type Response map[string]interface{}

// Business codes carried alongside the HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeNotCreatable = 40601
	CodeServerErr    = 50001
)

// Success writes the uniform success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// AuthError maps the auth rejection taxonomy onto HTTP statuses:
// access denied is 403, everything else in the taxonomy is 401, and
// unexpected errors are 500.
func AuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrAccessDenied):
		Error(c, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, CodeAuth, err.Error())
	default:
		Error(c, http.StatusInternalServerError, CodeServerErr, "internal error")
	}
}
