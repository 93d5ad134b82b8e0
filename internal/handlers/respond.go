package handlers

import (
	"errors"
	"net/http"

	"blogcms/internal/service"

	"github.com/gin-gonic/gin"
)

// statusForError maps domain errors to HTTP statuses. Unrecognized errors
// become 500 and the client never sees their message.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUpload):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrCaptcha):
		return http.StatusBadRequest, "captcha verification failed"
	case errors.Is(err, service.ErrUserExists):
		return http.StatusBadRequest, "username already taken"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "not allowed to modify this article"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// respondError logs server-side failures and writes the mapped status.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code, msg := statusForError(err)
	if h.log != nil && code == http.StatusInternalServerError {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(code, gin.H{"error": msg})
}
