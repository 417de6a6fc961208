package handler

import (
	"net/http"
	"strconv"

	"github.com/Baaaki/course-hub/internal/apperr"
	"github.com/Baaaki/course-hub/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps the error taxonomy onto HTTP status codes. Anything outside
// the taxonomy is an internal error.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}

// writeError converts a service error into an HTTP response. Internal errors
// are logged and never leak their message to the client.
func writeError(c *gin.Context, err error) {
	status := statusFor(apperr.KindOf(err))

	if status == http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// parseIDParam reads a numeric path parameter; a malformed value ends the
// request with 400.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
