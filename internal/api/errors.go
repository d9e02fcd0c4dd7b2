package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/models"
)

// Error codes carried in {"error": {"code": ..., "message": ...}}.
const (
	codeInvalidInput    = "INVALID_INPUT"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeInternal        = "INTERNAL_ERROR"
)

func errorResponse(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError maps a service error onto a status code. Anything outside the
// four known classes is logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		errorResponse(c, http.StatusUnauthorized, codeUnauthenticated, err.Error())
	case errors.Is(err, models.ErrForbidden):
		errorResponse(c, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, models.ErrNotFound):
		errorResponse(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		errorResponse(c, http.StatusBadRequest, codeInvalidInput, err.Error())
	default:
		logger.Error("request failed", zap.String("op", op), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, codeInternal, op+" failed")
	}
}

func badRequest(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, codeInvalidInput, message)
}

// pathID reads a numeric path parameter. It writes the 400 itself and reports
// false when the value is not an integer.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
