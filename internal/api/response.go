package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "askdb/cli/internal/errors"
	"askdb/cli/internal/query"
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, "bad_request", message, nil)
}

func notFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, "not_found", message, nil)
}

func serverError(c *gin.Context, log interface{ Error(string, ...any) }, err error) {
	log.Error("internal error", "path", c.FullPath(), "error", err)
	fail(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
}

// typedError answers with the status matching err's kind.
func typedError(c *gin.Context, err error, data any) {
	kind := apperrors.KindOf(err)
	code := string(kind)
	if code == "" {
		code = "internal_error"
	}
	fail(c, statusFor(kind), code, query.Message(err), data)
}

func fail(c *gin.Context, status int, code, message string, data any) {
	body := gin.H{"success": false, "error": gin.H{"code": code, "message": message}}
	if data != nil {
		body["data"] = data
	}
	c.AbortWithStatusJSON(status, body)
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.BlockedStatement, apperrors.WritePermission:
		return http.StatusForbidden
	case apperrors.UnsafeDelete, apperrors.Execution:
		return http.StatusUnprocessableEntity
	case apperrors.NotAuthorized:
		return http.StatusUnauthorized
	case apperrors.Translation:
		return http.StatusBadGateway
	case apperrors.ConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
