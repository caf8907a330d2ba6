package handlers

import (
	"net/http"

	"studentbus/internal/domain"
	"studentbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsInvalidState(err):
		respondError(c, http.StatusBadRequest, "invalid_state", err.Error(), nil)
	case domain.IsInsufficientCapacity(err):
		respondError(c, http.StatusBadRequest, "insufficient_capacity", err.Error(), nil)
	case domain.IsInsufficientFunds(err):
		respondError(c, http.StatusBadRequest, "insufficient_funds", err.Error(), nil)
	case domain.IsAlreadyResolved(err):
		respondError(c, http.StatusBadRequest, "already_resolved", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsIntegrity(err):
		logServerError(c, err)
		respondError(c, http.StatusInternalServerError, "integrity_error", "data integrity violation", nil)
	default:
		logServerError(c, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

// logServerError keeps the cause of a 500 in the logs; clients only get a
// generic message.
func logServerError(c *gin.Context, err error) {
	zap.L().Error("request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
}
