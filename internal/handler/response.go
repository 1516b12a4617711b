package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naka-gawa/github-insights/internal/domain"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func errorResponse(c *gin.Context, message string, status int) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: message})
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. The message is passed through so
// upstream failures stay diagnosable.
func (h *Handler) fail(c *gin.Context, route string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorw("request failed", "route", route, "error", err)
	}
	_ = c.Error(err)
	errorResponse(c, err.Error(), status)
}
