package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrPersonaLocked), errors.Is(err, common.ErrFeatureLocked):
		return http.StatusPaymentRequired, "locked"
	case errors.Is(err, common.ErrAuthorization):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrExternalUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err)
		msg = "internal error"
	} else if status == http.StatusServiceUnavailable {
		s.logger.Warn(c.Request.Context(), "dependency unavailable", "route", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}
