package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/dmitrijs2005/gophjournal/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

// subject resolves who the request acts for: the singleton subject when the
// server runs without accounts, otherwise the bearer token's subject.
func (s *Server) subject(c *gin.Context) {
	if !s.opts.RequireAuth {
		c.Set(subjectKey, common.SingletonSubject)
		c.Next()
		return
	}

	header := c.GetHeader(common.AuthorizationHeaderName)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		s.abortWithError(c, common.ErrUnauthorized)
		return
	}

	subject, err := auth.SubjectFromToken(strings.TrimPrefix(header, common.BearerPrefix), s.opts.SecretKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Set(subjectKey, subject)
	c.Next()
}

func subjectOf(c *gin.Context) string {
	return c.GetString(subjectKey)
}

// observe records request duration per route template.
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	elapsed := time.Since(start)

	metrics.HTTPRequestDuration.
		WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).
		Observe(elapsed.Seconds())

	s.logger.Debug(c.Request.Context(), "http request",
		"method", c.Request.Method, "route", route, "status", status, "duration", elapsed.String())
}
