package middleware

import (
	"time"

	"gopetro/domain/core"
	"gopetro/internal"
	"gopetro/internal/errors"
	"gopetro/internal/session"

	"github.com/gin-gonic/gin"
)

// sessionKey is the gin context key holding the loaded *session.Session
const sessionKey = "view_session"

// RespondError writes err as {error, code} with the status its code maps to
// and aborts the chain
func RespondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// RequestLogger logs one line per request at info, or warn for 5xx
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "%s %s -> %d (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Microsecond)}
		if status >= 500 {
			logger.Warn(line, args...)
		} else {
			logger.Info(line, args...)
		}
	}
}

// LoadSession resolves the :id path parameter to a live session. Unknown or
// malformed ids are answered with 404.
func LoadSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseSessionID(c.Param("id"))
		if err != nil {
			RespondError(c, errors.NotFound("session "+c.Param("id")))
			return
		}
		s, err := manager.Get(id)
		if err != nil {
			RespondError(c, errors.NotFound("session "+id.String()))
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// CurrentSession returns the session loaded by LoadSession
func CurrentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
