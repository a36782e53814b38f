package rest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/dmitrijs2005/upscaler/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionKey = "session"

const bearerPrefix = "Bearer "

const requestIDHeader = "X-Request-Id"

// LoggingMiddleware tags the request context with a request id, echoed in
// the response, and logs one line per request.
func LoggingMiddleware(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", id))

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			l.Error(c.Request.Context(), "request", args...)
		default:
			l.Info(c.Request.Context(), "request", args...)
		}
	}
}

// HandlePanics turns a panic in a handler into a 500 with a JSON body.
func HandlePanics(l logging.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		l.Error(c.Request.Context(), "panic recovered", "panic", fmt.Sprint(recovered), "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(common.ErrorInternal))
	}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			abortWithError(c, common.ErrorUnauthorized)
			return
		}

		sess, err := s.sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *services.Session {
	return c.MustGet(sessionKey).(*services.Session)
}
