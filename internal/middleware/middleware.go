package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	// ViewerHeader carries the user name of the signed-in user. It is set
	// by the authenticating gateway in front of this service.
	ViewerHeader = "X-Forwarded-User"

	requestIDKey = "request_id"
	viewerKey    = "viewer"
)

// RequestID keeps an incoming request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http.request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Timeout bounds the request context; handlers pass it to every store call.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

type UserLookup interface {
	GetUserByName(ctx context.Context, name string) (*model.User, error)
}

// Viewer resolves the forwarded user. Unknown or missing users browse
// anonymously.
func Viewer(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(ViewerHeader)
		if name == "" {
			c.Next()
			return
		}
		u, err := users.GetUserByName(c.Request.Context(), name)
		switch {
		case err == nil:
			c.Set(viewerKey, u)
		case !errors.Is(err, store.ErrNotFound):
			logger.Warn("viewer.lookup", "request_id", c.GetString(requestIDKey), "name", name, "err", err)
		}
		c.Next()
	}
}

// ViewerFrom returns the viewer set by Viewer, or nil.
func ViewerFrom(c *gin.Context) *model.User {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
