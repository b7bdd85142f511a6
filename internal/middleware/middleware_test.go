package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type users map[string]*model.User

func (u users) GetUserByName(_ context.Context, name string) (*model.User, error) {
	if v, ok := u[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("get user %s: %w", name, store.ErrNotFound)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = c.GetString(requestIDKey) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	var deadline time.Time
	var ok bool
	r.GET("/", func(c *gin.Context) { deadline, ok = c.Request.Context().Deadline() })

	serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
}

func TestViewer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Viewer(users{"alice": {ID: "u1", Name: "alice"}}))
	var got *model.User
	r.GET("/", func(c *gin.Context) { got = ViewerFrom(c) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ViewerHeader, "alice")
	serve(r, req)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ViewerHeader, "mallory")
	serve(r, req)
	assert.Nil(t, got)

	serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got)
}
