package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpoptions "github.com/forge-io/agentforge/pkg/options/http"
	"github.com/forge-io/agentforge/pkg/response"
)

func newTestManager() *Manager {
	return NewManager(
		WithMode(gin.TestMode),
		WithHTTPOptions(&httpoptions.Options{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     30 * time.Second,
			ShutdownTimeout: time.Second,
		}),
		WithShutdownTimeout(time.Second),
	)
}

func TestManagerServesRoutes(t *testing.T) {
	m := newTestManager()
	m.Engine().GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"pong": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	m.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestManager()
	m.Engine().GET("/id", func(c *gin.Context) {
		response.OK(c, nil)
	})

	// 未携带 ID 时生成新 ID
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	m.Engine().ServeHTTP(w, req)
	require.NotEmpty(t, w.Header().Get(response.RequestIDKey))

	// 已携带 ID 时透传
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(response.RequestIDKey, "req-123")
	m.Engine().ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(response.RequestIDKey))
}

func TestRecoveryMiddleware(t *testing.T) {
	m := newTestManager()
	m.Engine().GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	m.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	m := newTestManager()
	m.Engine().GET("/cors", func(c *gin.Context) {
		response.OK(c, nil)
	})

	// 普通请求带上 Allow-Origin
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cors", nil)
	req.Header.Set("Origin", "https://app.example.com")
	m.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// 预检请求返回 204 并带上方法与头部
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/cors", nil)
	req.Header.Set("Origin", "https://app.example.com")
	m.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Max-Age"))
}

func TestStopWithoutRun(t *testing.T) {
	m := newTestManager()
	assert.NoError(t, m.Stop())
}
