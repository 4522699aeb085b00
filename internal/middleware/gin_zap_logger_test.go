package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter() (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	return r, logs
}

func TestGinZapLogger_SkipsHealth(t *testing.T) {
	r, logs := newObservedRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 0, logs.Len())
}

func TestGinZapLogger_LevelsByStatus(t *testing.T) {
	r, logs := newObservedRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?q=cat", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "/ok?q=cat", entries[0].ContextMap()["path"])
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
	}
}
