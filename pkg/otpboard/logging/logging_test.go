package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func setupRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(New(buf, "debug")))
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": RequestID(c)})
	})
	r.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	req, _ := http.NewRequest("GET", "/ok", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	id := resp.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, id, entry["request_id"])
	assert.Equal(t, "/ok", entry["path"])
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)
	incoming := uuid.NewString()

	req, _ := http.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, incoming)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, incoming, resp.Header().Get(RequestIDHeader))
}

func TestMiddlewareReplacesGarbageID(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	req, _ := http.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.NotEqual(t, "<script>", resp.Header().Get(RequestIDHeader))
}

func TestMiddlewareLogsClientErrorsAsWarn(t *testing.T) {
	var buf bytes.Buffer
	router := setupRouter(&buf)

	req, _ := http.NewRequest("GET", "/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.EqualValues(t, 404, entry["status"])
}
