package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/filmdocs/internal/metrics"
	"github.com/amaumene/filmdocs/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest("GET", "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestGzipSkipsExcludedPaths(t *testing.T) {
	r := gin.New()
	r.Use(Gzip("/raw"))
	r.GET("/text", func(c *gin.Context) { c.String(http.StatusOK, "hello film") })
	r.GET("/raw", func(c *gin.Context) { c.String(http.StatusOK, "as is") })

	req := httptest.NewRequest("GET", "/text", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(r, req)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hello film", string(body))

	req = httptest.NewRequest("GET", "/raw", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "as is", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/film", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest("OPTIONS", "/film", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndLogger(t *testing.T) {
	var logs bytes.Buffer
	m := metrics.New()
	r := gin.New()
	r.Use(RequestID(), Logger(logger.NewWithOutput(&logs, "info")), Metrics(m))
	r.GET("/film", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	serve(r, httptest.NewRequest("GET", "/film?title=", nil))
	serve(r, httptest.NewRequest("GET", "/nowhere", nil))

	assert.Contains(t, logs.String(), "/film?title=")
	assert.Contains(t, logs.String(), RequestIDKey)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, w.Body.String(), `filmdocs_http_requests_total{route="/film",status="400"} 1`)
	assert.Contains(t, w.Body.String(), `filmdocs_http_requests_total{route="unmatched",status="404"} 1`)
}
