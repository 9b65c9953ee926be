package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func newEngine(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log), CORS())
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/boom", func(c *gin.Context) { panic("exploded") })
	return r
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"path":"/ok"`) || !strings.Contains(out, `"status":200`) {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_error") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "handler panic") {
		t.Fatalf("panic not logged: %q", buf.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)
	r.OPTIONS("/ok", func(c *gin.Context) {})
	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "http://editor.local")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://editor.local" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
