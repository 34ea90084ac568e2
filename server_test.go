package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/handlers"
	"github.com/sirupsen/logrus"
)

func testRouter(ready bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := handlers.NewConsignmentHandler(nil, logger, config.PaidSyncAsymmetric)
	return newRouter(logger, func() bool { return ready }, h)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterReadiness(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		path  string
		code  int
	}{
		{"health while starting", false, "/healthz", http.StatusNoContent},
		{"api while starting", false, "/api/v1/consignments", http.StatusServiceUnavailable},
		{"api without token", true, "/api/v1/consignments", http.StatusUnauthorized},
		{"ops without token", true, "/internal/ops/consignments/reconcile", http.StatusNotFound},
		{"unknown route", true, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := serve(testRouter(tt.ready), http.MethodGet, tt.path, nil)
		if w.Code != tt.code {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.code, w.Code)
		}
	}

	w := serve(testRouter(true), http.MethodPost, "/internal/ops/consignments/reconcile", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("reconcile without token: expected 401, got %d", w.Code)
	}
}

func TestCorrelationIdHeader(t *testing.T) {
	r := testRouter(true)

	w := serve(r, http.MethodGet, "/healthz", map[string]string{"x-correlation-id": "abc-123"})
	if got := w.Header().Get("x-correlation-id"); got != "abc-123" {
		t.Fatalf("expected correlation id to be echoed, got %q", got)
	}
	w = serve(r, http.MethodGet, "/healthz", nil)
	if w.Header().Get("x-correlation-id") == "" {
		t.Fatalf("expected a generated correlation id")
	}
}

func TestRateLimiterWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(config.GetRedisDB, 1, 0)
	r := gin.New()
	r.Use(rl.RateLimitMiddleware)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through without redis, got %d", i, w.Code)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" https://a.com, ,https://b.com ")
	want := []string{"https://a.com", "https://b.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if splitAndTrim("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}
