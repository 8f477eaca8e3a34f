package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Kind    string `json:"kind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	if body.Success {
		t.Fatalf("expected success=false in error body")
	}
	return body.Kind
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewRateLimiter(ctx, rate.Limit(1), 1)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec1 := performRequest(r, http.MethodGet, "/", nil)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec1.Code)
	}

	rec2 := performRequest(r, http.MethodGet, "/", nil)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on rapid second request, got %d", rec2.Code)
	}
	if kind := decodeKind(t, rec2); kind != "rate_limited" {
		t.Fatalf("expected kind rate_limited, got %q", kind)
	}
}

func TestActionLockMiddleware(t *testing.T) {
	lock := NewActionLock()
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.POST("/detect", ActionLockMiddleware(lock, "page detection"), func(c *gin.Context) {
		close(entered)
		<-release
		c.String(http.StatusOK, "done")
	})
	r.POST("/scrape", ActionLockMiddleware(lock, "scrape"), func(c *gin.Context) {
		c.String(http.StatusOK, "scraped")
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var first *httptest.ResponseRecorder
	go func() {
		defer wg.Done()
		first = performRequest(r, http.MethodPost, "/detect", nil)
	}()

	<-entered
	if got := lock.Running(); got != "page detection" {
		t.Fatalf("expected page detection to be running, got %q", got)
	}

	busy := performRequest(r, http.MethodPost, "/scrape", nil)
	if busy.Code != http.StatusConflict {
		t.Fatalf("expected 409 while busy, got %d", busy.Code)
	}
	if kind := decodeKind(t, busy); kind != "busy" {
		t.Fatalf("expected kind busy, got %q", kind)
	}

	close(release)
	wg.Wait()
	if first.Code != http.StatusOK {
		t.Fatalf("expected first action to finish, got %d", first.Code)
	}

	after := performRequest(r, http.MethodPost, "/scrape", nil)
	if after.Code != http.StatusOK {
		t.Fatalf("expected lock to be released, got %d", after.Code)
	}
}

func TestActionLockReleasedOnPanic(t *testing.T) {
	lock := NewActionLock()
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/boom", ActionLockMiddleware(lock, "boom"), func(c *gin.Context) {
		panic("boom")
	})

	rec := performRequest(r, http.MethodPost, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if lock.Running() != "" {
		t.Fatalf("expected lock to be released after panic")
	}
}

func TestAccessKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.POST("/scrape", AccessKeyMiddleware(string(hash)), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if rec := performRequest(r, http.MethodPost, "/scrape", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodPost, "/scrape", map[string]string{AccessKeyHeader: "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodPost, "/scrape", map[string]string{AccessKeyHeader: "open-sesame"}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with key header, got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodPost, "/scrape?access_key=open-sesame", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with key query, got %d", rec.Code)
	}
}

func TestAccessKeyMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.POST("/scrape", AccessKeyMiddleware(""), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if rec := performRequest(r, http.MethodPost, "/scrape", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected open endpoint without configured hash, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(true))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "headers") })
	r.GET("/api/session", func(c *gin.Context) { c.String(http.StatusOK, "{}") })

	rec := performRequest(r, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	required := []string{"X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy", "Content-Security-Policy"}
	for _, header := range required {
		if rec.Header().Get(header) == "" {
			t.Fatalf("expected header %s to be set", header)
		}
	}
	if rec.Header().Get("Cache-Control") != "" {
		t.Fatalf("static pages should stay cacheable")
	}

	api := performRequest(r, http.MethodGet, "/api/session", nil)
	if api.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store on API responses, got %q", api.Header().Get("Cache-Control"))
	}
}

func TestSecurityScanDetection(t *testing.T) {
	r := gin.New()
	r.Use(SecurityScanDetection(zerolog.Nop()))
	r.GET("/.env", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec := performRequest(r, http.MethodGet, "/.env", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status for suspicious path: %d", rec.Code)
	}
}

func TestHTTPMethodFilter(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMethodFilter([]string{http.MethodGet}, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec := performRequest(r, http.MethodPost, "/", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for blocked method, got %d", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusTeapot, "tea") })

	rec := performRequest(r, http.MethodGet, "/", nil)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("logger must not change the response, got %d", rec.Code)
	}
}
