package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"carscout/internal/util"
)

// RateLimiter stores rate limiters for each IP
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter whose idle visitors are swept until
// ctx is done.
func NewRateLimiter(ctx context.Context, r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	go rl.cleanupVisitors(ctx)

	return rl
}

// GetLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(limiter *RateLimiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)

		if !l.Allow() {
			log.Warn().Str("ip", ip).Str("path", c.Request.URL.Path).Msg("Rate limit exceeded")
			util.ErrorResponse(c, http.StatusTooManyRequests, util.KindRateLimited, "Please slow down your requests", nil)
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(release bool) gin.HandlerFunc {
	csp := buildCSPPolicy(release)

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Swagger UI ships inline scripts
		if !strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			c.Header("Content-Security-Policy", csp)
		}

		c.Header("Server", "")

		// Results and session state change with every action
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}

// SecurityScanDetection logs requests for paths a scanner would probe.
func SecurityScanDetection(log zerolog.Logger) gin.HandlerFunc {
	suspiciousPaths := []string{
		".env", ".git", ".DS_Store", "wp-admin", "phpmyadmin",
		".htaccess", "config.php", "wp-config.php", ".ssh", "id_rsa",
		".bak", ".sql", ".db", "credentials",
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, suspicious := range suspiciousPaths {
			if strings.Contains(path, suspicious) {
				log.Warn().
					Str("ip", c.ClientIP()).
					Str("method", c.Request.Method).
					Str("path", path).
					Msg("Security scan attempt")
				break
			}
		}

		c.Next()
	}
}

// HTTPMethodFilter restricts allowed HTTP methods
func HTTPMethodFilter(allowedMethods []string, log zerolog.Logger) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, method := range allowedMethods {
		allowed[method] = true
	}

	return func(c *gin.Context) {
		if !allowed[c.Request.Method] {
			log.Warn().Str("ip", c.ClientIP()).Str("method", c.Request.Method).Msg("Blocked HTTP method")
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
				"success": false,
				"error":   "Method not allowed",
			})
			return
		}
		c.Next()
	}
}

// buildCSPPolicy returns the Content-Security-Policy for the bundled UI.
// Development mode relaxes it for live reloading tools.
func buildCSPPolicy(release bool) string {
	if !release {
		return "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' 'unsafe-eval'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self';"
	}

	return "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self'; " +
		"img-src 'self' data:; " +
		"connect-src 'self'; " +
		"font-src 'self'; " +
		"object-src 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'; " +
		"frame-ancestors 'none';"
}
