package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// CORSMiddleware handles CORS for the web frontend. Allowed origins may end
// in a single * wildcard, e.g. https://verdeai-*
func CORSMiddleware(allowedOrigins []string) (gin.HandlerFunc, error) {
	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowWildcard:    true,
		AllowMethods:     []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	if len(allowedOrigins) == 0 {
		// no browser origin may call the API
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}

	for _, origin := range allowedOrigins {
		if strings.Count(origin, "*") > 1 {
			return nil, fmt.Errorf("invalid CORS origin %q: at most one wildcard", origin)
		}
	}
	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS config: %w", err)
	}

	return cors.New(corsConfig), nil
}

// RequestIDMiddleware reuses the caller's X-Request-ID or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// LoggerMiddleware logs one line per request with timing.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestID(c)),
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestID(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	})
}

// BodyLimitMiddleware caps the request body at maxBytes.
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// limiterIdleTTL is how long a client IP may stay quiet before its limiter
// is dropped. A returning client starts again with a full bucket.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewIPRateLimiter allows perMinute requests per client IP, with bursts of
// up to a sixth of that.
func NewIPRateLimiter(perMinute int, log *zap.Logger) *IPRateLimiter {
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
		rate:      rate.Limit(float64(perMinute) / 60.0),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		now:       time.Now,
		log:       log,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= i.idleTTL {
		i.sweep(now)
	}

	v, ok := i.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops idle visitors. Callers hold i.mu.
func (i *IPRateLimiter) sweep(now time.Time) {
	for ip, v := range i.visitors {
		if now.Sub(v.lastSeen) >= i.idleTTL {
			delete(i.visitors, ip)
		}
	}
	i.lastSweep = now
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !i.getLimiter(ip).Allow() {
			if i.log != nil {
				i.log.Warn("rate limit exceeded", zap.String("client_ip", ip), zap.String("path", c.Request.URL.Path))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
