package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks requests of one client IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// Limiter is a per-IP fixed-window counter.
type Limiter struct {
	name    string
	limit   int
	window  time.Duration
	mensaje string
	entries map[string]*windowEntry
	mu      sync.Mutex
	now     func() time.Time
}

func NewLimiter(name string, limit int, window time.Duration, mensaje string) *Limiter {
	return &Limiter{
		name:    name,
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow counts one request for key and reports whether it is within limit,
// plus the end of the current window.
func (l *Limiter) Allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Handler rejects over-limit clients with 429 and a Retry-After in seconds.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.Allow(c.ClientIP())
		if !ok {
			secs := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

func (l *Limiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

// NewLoginLimiter allows 20 login attempts per minute per IP.
func NewLoginLimiter() *Limiter {
	return NewLimiter("login", 20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// NewAPILimiter is the general-purpose limiter for the whole API.
func NewAPILimiter(limit int, window time.Duration) *Limiter {
	return NewLimiter("api", limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}

const purgeInterval = 5 * time.Minute

// StartPurge periodically drops expired entries from the given limiters so
// IPs that never return do not accumulate. It stops with ctx.
func StartPurge(ctx context.Context, limiters ...*Limiter) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, l := range limiters {
					if n := l.purge(); n > 0 {
						log.Debug().Str("limiter", l.name).Int("entries_purged", n).Msg("rate limiter purged")
					}
				}
			}
		}
	}()
}
