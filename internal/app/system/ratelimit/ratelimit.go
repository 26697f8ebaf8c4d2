// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// DefaultPeriod replaces a non-positive period passed to New.
const DefaultPeriod = time.Minute

// New allows limit hits per key every period. Call Close to stop the
// background sweep.
func New(limit int, period time.Duration) *Limiter {
	if period <= 0 {
		period = DefaultPeriod
	}
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep(period * 2)
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}

// Close stops the sweep goroutine.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.mu.Lock()
			now := l.now()
			for k, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP returns the caller's address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// PasswordLimiter throttles group password guesses. It limits each client
// address overall and each (group, address) pair more tightly.
type PasswordLimiter struct {
	perClient *Limiter
	perGroup  *Limiter
}

// NewPasswordLimiter uses 30 attempts per client per minute and 5 attempts
// per group per client every 5 minutes.
func NewPasswordLimiter() *PasswordLimiter {
	return NewPasswordLimiterWithConfig(30, time.Minute, 5, 5*time.Minute)
}

func NewPasswordLimiterWithConfig(clientLimit int, clientPeriod time.Duration, groupLimit int, groupPeriod time.Duration) *PasswordLimiter {
	return &PasswordLimiter{
		perClient: New(clientLimit, clientPeriod),
		perGroup:  New(groupLimit, groupPeriod),
	}
}

// Check records an attempt on groupID and reports whether it may proceed.
func (pl *PasswordLimiter) Check(r *http.Request, groupID string) bool {
	ip := ClientIP(r)
	if !pl.perClient.Allow(ip) {
		return false
	}
	return pl.perGroup.Allow(groupID + "|" + ip)
}

// Succeeded clears the per-group counter after a correct password.
func (pl *PasswordLimiter) Succeeded(r *http.Request, groupID string) {
	pl.perGroup.Reset(groupID + "|" + ClientIP(r))
}

func (pl *PasswordLimiter) Close() {
	pl.perClient.Close()
	pl.perGroup.Close()
}
