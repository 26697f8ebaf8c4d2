// Package timeouts holds the deadlines handlers put on database work.
//
// Values start at the defaults below and are replaced once at startup by
// Configure with whatever the app config overrides.
//   - Ping: health checks
//   - Read: single-group reads and list queries
//   - Write: one group mutation, including its retries
//   - Cascade: deleting a group together with its diary entries
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing    = 2 * time.Second
	DefaultRead    = 5 * time.Second
	DefaultWrite   = 10 * time.Second
	DefaultCascade = 30 * time.Second
)

// Config holds timeout overrides. Zero fields keep the current value.
type Config struct {
	Ping    time.Duration
	Read    time.Duration
	Write   time.Duration
	Cascade time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Read: DefaultRead, Write: DefaultWrite, Cascade: DefaultCascade}
}

func Ping() time.Duration    { return Current().Ping }
func Read() time.Duration    { return Current().Read }
func Write() time.Duration   { return Current().Write }
func Cascade() time.Duration { return Current().Cascade }

// Current returns the values in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure applies the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		cur.Ping = cfg.Ping
	}
	if cfg.Read > 0 {
		cur.Read = cfg.Read
	}
	if cfg.Write > 0 {
		cur.Write = cfg.Write
	}
	if cfg.Cascade > 0 {
		cur.Cascade = cfg.Cascade
	}
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	cur = defaults()
	mu.Unlock()
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Cascade(), h.Log, "delete group")
//	defer cancel()
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", d),
			)
		}
		cancel()
	}
}
