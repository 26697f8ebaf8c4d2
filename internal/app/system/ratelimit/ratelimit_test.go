package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowAndWindow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("first two hits must pass")
	}
	if l.Allow("k") {
		t.Fatal("third hit must be refused")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow("other") {
		t.Error("keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("k") {
		t.Error("new window must pass")
	}
	if got := l.Remaining("k"); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestNew_NonPositivePeriod(t *testing.T) {
	for _, p := range []time.Duration{0, -time.Second} {
		l := New(1, p)
		if l.period != DefaultPeriod {
			t.Errorf("New(1, %v).period = %v, want %v", p, l.period, DefaultPeriod)
		}
		// give the sweep goroutine time to start its ticker
		time.Sleep(20 * time.Millisecond)
		if !l.Allow("k") || l.Allow("k") {
			t.Errorf("New(1, %v) should allow exactly one hit", p)
		}
		l.Close()
	}

	pl := NewPasswordLimiterWithConfig(30, 0, 5, 0)
	defer pl.Close()
	time.Sleep(20 * time.Millisecond)
	if !pl.Check(httptest.NewRequest("POST", "/", nil), "g") {
		t.Error("first attempt must pass")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Hour)
	defer l.Close()

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected limit")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("expected pass after reset")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": " 10.0.0.1 , 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.1.1.1:80", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
		{"remote addr without port", nil, "192.168.1.5", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPasswordLimiter(t *testing.T) {
	pl := NewPasswordLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer pl.Close()

	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.1.1.1:1234"

	if !pl.Check(r, "g1") || !pl.Check(r, "g1") {
		t.Fatal("first two guesses must pass")
	}
	if pl.Check(r, "g1") {
		t.Fatal("third guess on the same group must be refused")
	}
	if !pl.Check(r, "g2") {
		t.Error("another group has its own budget")
	}

	pl.Succeeded(r, "g1")
	if !pl.Check(r, "g1") {
		t.Error("success must clear the group budget")
	}
}

func TestPasswordLimiter_ClientCap(t *testing.T) {
	pl := NewPasswordLimiterWithConfig(1, time.Minute, 10, time.Minute)
	defer pl.Close()

	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.1.1.1:1234"

	if !pl.Check(r, "g1") {
		t.Fatal("first guess must pass")
	}
	if pl.Check(r, "g2") {
		t.Error("client cap applies across groups")
	}
}
