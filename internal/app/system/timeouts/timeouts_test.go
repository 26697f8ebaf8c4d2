package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_KeepsZeroFields(t *testing.T) {
	defer Reset()

	Configure(Config{Write: 42 * time.Second})

	if Write() != 42*time.Second {
		t.Errorf("Write = %v", Write())
	}
	if Read() != DefaultRead || Ping() != DefaultPing || Cascade() != DefaultCascade {
		t.Errorf("other values changed: %+v", Current())
	}

	Reset()
	if Current() != defaults() {
		t.Errorf("Reset left %+v", Current())
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["operation"]; got != "slow op" {
		t.Errorf("operation field = %v", got)
	}
}

func TestWithTimeout_QuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "fast op")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
