package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) uierrors.Body {
	t.Helper()
	var b uierrors.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return b
}

func TestWrite_Kinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperr.New(apperr.NotFound, "group not found"), http.StatusNotFound, "group not found"},
		{"forbidden", apperr.New(apperr.Forbidden, "only the group leader can do that"), http.StatusForbidden, "only the group leader can do that"},
		{"invalid", apperr.New(apperr.InvalidArgument, "bad id"), http.StatusBadRequest, "bad id"},
	}
	el := uierrors.NewErrorLogger(zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			el.Write(rec, httptest.NewRequest("GET", "/", nil), "op", tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			b := decode(t, rec)
			if b.Error != tt.wantMsg || b.ErrorID != "" {
				t.Errorf("body = %+v", b)
			}
		})
	}
}

func TestWrite_InternalHidesCauseAndLogsID(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	cause := stderrors.New("connection refused to 10.0.0.3:27017")
	rec := httptest.NewRecorder()
	el.Write(rec, httptest.NewRequest("DELETE", "/groups/x", nil), "delete_group", apperr.Wrap(cause, apperr.Internal, "delete group"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Error("cause leaked to caller")
	}
	b := decode(t, rec)
	if b.ErrorID == "" {
		t.Fatal("expected an error id")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one log entry, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["error_id"]; got != b.ErrorID {
		t.Errorf("logged error_id %v, returned %v", got, b.ErrorID)
	}
}

func TestFallbacks(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
		want int
	}{
		{"not found", uierrors.NotFound, http.StatusNotFound},
		{"method", uierrors.MethodNotAllowed, http.StatusMethodNotAllowed},
		{"unauthorized", uierrors.Unauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.h(rec, httptest.NewRequest("GET", "/", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
