package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sharediary/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, _, ok := UserCtx(req); ok {
		t.Error("expected ok=false without a user")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := auth.WithUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "not-hex", Name: "Ann"})
	name, id, ok := UserCtx(req)
	if ok || name != "" || id != primitive.NilObjectID {
		t.Errorf("malformed id must fail closed, got %q %v %v", name, id, ok)
	}
}

func TestActorID(t *testing.T) {
	oid := primitive.NewObjectID()
	req := auth.WithUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: oid.Hex(), Name: "Ann"})
	got, ok := ActorID(req)
	if !ok || got != oid {
		t.Errorf("ActorID = %v, %v; want %v, true", got, ok, oid)
	}
}
