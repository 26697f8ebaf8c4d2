package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/sharediary/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestBuildRegistry_RejectsBadPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.InvitePolicy = "everyone"
	if _, _, err := buildRegistry(cfg, DBDeps{}, prometheus.NewRegistry(), zap.NewNop()); err == nil {
		t.Error("expected error for unknown invite policy")
	}
}

// End to end through Mongo: the registry built for the router creates a
// group and the document gauges see it.
func TestBuildRegistry_Wiring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	reg, m, err := buildRegistry(validConfig(), deps, prometheus.NewRegistry(), zap.NewNop())
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	lee := fixtures.CreateUser(ctx, "Lee", "lee@example.com")
	fixtures.CreateUser(ctx, "Ann", "ann@example.com")

	gid, err := reg.CreateGroup(ctx, lee.ID, "Trip", "pw")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := reg.Invite(ctx, lee.ID, gid, []string{"ann@example.com"}); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if err := reg.VerifyPassword(ctx, gid, "pw"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if _, err := reg.DeleteGroup(context.Background(), primitive.NewObjectID(), gid); err == nil {
		t.Error("stranger must not delete the group")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler(func(r *http.Request) { refreshDocumentGauges(r, m, deps, zap.NewNop()) }).ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`sharediary_documents{kind="groups"} 1`,
		`sharediary_documents{kind="invitations"} 1`,
		`sharediary_group_operations_total{op="create_group",outcome="ok"} 1`,
		`sharediary_group_operations_total{op="delete_group",outcome="forbidden"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
