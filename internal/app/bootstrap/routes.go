// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"

	errorsfeature "github.com/dalemusser/sharediary/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/sharediary/internal/app/features/groups"
	healthfeature "github.com/dalemusser/sharediary/internal/app/features/health"
	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	"github.com/dalemusser/sharediary/internal/app/registry"
	auditstore "github.com/dalemusser/sharediary/internal/app/store/audit"
	diarystore "github.com/dalemusser/sharediary/internal/app/store/diaries"
	groupstore "github.com/dalemusser/sharediary/internal/app/store/groups"
	metricsstore "github.com/dalemusser/sharediary/internal/app/store/metrics"
	userstore "github.com/dalemusser/sharediary/internal/app/store/users"
	"github.com/dalemusser/sharediary/internal/app/system/auditlog"
	"github.com/dalemusser/sharediary/internal/app/system/auth"
	"github.com/dalemusser/sharediary/internal/app/system/metrics"
	"github.com/dalemusser/sharediary/internal/app/system/passhash"
	"github.com/dalemusser/sharediary/internal/app/system/ratelimit"
	"github.com/dalemusser/sharediary/internal/app/system/timeouts"
	"github.com/dalemusser/sharediary/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	closersMu sync.Mutex
	closers   []func()
)

func onShutdown(fn func()) {
	closersMu.Lock()
	closers = append(closers, fn)
	closersMu.Unlock()
}

func stopBackground() {
	closersMu.Lock()
	defer closersMu.Unlock()
	for _, fn := range closers {
		fn()
	}
	closers = nil
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It builds the stores and the group registry,
// applies session middleware and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	reg, m, err := buildRegistry(appCfg, deps, prometheus.NewRegistry(), logger)
	if err != nil {
		return nil, err
	}

	var limiter *ratelimit.PasswordLimiter
	if appCfg.VerifyLimit > 0 {
		limiter = ratelimit.NewPasswordLimiterWithConfig(6*appCfg.VerifyLimit, appCfg.VerifyWindow, appCfg.VerifyLimit, appCfg.VerifyWindow)
		onShutdown(limiter.Close)
	}

	auditMode, err := auditlog.ParseMode(appCfg.AuditLog)
	if err != nil {
		return nil, err
	}
	audit := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditMode)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health and metrics sit outside the session middleware.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", m.Handler(func(req *http.Request) {
		refreshDocumentGauges(req, m, deps, logger)
	}))

	r.Group(func(ar chi.Router) {
		// Global auth middleware: loads SessionUser into context if logged in.
		ar.Use(sessionMgr.LoadSessionUser)

		groupsHandler := groupsfeature.NewHandler(reg, limiter, audit, logger)
		ar.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))
	})

	return r, nil
}

// buildRegistry wires the Mongo stores, hasher and transaction runner
// into a group registry that reports to a fresh metrics set.
func buildRegistry(appCfg AppConfig, deps DBDeps, promReg *prometheus.Registry, logger *zap.Logger) (*registry.Registry, *metrics.Metrics, error) {
	policy, err := grouppolicy.ParseInvitePolicy(appCfg.InvitePolicy)
	if err != nil {
		return nil, nil, err
	}
	hasher, err := passhash.New(appCfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}
	m := metrics.New(promReg)

	reg := registry.New(registry.Deps{
		Groups:   groupstore.New(deps.MongoDatabase),
		Users:    userstore.New(deps.MongoDatabase),
		Hasher:   hasher,
		Diaries:  diarystore.New(deps.MongoDatabase),
		Tx:       txn.New(deps.MongoClient, logger),
		Observer: m,
		Log:      logger,
	}, registry.Config{
		InvitePolicy: policy,
		SaveRetries:  appCfg.SaveRetries,
	})
	return reg, m, nil
}

func refreshDocumentGauges(req *http.Request, m *metrics.Metrics, deps DBDeps, logger *zap.Logger) {
	ctx, cancel := timeouts.WithTimeout(req.Context(), timeouts.Read(), logger, "metrics counts")
	defer cancel()

	c := metricsstore.FetchCounts(ctx, deps.MongoDatabase)
	m.SetDocuments("groups", c.Groups)
	m.SetDocuments("users", c.Users)
	m.SetDocuments("diary_entries", c.DiaryEntries)
	m.SetDocuments("invitations", c.PendingInvitations)
}
