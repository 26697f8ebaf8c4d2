// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dalemusser/sharediary/internal/app/policy/grouppolicy"
	"github.com/dalemusser/sharediary/internal/app/system/auditlog"
	"github.com/dalemusser/sharediary/internal/app/system/passhash"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// appConfigKeys defines the configuration keys for sharediary.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, invite_policy, etc.
//   - Environment variables: SHAREDIARY_MONGO_URI, SHAREDIARY_INVITE_POLICY, etc.
//   - Command-line flags: --mongo_uri, --invite_policy, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sharediary", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "sharediary-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Group registry
	{Name: "invite_policy", Default: "open", Desc: "Who may invite: 'open' (anyone) or 'members'"},
	{Name: "bcrypt_cost", Default: passhash.DefaultCost, Desc: "bcrypt cost for group passwords"},
	{Name: "save_retries", Default: 5, Desc: "Attempts per group mutation when writes race"},

	// Password guessing limits
	{Name: "verify_limit", Default: 5, Desc: "Password attempts per group per client within verify_window"},
	{Name: "verify_window", Default: "5m", Desc: "Window for verify_limit (e.g., 5m, 1h)"},

	{Name: "audit_log", Default: "all", Desc: "Membership audit events: 'all' (MongoDB + log), 'db', 'log', or 'off'"},

	// Handler deadlines
	{Name: "timeout_ping", Default: "", Desc: "Health check deadline (e.g., 2s)"},
	{Name: "timeout_read", Default: "", Desc: "Read deadline (e.g., 5s)"},
	{Name: "timeout_write", Default: "", Desc: "Single mutation deadline (e.g., 10s)"},
	{Name: "timeout_cascade", Default: "", Desc: "Group delete deadline (e.g., 30s)"},

	{Name: "seed_users", Default: "", Desc: "Users to create at startup, e.g. 'Ann <ann@example.com>, bob@example.com'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, SHAREDIARY_* for app) and
// flags, with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SHAREDIARY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		InvitePolicy: appValues.String("invite_policy"),
		BcryptCost:   appValues.Int("bcrypt_cost"),
		SaveRetries:  appValues.Int("save_retries"),

		VerifyLimit:  appValues.Int("verify_limit"),
		VerifyWindow: appValues.Duration("verify_window", 5*time.Minute),

		AuditLog: appValues.String("audit_log"),

		TimeoutPing:    appValues.Duration("timeout_ping", 0),
		TimeoutRead:    appValues.Duration("timeout_read", 0),
		TimeoutWrite:   appValues.Duration("timeout_write", 0),
		TimeoutCascade: appValues.Duration("timeout_cascade", 0),

		SeedUsers: appValues.String("seed_users"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAppConfig(appCfg); err != nil {
		logger.Error("invalid app config", zap.Error(err))
		return err
	}
	return nil
}

func validateAppConfig(appCfg AppConfig) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if _, err := grouppolicy.ParseInvitePolicy(appCfg.InvitePolicy); err != nil {
		return err
	}
	if appCfg.BcryptCost != 0 && (appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, appCfg.BcryptCost)
	}
	if _, err := auditlog.ParseMode(appCfg.AuditLog); err != nil {
		return err
	}
	if appCfg.SaveRetries < 0 {
		return fmt.Errorf("save_retries must not be negative")
	}
	if appCfg.VerifyLimit < 0 || appCfg.VerifyWindow < 0 {
		return fmt.Errorf("verify_limit and verify_window must not be negative")
	}
	if appCfg.VerifyLimit > 0 && appCfg.VerifyWindow <= 0 {
		return fmt.Errorf("verify_window must be positive when verify_limit is set")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize && appCfg.MongoMaxPoolSize != 0 {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)", appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if _, err := parseSeedUsers(appCfg.SeedUsers); err != nil {
		return err
	}
	return nil
}

// parseSeedUsers reads an address list. An address without a display name
// uses the part before '@' as the name.
func parseSeedUsers(s string) ([]*mail.Address, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	addrs, err := mail.ParseAddressList(s)
	if err != nil {
		return nil, fmt.Errorf("seed_users: %w", err)
	}
	for _, a := range addrs {
		if a.Name == "" {
			a.Name, _, _ = strings.Cut(a.Address, "@")
		}
	}
	return addrs, nil
}
