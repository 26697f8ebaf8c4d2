// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, CORS and request limits.
// Everything here is specific to sharediary and is passed to most
// lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: sharediary-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Group registry behavior
	InvitePolicy string // "open" or "members"
	BcryptCost   int    // cost for group password hashes
	SaveRetries  int    // attempts per mutation under concurrent writes

	// Group password guessing limits, per client address
	VerifyLimit  int
	VerifyWindow time.Duration

	// Membership audit trail destination: "all", "db", "log" or "off"
	AuditLog string

	// Handler deadlines (zero keeps the built-in default)
	TimeoutPing    time.Duration
	TimeoutRead    time.Duration
	TimeoutWrite   time.Duration
	TimeoutCascade time.Duration

	// Users created at startup if missing, as an RFC 5322 address list
	// ("Ann Lee <ann@example.com>, bob@example.com").
	SeedUsers string
}
