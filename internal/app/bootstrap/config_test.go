package bootstrap

import (
	"strings"
	"testing"
	"time"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "sharediary",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		InvitePolicy:     "open",
		BcryptCost:       10,
		SaveRetries:      5,
		VerifyLimit:      5,
		VerifyWindow:     5 * time.Minute,
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"members policy", func(c *AppConfig) { c.InvitePolicy = "Members" }, ""},
		{"empty policy means open", func(c *AppConfig) { c.InvitePolicy = "" }, ""},
		{"default cost", func(c *AppConfig) { c.BcryptCost = 0 }, ""},
		{"bad uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "MongoDB URI"},
		{"no database", func(c *AppConfig) { c.MongoDatabase = " " }, "mongo_database"},
		{"bad policy", func(c *AppConfig) { c.InvitePolicy = "leaders" }, "invite policy"},
		{"cost too low", func(c *AppConfig) { c.BcryptCost = 2 }, "bcrypt_cost"},
		{"cost too high", func(c *AppConfig) { c.BcryptCost = 40 }, "bcrypt_cost"},
		{"audit off", func(c *AppConfig) { c.AuditLog = "off" }, ""},
		{"bad audit mode", func(c *AppConfig) { c.AuditLog = "verbose" }, "audit log mode"},
		{"zero verify window", func(c *AppConfig) { c.VerifyWindow = 0 }, "verify_window"},
		{"throttle off ignores window", func(c *AppConfig) { c.VerifyLimit, c.VerifyWindow = 0, 0 }, ""},
		{"negative retries", func(c *AppConfig) { c.SaveRetries = -1 }, "save_retries"},
		{"pool sizes inverted", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, "mongo_min_pool_size"},
		{"bad seed list", func(c *AppConfig) { c.SeedUsers = "Ann <not an address" }, "seed_users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseSeedUsers(t *testing.T) {
	addrs, err := parseSeedUsers("Ann Lee <ann@example.com>, bob@example.com")
	if err != nil {
		t.Fatalf("parseSeedUsers: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("got %d addresses, want 2", len(addrs))
	}
	if addrs[0].Name != "Ann Lee" || addrs[0].Address != "ann@example.com" {
		t.Errorf("first = %+v", addrs[0])
	}
	if addrs[1].Name != "bob" {
		t.Errorf("second name = %q, want local part", addrs[1].Name)
	}

	none, err := parseSeedUsers("  ")
	if err != nil || none != nil {
		t.Errorf("blank list = %v, %v", none, err)
	}
}
