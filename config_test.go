package authclient

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty anonymous entry", func(c *Config) { c.Routes.AnonymousEntry = "" }},
		{"empty authenticated entry", func(c *Config) { c.Routes.AuthenticatedEntry = "" }},
		{"identical entries", func(c *Config) { c.Routes.AuthenticatedEntry = c.Routes.AnonymousEntry }},
		{"zero timeout", func(c *Config) { c.Network.Timeout = 0 }},
		{"negative timeout", func(c *Config) { c.Network.Timeout = -time.Second }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestBuildClonesConfig(t *testing.T) {
	cfg := DefaultConfig()
	b := New().WithConfig(cfg).WithBackend(newMockBackend())

	cfg.Routes.AnonymousEntry = "/mutated"

	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()

	if c.config.Routes.AnonymousEntry != "/" {
		t.Fatalf("builder must not observe later mutations, got %q", c.config.Routes.AnonymousEntry)
	}
}
