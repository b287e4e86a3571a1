package config

import (
	"testing"
	"time"

	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Mode != ModeSim {
		t.Fatalf("mode = %q, want sim by default", cfg.Mode)
	}
	if cfg.Language != nlu.English {
		t.Fatalf("language = %q, want %q", cfg.Language, nlu.English)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.HTTPTimeout)
	}
	// The lookup endpoint itself, not the service root.
	if cfg.GeoBaseURL != "http://ip-api.com/json" {
		t.Fatalf("geo base URL = %q, want the /json lookup endpoint", cfg.GeoBaseURL)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("WEATHERBOT_MODE", "live")
	t.Setenv("WEATHERBOT_DARKSKY_API_KEY", "dark-key")
	t.Setenv("WEATHERBOT_STT_API_KEY", "stt-key")
	t.Setenv("WEATHERBOT_HTTP_TIMEOUT", "3s")
	t.Setenv("WEATHERBOT_LOCATION_RESTRICTED", "yes")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Mode != ModeLive {
		t.Fatalf("mode = %q, want live", cfg.Mode)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("timeout = %v, want 3s", cfg.HTTPTimeout)
	}
	if !cfg.LocationRestricted {
		t.Fatal("location restriction flag was not read")
	}
}

func TestLoadFromEnvLiveRequiresKeys(t *testing.T) {
	t.Setenv("WEATHERBOT_MODE", "live")
	t.Setenv("WEATHERBOT_DARKSKY_API_KEY", "")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() succeeded without the forecast API key in live mode")
	}
}

func TestLoadFromEnvRejectsUnknownMode(t *testing.T) {
	t.Setenv("WEATHERBOT_MODE", "replay")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() accepted an unknown mode")
	}
}
