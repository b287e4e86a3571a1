package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

// Mode selects where the agent's collaborators come from.
type Mode string

const (
	// ModeSim runs entirely on scripted providers; no network needed.
	ModeSim Mode = "sim"
	// ModeLive talks to real recognition, synthesis, geolocation and
	// forecast endpoints.
	ModeLive Mode = "live"
)

type Config struct {
	Mode     Mode
	Language nlu.Language

	// Forecast backend.
	DarkSkyAPIKey  string
	DarkSkyBaseURL string

	// Geo-IP location backend.
	GeoBaseURL string
	// LocationGranted is the authorization level the locator reports.
	LocationGranted location.Level
	// LocationRestricted forces the restricted authorization outcome.
	LocationRestricted bool

	// Speech backends.
	STTWSURL  string
	STTAPIKey string
	TTSWSURL  string
	TTSAPIKey string

	// AudioPath is a raw PCM file fed to the reader capture in live mode;
	// empty means stdin.
	AudioPath string

	// SimUtterance is the question the scripted recognizer hears.
	SimUtterance string

	HTTPTimeout time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Mode:               Mode(envOr("WEATHERBOT_MODE", string(ModeSim))),
		Language:           nlu.Language(envOr("WEATHERBOT_LANGUAGE", string(nlu.English))),
		DarkSkyAPIKey:      envOr("WEATHERBOT_DARKSKY_API_KEY", ""),
		DarkSkyBaseURL:     envOr("WEATHERBOT_DARKSKY_BASE_URL", "https://api.darksky.net"),
		GeoBaseURL:         envOr("WEATHERBOT_GEO_BASE_URL", "http://ip-api.com/json"),
		LocationGranted:    location.Level(envOr("WEATHERBOT_LOCATION_GRANTED", string(location.LevelWhenInUse))),
		LocationRestricted: envBoolOr("WEATHERBOT_LOCATION_RESTRICTED", false),
		STTWSURL:           envOr("WEATHERBOT_STT_WS_URL", "wss://api.cartesia.ai/stt/websocket"),
		STTAPIKey:          envOr("WEATHERBOT_STT_API_KEY", ""),
		TTSWSURL:           envOr("WEATHERBOT_TTS_WS_URL", "wss://api.cartesia.ai/tts/websocket"),
		TTSAPIKey:          envOr("WEATHERBOT_TTS_API_KEY", ""),
		AudioPath:          envOr("WEATHERBOT_AUDIO_PATH", ""),
		SimUtterance:       envOr("WEATHERBOT_SIM_UTTERANCE", "what is the weather like today"),
		HTTPTimeout:        envDurationOr("WEATHERBOT_HTTP_TIMEOUT", 10*time.Second),
	}

	switch cfg.Mode {
	case ModeSim, ModeLive:
	default:
		return Config{}, fmt.Errorf("WEATHERBOT_MODE must be %q or %q, got %q", ModeSim, ModeLive, cfg.Mode)
	}
	if cfg.Mode == ModeLive {
		if cfg.DarkSkyAPIKey == "" {
			return Config{}, fmt.Errorf("WEATHERBOT_DARKSKY_API_KEY must be set when WEATHERBOT_MODE=live")
		}
		if cfg.STTAPIKey == "" {
			return Config{}, fmt.Errorf("WEATHERBOT_STT_API_KEY must be set when WEATHERBOT_MODE=live")
		}
	}
	switch cfg.LocationGranted {
	case location.LevelWhenInUse, location.LevelAlways, "":
	default:
		return Config{}, fmt.Errorf("WEATHERBOT_LOCATION_GRANTED must be %q or %q, got %q",
			location.LevelWhenInUse, location.LevelAlways, cfg.LocationGranted)
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
