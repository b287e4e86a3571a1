// Command weatherbot runs the voice weather agent in a terminal UI.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/weatherbot-go/weatherbot/internal/config"
	"github.com/weatherbot-go/weatherbot/internal/dotenv"
	"github.com/weatherbot-go/weatherbot/internal/sim"
	"github.com/weatherbot-go/weatherbot/pkg/core/agent"
	"github.com/weatherbot-go/weatherbot/pkg/core/dialog"
	"github.com/weatherbot-go/weatherbot/pkg/core/forecast"
	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/network"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/capture"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/stt"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/tts"
)

func main() {
	var (
		mode    string
		envFile string
		debug   bool
	)

	root := &cobra.Command{
		Use:   "weatherbot",
		Short: "Ask about the weather with your voice",
		Long: `weatherbot listens to a spoken question, classifies it, resolves the
current forecast for your location, and speaks the answer back while
showing the conversation in the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dotenv.Load(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Mode = config.Mode(mode)
			}
			return run(cfg, debug)
		},
	}

	root.Flags().StringVar(&mode, "mode", "", "override WEATHERBOT_MODE (sim or live)")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file applied before reading the environment")
	root.Flags().BoolVar(&debug, "debug", false, "log to weatherbot.log")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, debug bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if debug {
		f, err := os.OpenFile("weatherbot.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	a, err := buildAgent(cfg, logger)
	if err != nil {
		return err
	}

	session := dialog.NewSession(a, logger)
	defer session.Close()

	program := tea.NewProgram(newModel(session), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func buildAgent(cfg config.Config, logger *slog.Logger) (*agent.Agent, error) {
	switch cfg.Mode {
	case config.ModeSim:
		return agent.New(agent.Config{
			Language:    cfg.Language,
			Capture:     &capture.ReaderCapture{R: sim.Audio()},
			Location:    &sim.Locator{Granted: cfg.LocationGranted},
			Recognizer:  &sim.Recognizer{Utterance: cfg.SimUtterance},
			Synthesizer: &sim.Synthesizer{},
			Weather:     newWeather(cfg),
			Network:     network.NewClient(&http.Client{Transport: &sim.Transport{}}),
			Units:       []nlu.DomainUnit{nlu.WeatherUnit{}},
			Logger:      logger,
		})

	case config.ModeLive:
		audio, err := openAudio(cfg.AudioPath)
		if err != nil {
			return nil, err
		}
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		locator := location.NewIPLocator(cfg.LocationGranted, httpClient)
		locator.BaseURL = cfg.GeoBaseURL
		locator.Restricted = cfg.LocationRestricted

		return agent.New(agent.Config{
			Language:    cfg.Language,
			Capture:     &capture.ReaderCapture{R: audio},
			Location:    locator,
			Recognizer:  stt.NewStreamWS(cfg.STTWSURL, cfg.STTAPIKey),
			Synthesizer: tts.NewStreamWS(cfg.TTSWSURL, cfg.TTSAPIKey),
			Weather:     newWeather(cfg),
			Network:     network.NewClient(httpClient),
			Units:       []nlu.DomainUnit{nlu.WeatherUnit{}},
			Logger:      logger,
		})

	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

func newWeather(cfg config.Config) *forecast.DarkSky {
	key := cfg.DarkSkyAPIKey
	if key == "" {
		key = "sim"
	}
	d := forecast.NewDarkSky(key)
	if cfg.DarkSkyBaseURL != "" {
		d.BaseURL = cfg.DarkSkyBaseURL
	}
	return d
}

func openAudio(path string) (*os.File, error) {
	if path == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio source: %w", err)
	}
	return f, nil
}
