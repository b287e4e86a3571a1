// Package sim provides scripted collaborators so the full pipeline can
// run without microphones, speech services, or network access.
package sim

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/capture"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/stt"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/tts"
)

const defaultStep = 150 * time.Millisecond

// Recognizer hears a fixed utterance. It emits cumulative transcript
// revisions, one more word per step, pacing like live recognition.
type Recognizer struct {
	Utterance string
	Step      time.Duration
}

func (r *Recognizer) RequestAuthorization(ctx context.Context) error {
	return ctx.Err()
}

func (r *Recognizer) Recognize(ctx context.Context, speech *capture.Stream, lang nlu.Language) (*stt.Recognition, error) {
	step := r.Step
	if step <= 0 {
		step = defaultStep
	}
	rec := stt.NewRecognition()
	go func() {
		// Drain the audio; the script does not depend on its content.
		go func() {
			for range speech.Frames() {
			}
		}()

		words := strings.Fields(r.Utterance)
		ticker := time.NewTicker(step)
		defer ticker.Stop()
		for i := range words {
			select {
			case <-ctx.Done():
				rec.Fail(ctx.Err())
				return
			case <-rec.Done():
				return
			case <-ticker.C:
			}
			if !rec.Push(strings.Join(words[:i+1], " ")) {
				return
			}
		}
		rec.Finish()
	}()
	return rec, nil
}

// Synthesizer speaks by emitting one word range per step.
type Synthesizer struct {
	Step time.Duration
}

func (s *Synthesizer) Speak(ctx context.Context, text string, lang nlu.Language) (*tts.Utterance, error) {
	step := s.Step
	if step <= 0 {
		step = defaultStep
	}
	utt := tts.NewUtterance()
	go func() {
		ticker := time.NewTicker(step)
		defer ticker.Stop()
		cursor := 0
		for _, word := range strings.Fields(text) {
			select {
			case <-ctx.Done():
				utt.Fail(ctx.Err())
				return
			case <-utt.Done():
				return
			case <-ticker.C:
			}
			start := cursor + strings.Index(text[cursor:], word)
			if !utt.Push(tts.SpokenRange{Start: start, Length: len(word)}) {
				return
			}
			cursor = start + len(word)
		}
		utt.Finish()
	}()
	return utt, nil
}

// Locator reports a fixed coordinate with a pre-granted level.
type Locator struct {
	Granted    location.Level
	Coordinate location.Coordinate
}

func (l *Locator) RequestAuthorization(ctx context.Context, desired location.Level) (location.Level, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	granted := l.Granted
	if granted == "" {
		granted = location.LevelWhenInUse
	}
	return granted, nil
}

func (l *Locator) SingleCoordinate(ctx context.Context) (location.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return location.Coordinate{}, err
	}
	return l.Coordinate, nil
}

// Transport answers every HTTP request with a canned point forecast, so
// the real forecast provider and decoder run against it unchanged.
type Transport struct {
	Body string
}

const defaultForecastBody = `{
	"currently": {
		"icon": "partly-cloudy-day",
		"summary": "Partly Cloudy",
		"temperature": 17.8,
		"apparentTemperature": 16.2,
		"pressure": 1014.3,
		"windSpeed": 4.1,
		"windBearing": 210,
		"precipType": "rain",
		"precipIntensity": 0.4,
		"precipProbability": 0.45
	},
	"daily": {
		"data": [{
			"temperatureMin": 11.5,
			"temperatureMax": 21.3
		}]
	}
}`

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := t.Body
	if body == "" {
		body = defaultForecastBody
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

// Audio returns an endless stream of silence for the reader capture.
func Audio() io.Reader {
	return silence{}
}

type silence struct{}

func (silence) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
