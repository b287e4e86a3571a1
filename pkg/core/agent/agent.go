// Package agent orchestrates one conversational turn: listen, recognize,
// classify, resolve, speak.
package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/weatherbot-go/weatherbot/pkg/core/forecast"
	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/network"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/capture"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/stt"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/tts"
)

// Config wires an Agent's collaborators.
type Config struct {
	Language nlu.Language

	Capture    capture.Service
	Location   location.Service
	Recognizer stt.Recognizer
	// Synthesizer is optional. Without one, answers are delivered as a
	// single event covering the whole spoken text.
	Synthesizer tts.Synthesizer
	Weather     forecast.WeatherService
	Network     *network.Client

	// Units registered with the intent classifier, queried in order.
	Units []nlu.DomainUnit

	Logger *slog.Logger
}

// Agent answers spoken weather questions.
type Agent struct {
	language    nlu.Language
	capture     capture.Service
	location    location.Service
	recognizer  stt.Recognizer
	synthesizer tts.Synthesizer
	weather     forecast.WeatherService
	network     *network.Client
	classifier  *nlu.Classifier
	summarizer  forecast.Summarizer
	logger      *slog.Logger
}

// New creates an Agent from the given configuration.
func New(cfg Config) (*Agent, error) {
	if cfg.Capture == nil {
		return nil, fmt.Errorf("agent: capture service is required")
	}
	if cfg.Location == nil {
		return nil, fmt.Errorf("agent: location service is required")
	}
	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("agent: recognizer is required")
	}
	if cfg.Weather == nil {
		return nil, fmt.Errorf("agent: weather service is required")
	}
	lang := cfg.Language
	if lang == "" {
		lang = nlu.English
	}
	netClient := cfg.Network
	if netClient == nil {
		netClient = network.NewClient(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Agent{
		language:    lang,
		capture:     cfg.Capture,
		location:    cfg.Location,
		recognizer:  cfg.Recognizer,
		synthesizer: cfg.Synthesizer,
		weather:     cfg.Weather,
		network:     netClient,
		classifier:  nlu.NewClassifier(lang, cfg.Units...),
		summarizer:  forecast.Summarizer{Language: lang},
		logger:      logger,
	}, nil
}

// Language returns the language the agent listens and answers in.
func (a *Agent) Language() nlu.Language {
	return a.language
}

// Question starts a listening turn. Every transcript revision is emitted
// on the returned stream; it completes with the final revision when the
// audio source ends, and fails with a translated Failure otherwise.
//
// Authorization is requested fresh on every call: recognizer first, then
// audio. A refusal ends the turn before the refused capability is used.
func (a *Agent) Question(ctx context.Context) *QuestionStream {
	q := NewQuestionStream()
	go a.listen(ctx, q)
	return q
}

func (a *Agent) listen(ctx context.Context, q *QuestionStream) {
	if err := a.recognizer.RequestAuthorization(ctx); err != nil {
		q.Fail(Translate(err))
		return
	}
	if err := a.capture.RequestAuthorization(ctx); err != nil {
		q.Fail(Translate(err))
		return
	}

	speech, err := a.capture.Open(ctx)
	if err != nil {
		q.Fail(Translate(err))
		return
	}
	defer speech.Close()

	rec, err := a.recognizer.Recognize(ctx, speech, a.language)
	if err != nil {
		q.Fail(Translate(err))
		return
	}
	defer rec.Close()

	for text := range rec.Texts() {
		a.logger.Debug("transcript revision", "text", text)
		if !q.Push(text) {
			return
		}
	}
	if err := rec.Err(); err != nil {
		q.Fail(Translate(err))
		return
	}
	q.Finish()
}

// Resolve answers a classified intent. The unknown intent resolves to the
// fixed fallback answer without touching any collaborator.
func (a *Agent) Resolve(ctx context.Context, intent nlu.Intent) (Answer, error) {
	switch intent {
	case nlu.IntentCurrentForecast:
		return a.currentForecast(ctx)
	default:
		return Answer{Summary: a.summarizer.Unknown()}, nil
	}
}

func (a *Agent) currentForecast(ctx context.Context) (Answer, error) {
	if _, err := a.location.RequestAuthorization(ctx, location.LevelWhenInUse); err != nil {
		return Answer{}, Translate(err)
	}
	coord, err := a.location.SingleCoordinate(ctx)
	if err != nil {
		return Answer{}, Translate(err)
	}

	f, err := network.Load(ctx, a.network, a.weather.Current(coord, a.language))
	if err != nil {
		return Answer{}, Translate(err)
	}

	a.logger.Debug("forecast resolved", "icon", f.ID)
	return Answer{Icon: f.ID, Summary: a.summarizer.Forecast(f)}, nil
}

// SpokenAnswer answers the given question turn. It waits for the final
// transcript revision, classifies it, resolves the intent, and speaks
// the summary, emitting one event per spoken range. A question with no
// revisions at all finishes the stream without events.
func (a *Agent) SpokenAnswer(ctx context.Context, q *QuestionStream) *SpokenAnswerStream {
	s := NewSpokenAnswerStream()
	go a.speak(ctx, q, s)
	return s
}

func (a *Agent) speak(ctx context.Context, q *QuestionStream, s *SpokenAnswerStream) {
	text, ok, err := q.Wait(ctx)
	if err != nil {
		s.Fail(err)
		return
	}
	if !ok {
		s.Finish()
		return
	}

	intent := a.classifier.Identify(text)
	a.logger.Debug("question classified", "text", text, "intent", intent)

	answer, err := a.Resolve(ctx, intent)
	if err != nil {
		s.Fail(err)
		return
	}

	spoken := answer.Summary.SpokenText()
	if a.synthesizer == nil {
		s.Push(SpokenAnswer{
			Answer: answer,
			Range:  tts.SpokenRange{Start: 0, Length: len(spoken)},
		})
		s.Finish()
		return
	}

	utt, err := a.synthesizer.Speak(ctx, spoken, a.language)
	if err != nil {
		s.Fail(Translate(err))
		return
	}
	defer utt.Close()

	for r := range utt.Ranges() {
		if !s.Push(SpokenAnswer{Answer: answer, Range: r}) {
			return
		}
	}
	if err := utt.Err(); err != nil {
		s.Fail(Translate(err))
		return
	}
	s.Finish()
}
