package tts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

const (
	defaultTTSModel = "sonic-2"
	defaultTTSVoice = "default"
)

// StreamWS is a Synthesizer backed by a websocket synthesis service
// speaking a Cartesia-compatible protocol: a JSON request up, JSON word
// timestamp events down. Audio chunks in the reply are ignored; only
// the spoken ranges are surfaced.
type StreamWS struct {
	URL    string
	APIKey string
	Model  string
	Voice  string

	Dialer *websocket.Dialer
}

// NewStreamWS creates a websocket synthesizer for the given endpoint.
func NewStreamWS(wsURL, apiKey string) *StreamWS {
	return &StreamWS{
		URL:    wsURL,
		APIKey: apiKey,
	}
}

// Speak implements Synthesizer.
func (s *StreamWS) Speak(ctx context.Context, text string, lang nlu.Language) (*Utterance, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("tts: parse websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("api_key", s.APIKey)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("X-API-Key", s.APIKey)

	dialer := s.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d", ErrSynthesizerUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrSynthesizerUnavailable, err)
	}

	model := s.Model
	if model == "" {
		model = defaultTTSModel
	}
	voice := s.Voice
	if voice == "" {
		voice = defaultTTSVoice
	}
	locale := lang.Locale()
	req := wsSpeakRequest{
		ModelID:       model,
		Transcript:    text,
		Voice:         wsVoiceSpec{Mode: "id", ID: voice},
		Language:      &locale,
		ContextID:     generateContextID(),
		AddTimestamps: true,
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tts: send request: %w", err)
	}

	utt := NewUtterance()
	go readRanges(ctx, conn, utt, text)
	return utt, nil
}

// readRanges turns word timestamp events into character ranges of the
// original transcript.
func readRanges(ctx context.Context, conn *websocket.Conn, utt *Utterance, transcript string) {
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			utt.Fail(ctx.Err())
			conn.Close()
		case <-utt.Done():
			conn.Close()
		}
	}()

	cursor := 0
	for {
		var msg wsSpeakResponse
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				utt.Finish()
				return
			}
			select {
			case <-utt.Done():
			default:
				utt.Fail(&SynthesisError{Err: err})
			}
			return
		}

		switch msg.Type {
		case "timestamps":
			for _, word := range msg.WordTimestamps.Words {
				r, next, ok := rangeOfWord(transcript, word, cursor)
				if !ok {
					continue
				}
				cursor = next
				if !utt.Push(r) {
					return
				}
			}
		case "chunk":
			// Audio payload; playback is handled elsewhere.
			continue
		case "done":
			utt.Finish()
			return
		case "error":
			utt.Fail(&SynthesisError{Err: fmt.Errorf("%s", msg.Error)})
			return
		}
	}
}

// rangeOfWord locates word in transcript at or after cursor.
func rangeOfWord(transcript, word string, cursor int) (SpokenRange, int, bool) {
	if word == "" || cursor >= len(transcript) {
		return SpokenRange{}, cursor, false
	}
	idx := strings.Index(transcript[cursor:], word)
	if idx < 0 {
		return SpokenRange{}, cursor, false
	}
	start := cursor + idx
	return SpokenRange{Start: start, Length: len(word)}, start + len(word), true
}

type wsSpeakRequest struct {
	ModelID       string      `json:"model_id"`
	Transcript    string      `json:"transcript"`
	Voice         wsVoiceSpec `json:"voice"`
	Language      *string     `json:"language,omitempty"`
	ContextID     string      `json:"context_id,omitempty"`
	AddTimestamps bool        `json:"add_timestamps"`
}

type wsVoiceSpec struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type wsSpeakResponse struct {
	Type           string `json:"type"` // "chunk", "timestamps", "done", "error"
	Data           string `json:"data,omitempty"`
	Error          string `json:"error,omitempty"`
	WordTimestamps struct {
		Words []string  `json:"words"`
		Start []float64 `json:"start"`
		End   []float64 `json:"end"`
	} `json:"word_timestamps"`
}

var contextCounter atomic.Uint64

func generateContextID() string {
	return fmt.Sprintf("ctx_%d", contextCounter.Add(1))
}
