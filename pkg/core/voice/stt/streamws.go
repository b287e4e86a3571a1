package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/capture"
)

const (
	defaultSTTModel      = "ink-whisper"
	defaultSTTEncoding   = "pcm_s16le"
	defaultSTTSampleRate = 16000
)

// StreamWS is a Recognizer backed by a websocket transcription service
// speaking a Cartesia-compatible protocol: binary audio up, JSON
// transcript revisions down.
type StreamWS struct {
	URL    string
	APIKey string
	Model  string

	// Locales restricts which languages the service accepts.
	// Empty means any.
	Locales []string

	Dialer *websocket.Dialer
}

// NewStreamWS creates a websocket recognizer for the given endpoint.
func NewStreamWS(wsURL, apiKey string) *StreamWS {
	return &StreamWS{
		URL:    wsURL,
		APIKey: apiKey,
	}
}

// RequestAuthorization implements Recognizer. Remote recognition needs
// credentials rather than OS-level permission.
func (s *StreamWS) RequestAuthorization(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.APIKey == "" {
		return &AuthorizationError{Reason: AuthorizationDenied}
	}
	return nil
}

// Recognize implements Recognizer.
func (s *StreamWS) Recognize(ctx context.Context, speech *capture.Stream, lang nlu.Language) (*Recognition, error) {
	if !s.supports(lang) {
		return nil, ErrLocaleNotSupported
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("stt: parse websocket URL: %w", err)
	}
	q := u.Query()
	model := s.Model
	if model == "" {
		model = defaultSTTModel
	}
	q.Set("model", model)
	q.Set("language", lang.Locale())
	q.Set("encoding", defaultSTTEncoding)
	q.Set("sample_rate", fmt.Sprintf("%d", defaultSTTSampleRate))
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
			return nil, fmt.Errorf("%w: status %d", ErrRecognizerUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
	}

	rec := NewRecognition()
	sess := &wsSession{conn: conn, rec: rec}
	go sess.watch(ctx)
	go sess.writeLoop(speech)
	go sess.readLoop()
	return rec, nil
}

func (s *StreamWS) supports(lang nlu.Language) bool {
	if len(s.Locales) == 0 {
		return true
	}
	for _, locale := range s.Locales {
		if locale == lang.Locale() {
			return true
		}
	}
	return false
}

type wsSession struct {
	conn    *websocket.Conn
	rec     *Recognition
	writeMu sync.Mutex
}

// watch releases the connection when the context is cancelled or the
// recognition ends. It outlives writeLoop, which returns once the audio
// stream is finalized while the service may still be transcribing.
func (s *wsSession) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.rec.Fail(ctx.Err())
	case <-s.rec.Done():
	}
	s.conn.Close()
}

// writeLoop pumps captured audio up the socket and finalizes the session
// when the audio stream ends.
func (s *wsSession) writeLoop(speech *capture.Stream) {
	for {
		select {
		case <-s.rec.Done():
			return
		case frame, ok := <-speech.Frames():
			if !ok {
				if err := speech.Err(); err != nil {
					s.rec.Fail(err)
					return
				}
				s.writeText("finalize")
				s.writeText("done")
				return
			}
			if err := s.writeBinary(frame); err != nil {
				s.rec.Fail(&SpeechError{Err: err})
				return
			}
		}
	}
}

func (s *wsSession) writeBinary(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s *wsSession) writeText(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// readLoop receives transcript revisions until the service reports done.
func (s *wsSession) readLoop() {
	defer s.conn.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.rec.Finish()
				return
			}
			select {
			case <-s.rec.Done():
				// Already finished from the write side.
			default:
				s.rec.Fail(&SpeechError{Err: err})
			}
			return
		}

		var msg wsTranscriptMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "transcript":
			if !s.rec.Push(msg.Text) {
				return
			}
		case "flush_done":
			continue
		case "done":
			s.rec.Finish()
			return
		case "error":
			s.rec.Fail(&SpeechError{Err: fmt.Errorf("%s", msg.Error)})
			return
		}
	}
}

type wsTranscriptMessage struct {
	Type    string `json:"type"` // "transcript", "flush_done", "done", "error"
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Error   string `json:"error"`
}
