// Package stt provides streaming speech recognition.
package stt

import (
	"context"
	"fmt"
	"sync"

	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/capture"
)

// Recognizer is the interface for speech recognition backends.
type Recognizer interface {
	// RequestAuthorization asks for permission to recognize speech.
	RequestAuthorization(ctx context.Context) error

	// Recognize transcribes the given audio stream. Each value on the
	// returned recognition is a full revision of the transcript so far,
	// not a delta. The recognition ends when the audio stream ends, the
	// context is cancelled, or the backend fails.
	Recognize(ctx context.Context, speech *capture.Stream, lang nlu.Language) (*Recognition, error)
}

// Recognition is a live transcription session.
// Transcript revisions are received via Texts(); the channel closes when
// recognition ends.
type Recognition struct {
	texts      chan string
	err        error
	errMu      sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once
}

// NewRecognition creates a new recognition session.
func NewRecognition() *Recognition {
	return &Recognition{
		texts: make(chan string, 100),
		done:  make(chan struct{}),
	}
}

// Texts returns the channel of transcript revisions.
func (r *Recognition) Texts() <-chan string {
	return r.texts
}

// Err returns any error that occurred during recognition.
func (r *Recognition) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Done returns a channel that's closed when recognition ends.
func (r *Recognition) Done() <-chan struct{} {
	return r.done
}

// Close stops the recognition. Safe to call more than once.
func (r *Recognition) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	return nil
}

// Internal methods for implementations

// Push delivers a transcript revision. Returns false if the session is closed.
func (r *Recognition) Push(text string) bool {
	select {
	case r.texts <- text:
		return true
	case <-r.done:
		return false
	}
}

// Fail records a recognition error and finishes the session.
func (r *Recognition) Fail(err error) {
	r.errMu.Lock()
	r.err = err
	r.errMu.Unlock()
	r.Finish()
}

// Finish closes the text channel. Safe to call more than once.
func (r *Recognition) Finish() {
	r.finishOnce.Do(func() {
		close(r.texts)
	})
	r.Close()
}

// ErrLocaleNotSupported is returned when the backend cannot recognize the
// requested language.
var ErrLocaleNotSupported = fmt.Errorf("stt: locale not supported")

// ErrRecognizerUnavailable is returned when the backend is temporarily
// unable to start a session.
var ErrRecognizerUnavailable = fmt.Errorf("stt: recognizer unavailable")

// AuthorizationReason is why speech recognition authorization was not granted.
type AuthorizationReason string

const (
	AuthorizationDenied     AuthorizationReason = "denied"
	AuthorizationRestricted AuthorizationReason = "restricted"
)

// AuthorizationError is returned when recognition permission is unavailable.
type AuthorizationError struct {
	Reason AuthorizationReason
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("stt: speech recognition %s", e.Reason)
}

// SpeechError wraps a failure of the recognition backend mid-session.
type SpeechError struct {
	Err error
}

func (e *SpeechError) Error() string {
	return fmt.Sprintf("stt: %v", e.Err)
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}
