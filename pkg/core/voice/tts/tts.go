// Package tts provides streaming speech synthesis.
package tts

import (
	"context"
	"fmt"
	"sync"

	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

// SpokenRange is a character range of the utterance text that is about
// to be spoken.
type SpokenRange struct {
	Start  int
	Length int
}

// Synthesizer is the interface for speech synthesis backends.
type Synthesizer interface {
	// Speak synthesizes the given text. Ranges of the text are reported
	// on the returned utterance as they are spoken; the utterance ends
	// when speech completes, the context is cancelled, or the backend
	// fails.
	Speak(ctx context.Context, text string, lang nlu.Language) (*Utterance, error)
}

// Utterance is a live speech synthesis session.
// Spoken ranges are received via Ranges(); the channel closes when the
// utterance ends.
type Utterance struct {
	ranges     chan SpokenRange
	err        error
	errMu      sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once
}

// NewUtterance creates a new utterance session.
func NewUtterance() *Utterance {
	return &Utterance{
		ranges: make(chan SpokenRange, 100),
		done:   make(chan struct{}),
	}
}

// Ranges returns the channel of spoken ranges.
func (u *Utterance) Ranges() <-chan SpokenRange {
	return u.ranges
}

// Err returns any error that occurred during synthesis.
func (u *Utterance) Err() error {
	u.errMu.Lock()
	defer u.errMu.Unlock()
	return u.err
}

// Done returns a channel that's closed when the utterance ends.
func (u *Utterance) Done() <-chan struct{} {
	return u.done
}

// Close stops the utterance. Safe to call more than once.
func (u *Utterance) Close() error {
	u.closeOnce.Do(func() {
		close(u.done)
	})
	return nil
}

// Internal methods for implementations

// Push delivers a spoken range. Returns false if the utterance is closed.
func (u *Utterance) Push(r SpokenRange) bool {
	select {
	case u.ranges <- r:
		return true
	case <-u.done:
		return false
	}
}

// Fail records a synthesis error and finishes the utterance.
func (u *Utterance) Fail(err error) {
	u.errMu.Lock()
	u.err = err
	u.errMu.Unlock()
	u.Finish()
}

// Finish closes the range channel. Safe to call more than once.
func (u *Utterance) Finish() {
	u.finishOnce.Do(func() {
		close(u.ranges)
	})
	u.Close()
}

// ErrSynthesizerUnavailable is returned when the backend cannot start
// an utterance.
var ErrSynthesizerUnavailable = fmt.Errorf("tts: synthesizer unavailable")

// SynthesisError wraps a failure of the synthesis backend mid-utterance.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("tts: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
