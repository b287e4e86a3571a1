// Package capture provides microphone audio capture.
package capture

import (
	"context"
	"fmt"
	"sync"
)

// Frame is a chunk of raw audio samples.
type Frame []byte

// Service is the interface for audio capture backends.
type Service interface {
	// RequestAuthorization asks for permission to record audio.
	RequestAuthorization(ctx context.Context) error

	// Open starts recording and returns the live audio stream.
	// The stream ends when the context is cancelled or the source runs out.
	Open(ctx context.Context) (*Stream, error)
}

// Stream is a live audio capture session.
// Frames are received via Frames(); the channel closes when capture ends.
type Stream struct {
	frames     chan Frame
	err        error
	errMu      sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once
}

// NewStream creates a new capture stream.
func NewStream() *Stream {
	return &Stream{
		frames: make(chan Frame, 100),
		done:   make(chan struct{}),
	}
}

// Frames returns the channel of captured audio frames.
func (s *Stream) Frames() <-chan Frame {
	return s.frames
}

// Err returns any error that occurred during capture.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Done returns a channel that's closed when the stream is done.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Close stops the stream. Safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// Internal methods for implementations

// Push delivers a captured frame. Returns false if the stream is closed.
func (s *Stream) Push(f Frame) bool {
	select {
	case s.frames <- f:
		return true
	case <-s.done:
		return false
	}
}

// Fail records a capture error and finishes the stream.
func (s *Stream) Fail(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
	s.Finish()
}

// Finish closes the frame channel. Safe to call more than once.
func (s *Stream) Finish() {
	s.finishOnce.Do(func() {
		close(s.frames)
	})
	s.Close()
}

// ErrNoAudioDevice is returned when no capture device is available.
var ErrNoAudioDevice = fmt.Errorf("capture: no audio device available")

// AuthorizationReason is why audio authorization was not granted.
type AuthorizationReason string

const (
	AuthorizationDenied     AuthorizationReason = "denied"
	AuthorizationRestricted AuthorizationReason = "restricted"
)

// AuthorizationError is returned when recording permission is unavailable.
type AuthorizationError struct {
	Reason AuthorizationReason
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("capture: audio recording %s", e.Reason)
}

// CaptureError wraps a failure of the underlying audio device.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture: %v", e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
