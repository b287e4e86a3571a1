package capture

import (
	"context"
	"io"
	"time"
)

const (
	defaultFrameSize = 3200 // 100ms of 16kHz 16-bit mono PCM
	defaultInterval  = 100 * time.Millisecond
)

// ReaderCapture records from an io.Reader, pacing frames like a real
// microphone. It stands in for device capture on headless hosts.
type ReaderCapture struct {
	R         io.Reader
	FrameSize int
	Interval  time.Duration

	// Denied and Restricted simulate authorization outcomes.
	Denied     bool
	Restricted bool
}

// RequestAuthorization implements Service.
func (r *ReaderCapture) RequestAuthorization(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Restricted {
		return &AuthorizationError{Reason: AuthorizationRestricted}
	}
	if r.Denied {
		return &AuthorizationError{Reason: AuthorizationDenied}
	}
	return nil
}

// Open implements Service. The stream finishes cleanly when the reader
// is exhausted and fails on any other read error.
func (r *ReaderCapture) Open(ctx context.Context) (*Stream, error) {
	if r.R == nil {
		return nil, ErrNoAudioDevice
	}
	if err := r.RequestAuthorization(ctx); err != nil {
		return nil, err
	}

	frameSize := r.FrameSize
	if frameSize <= 0 {
		frameSize = defaultFrameSize
	}
	interval := r.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	stream := NewStream()
	go r.record(ctx, stream, frameSize, interval)
	return stream, nil
}

func (r *ReaderCapture) record(ctx context.Context, stream *Stream, frameSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buf := make([]byte, frameSize)
	for {
		select {
		case <-ctx.Done():
			stream.Fail(ctx.Err())
			return
		case <-stream.Done():
			stream.Finish()
			return
		case <-ticker.C:
		}

		n, err := io.ReadFull(r.R, buf)
		if n > 0 {
			frame := make(Frame, n)
			copy(frame, buf[:n])
			if !stream.Push(frame) {
				stream.Finish()
				return
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			stream.Finish()
			return
		}
		if err != nil {
			stream.Fail(&CaptureError{Err: err})
			return
		}
	}
}
