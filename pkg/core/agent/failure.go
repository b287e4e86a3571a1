package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/network"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/capture"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/stt"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/tts"
)

// FailureKind categorizes turn failures.
type FailureKind string

const (
	FailureNoAudioDevice                   FailureKind = "no_audio_device"
	FailureAudioCapture                    FailureKind = "audio_capture_failure"
	FailureAudioAuthorizationDenied        FailureKind = "audio_authorization_denied"
	FailureAudioAuthorizationRestricted    FailureKind = "audio_authorization_restricted"
	FailureSpeechAuthorizationDenied       FailureKind = "speech_authorization_denied"
	FailureSpeechAuthorizationRestricted   FailureKind = "speech_authorization_restricted"
	FailureLocaleNotSupported              FailureKind = "locale_not_supported"
	FailureRecognizerUnavailable           FailureKind = "recognizer_unavailable"
	FailureRecognition                     FailureKind = "recognition_failure"
	FailureLocationAuthorizationDenied     FailureKind = "location_authorization_denied"
	FailureLocationAuthorizationRestricted FailureKind = "location_authorization_restricted"
	FailureLocationUnavailable             FailureKind = "location_unavailable"
	FailureLocationNetwork                 FailureKind = "location_network"
	FailureLocationDeferred                FailureKind = "location_deferred"
	FailureFetch                           FailureKind = "fetch_failure"
	FailureParse                           FailureKind = "parse_failure"
	FailureSynthesis                       FailureKind = "synthesis_failure"
	FailureUnknown                         FailureKind = "unknown"
)

// Failure is the unified error type surfaced by the pipeline.
// It ends the active turn only, never the session.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Translate converts a collaborator error into a Failure. Context
// cancellation errors pass through untouched so callers can tell a
// stopped turn from a failed one.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	kind := classify(err)
	return &Failure{
		Kind:    kind,
		Message: messageFor(kind),
		Err:     err,
	}
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, capture.ErrNoAudioDevice):
		return FailureNoAudioDevice
	case errors.Is(err, stt.ErrLocaleNotSupported):
		return FailureLocaleNotSupported
	case errors.Is(err, stt.ErrRecognizerUnavailable):
		return FailureRecognizerUnavailable
	case errors.Is(err, tts.ErrSynthesizerUnavailable):
		return FailureSynthesis
	}

	var audioAuth *capture.AuthorizationError
	if errors.As(err, &audioAuth) {
		if audioAuth.Reason == capture.AuthorizationRestricted {
			return FailureAudioAuthorizationRestricted
		}
		return FailureAudioAuthorizationDenied
	}
	var speechAuth *stt.AuthorizationError
	if errors.As(err, &speechAuth) {
		if speechAuth.Reason == stt.AuthorizationRestricted {
			return FailureSpeechAuthorizationRestricted
		}
		return FailureSpeechAuthorizationDenied
	}
	var locationAuth *location.AuthorizationError
	if errors.As(err, &locationAuth) {
		if locationAuth.Reason == location.AuthorizationRestricted {
			return FailureLocationAuthorizationRestricted
		}
		return FailureLocationAuthorizationDenied
	}

	var captureErr *capture.CaptureError
	if errors.As(err, &captureErr) {
		return FailureAudioCapture
	}
	var speechErr *stt.SpeechError
	if errors.As(err, &speechErr) {
		return FailureRecognition
	}
	var synthErr *tts.SynthesisError
	if errors.As(err, &synthErr) {
		return FailureSynthesis
	}

	var locationErr *location.Error
	if errors.As(err, &locationErr) {
		switch locationErr.Kind {
		case location.ErrorNetwork:
			return FailureLocationNetwork
		case location.ErrorDeferredFailed, location.ErrorDeferredAccuracyTooLow, location.ErrorDeferredCanceled:
			return FailureLocationDeferred
		default:
			return FailureLocationUnavailable
		}
	}

	var decodeErr *network.DecodeError
	if errors.As(err, &decodeErr) {
		return FailureParse
	}
	var fetchErr *network.FetchError
	if errors.As(err, &fetchErr) {
		return FailureFetch
	}

	return FailureUnknown
}

func messageFor(kind FailureKind) string {
	switch kind {
	case FailureNoAudioDevice:
		return "No microphone is available."
	case FailureAudioCapture:
		return "Audio recording failed."
	case FailureAudioAuthorizationDenied, FailureAudioAuthorizationRestricted:
		return "Microphone access is not allowed."
	case FailureSpeechAuthorizationDenied, FailureSpeechAuthorizationRestricted:
		return "Speech recognition is not allowed."
	case FailureLocaleNotSupported:
		return "This language is not supported for speech recognition."
	case FailureRecognizerUnavailable:
		return "Speech recognition is currently unavailable."
	case FailureRecognition:
		return "Could not understand the audio."
	case FailureLocationAuthorizationDenied, FailureLocationAuthorizationRestricted:
		return "Location access is not allowed."
	case FailureLocationUnavailable:
		return "Your location could not be determined."
	case FailureLocationNetwork:
		return "Location lookup failed over the network."
	case FailureLocationDeferred:
		return "Location updates were interrupted."
	case FailureFetch:
		return "The weather service could not be reached."
	case FailureParse:
		return "The weather service sent an unexpected response."
	case FailureSynthesis:
		return "The answer could not be spoken."
	default:
		return "Something went wrong."
	}
}
