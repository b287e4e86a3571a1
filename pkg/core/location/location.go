// Package location provides the device geolocation contract and errors.
package location

import (
	"context"
	"fmt"
)

// Coordinate is a geographic position.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Level is a granted or requested authorization level.
type Level string

const (
	LevelWhenInUse Level = "when_in_use"
	LevelAlways    Level = "always"
)

// Service produces a single device coordinate and handles its authorization.
type Service interface {
	// RequestAuthorization asks for at least the desired level and reports
	// what was granted. Denial or restriction comes back as
	// *AuthorizationError.
	RequestAuthorization(ctx context.Context, desired Level) (Level, error)

	// SingleCoordinate acquires one coordinate or fails with *Error.
	SingleCoordinate(ctx context.Context) (Coordinate, error)
}

// ErrorKind categorizes location acquisition failures.
type ErrorKind string

const (
	ErrorUnknown                ErrorKind = "unknown"
	ErrorLocationUnknown        ErrorKind = "location_unknown"
	ErrorDenied                 ErrorKind = "denied"
	ErrorNetwork                ErrorKind = "network"
	ErrorDeferredFailed         ErrorKind = "deferred_failed"
	ErrorDeferredAccuracyTooLow ErrorKind = "deferred_accuracy_too_low"
	ErrorDeferredCanceled       ErrorKind = "deferred_canceled"
)

// Error reports a failed coordinate acquisition.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("location %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// AuthorizationReason is why an authorization request was refused.
type AuthorizationReason string

const (
	AuthorizationDenied     AuthorizationReason = "denied"
	AuthorizationRestricted AuthorizationReason = "restricted"
)

// AuthorizationError reports a refused location authorization.
type AuthorizationError struct {
	Reason AuthorizationReason
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("location authorization %s", e.Reason)
}
