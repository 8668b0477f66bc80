package decor

import (
	"errors"
	"strconv"
)

var (
	// ErrNilTarget is returned when an override is requested against a nil target.
	ErrNilTarget = errors.New("decor: nil target")

	// ErrNilOverrider is returned by WithDecorations when called with a nil Overrider.
	ErrNilOverrider = errors.New("decor: nil overrider")

	// ErrNoDecorations is returned when an override is requested without any
	// construction expression.
	ErrNoDecorations = errors.New("decor: at least one decoration is required")

	// ErrAlreadyInitialized matches every AlreadyInitializedError via errors.Is.
	ErrAlreadyInitialized = errors.New("decor: target is already initialized")

	// ErrCapabilityUnavailable matches every CapabilityUnavailableError via errors.Is.
	ErrCapabilityUnavailable = errors.New("decor: no register substitution capability")

	// ErrNestedOverride is returned when an override is requested from inside
	// the generation step of another locked override on the same goroutine.
	ErrNestedOverride = errors.New("decor: nested override from inside a generation step")
)

// AlreadyInitializedError is returned when the generation target has already
// produced its instance. Nothing is mutated; the caller must use a fresh target.
type AlreadyInitializedError struct {
	// Target is the Go type of the rejected target, e.g. "*proxygen.Mock[...]".
	Target string
}

// Error implements the error interface.
func (e *AlreadyInitializedError) Error() string {
	// Example: decor: target "*proxygen.Mock[main.Greeter]" is already initialized
	return "decor: target " + strconv.Quote(e.Target) + " is already initialized"
}

// Is reports whether target is ErrAlreadyInitialized.
func (e *AlreadyInitializedError) Is(target error) bool { return target == ErrAlreadyInitialized }

// CapabilityUnavailableError is returned at call time when the probe could not
// establish any substitution strategy against the host.
type CapabilityUnavailableError struct {
	// Host is the Go type of the probed host.
	Host string

	// Cause is the probe failure, if one was recorded.
	Cause error
}

// Error implements the error interface.
func (e *CapabilityUnavailableError) Error() string {
	msg := "decor: no register substitution capability for host " + strconv.Quote(e.Host)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the probe failure.
func (e *CapabilityUnavailableError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrCapabilityUnavailable.
func (e *CapabilityUnavailableError) Is(target error) bool { return target == ErrCapabilityUnavailable }

// ExpressionError is returned when a construction expression cannot be turned
// into a descriptor (nil expression, or a lazy argument that panicked).
type ExpressionError struct {
	// Index is the position of the expression in the call.
	Index int

	// Type is the decoration type name, if known.
	Type string

	// Reason describes the failure.
	Reason string
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	// Example: decor: expression #1 ("main.Tag"): lazy argument 0 panicked: boom
	msg := "decor: expression #" + strconv.Itoa(e.Index)
	if e.Type != "" {
		msg += " (" + strconv.Quote(e.Type) + ")"
	}
	return msg + ": " + e.Reason
}
