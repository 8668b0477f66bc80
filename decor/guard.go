package decor

import "reflect"

// Target is a generation request that produces its instance on first access.
//
// IsInitialized reports whether Object has already materialized the instance.
// Object materializes it (consulting the host register) or returns the
// already materialized one.
type Target[T any] interface {
	IsInitialized() bool
	Object() (T, error)
}

// Finalizable is the read-only part of Target used by the guard.
type Finalizable interface {
	IsInitialized() bool
}

// IsFinalized reports whether target has already produced its instance.
// A nil target is never finalized.
func IsFinalized(target Finalizable) bool {
	if target == nil || isNilValue(target) {
		return false
	}
	return target.IsInitialized()
}

// CheckNotFinalized rejects targets that can no longer be decorated.
// It has no side effects.
func CheckNotFinalized(target Finalizable) error {
	if target == nil || isNilValue(target) {
		return ErrNilTarget
	}
	if target.IsInitialized() {
		return &AlreadyInitializedError{Target: reflect.TypeOf(target).String()}
	}
	return nil
}
