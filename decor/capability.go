package decor

import "strconv"

// Strategy is the register substitution technique an Overrider can use.
type Strategy int

const (
	// Unavailable means no substitution technique could be established.
	Unavailable Strategy = iota

	// AtomicSwapAvailable means the register lives in an AtomicCell and can be
	// replaced with a single exchange.
	AtomicSwapAvailable

	// LockedCopyAvailable means only the register list is reachable; overrides
	// copy, clear, append and restore it under the process-wide lock.
	LockedCopyAvailable
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case AtomicSwapAvailable:
		return "atomic-swap"
	case LockedCopyAvailable:
		return "locked-copy"
	default:
		return "strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// List is the mutable view of a host register used by the LockedCopy strategy.
//
// Implementations do not need to be safe for concurrent use; the Overrider
// only touches a List while holding the process-wide override lock.
type List interface {
	Items() []Descriptor
	Clear()
	Append(ds ...Descriptor)
}

// Capability is the immutable outcome of probing a host.
//
// It is computed once per Overrider and may be read concurrently afterwards.
type Capability struct {
	strategy Strategy
	adapter  string
	swap     func([]Descriptor) []Descriptor
	list     List
	err      error
}

// Strategy returns the usable strategy.
func (c Capability) Strategy() Strategy { return c.strategy }

// Adapter returns the name of the adapter that located the register, or "".
func (c Capability) Adapter() string { return c.adapter }

// Err returns the reason the capability is Unavailable, if any.
func (c Capability) Err() error { return c.err }

// Available reports whether some strategy can be used.
func (c Capability) Available() bool { return c.strategy != Unavailable }

// SwapCapability returns an AtomicSwap capability bound to swap.
func SwapCapability(adapter string, swap func([]Descriptor) []Descriptor) Capability {
	return Capability{strategy: AtomicSwapAvailable, adapter: adapter, swap: swap}
}

// ListCapability returns a LockedCopy capability bound to list.
func ListCapability(adapter string, list List) Capability {
	return Capability{strategy: LockedCopyAvailable, adapter: adapter, list: list}
}

// UnavailableCapability returns a capability that fails at call time with cause.
func UnavailableCapability(cause error) Capability {
	return Capability{strategy: Unavailable, err: cause}
}
