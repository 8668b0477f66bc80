// Package decor attaches caller-chosen decorations to objects fabricated by a
// generation subsystem the caller does not control.
//
// The generation subsystem (the host) keeps one shared, process-wide register
// of additional decorations and reads it only when it fabricates a new type.
// decor temporarily replaces the register content for exactly one generation
// call and restores it afterwards, whatever the outcome of the call.
//
// Two substitution strategies exist:
//
//   - AtomicSwap: the host keeps the register in an AtomicCell (CellHost).
//     The override is one Exchange to install and one to restore.
//   - LockedCopy: the host only exposes a List (ListHost). The override takes
//     a process-wide lock, copies the register, clears it, appends the caller's
//     descriptors, generates, then clears and re-appends the copy.
//
// Which strategy applies is decided once per Overrider by probing the host
// through Adapters (CellAdapter, then ListAdapter by default). Probing never
// fails; a host with no usable layout yields an Unavailable capability and the
// first override returns a CapabilityUnavailableError.
//
// # Isolation
//
// By default AtomicSwap overrides run under the same process-wide lock as
// LockedCopy overrides (IsolationSerialized), so concurrent callers never see
// each other's decorations. IsolationNone drops the lock: exchange pairs of
// concurrent callers can interleave, a generation can pick up another caller's
// list, and the restore of one call can reinstall another call's list. Use it
// only when callers are serialized externally.
//
// # Usage
//
//	mock := proxygen.NewMock[Greeter](factory)
//	obj, err := decor.WithDecorations(decor.New(factory.Options()), mock,
//		decor.Construct[Tag]("x"),
//		decor.Construct[Owner]("team-a", decor.Lazy(func() any { return time.Now().Year() })),
//	)
//
// Configuration defaults can be read from the environment with LoadConfig
// (DECOR_STRATEGY, DECOR_ISOLATION, DECOR_LOG_MODE).
package decor
