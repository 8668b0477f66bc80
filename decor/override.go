package decor

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// overrideLock orders every LockedCopy override, and every AtomicSwap
// override running with IsolationSerialized, across all hosts and targets.
var overrideLock ownedMutex

// Phase is a step of a single override call.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInstalling
	PhaseGenerating
	PhaseRestoring
	PhaseDone
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInstalling:
		return "installing"
	case PhaseGenerating:
		return "generating"
	case PhaseRestoring:
		return "restoring"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Overrider installs caller decorations into one host's register for the
// duration of a single generation call.
//
// The host capability is probed lazily on first use and cached for the
// lifetime of the Overrider. An Overrider is safe for concurrent use.
type Overrider struct {
	host      any
	adapters  []Adapter
	pref      StrategyPreference
	isolation Isolation
	log       *zap.Logger
	observer  func(Phase)

	once       sync.Once
	capability Capability
}

// Option configures an Overrider.
type Option func(*Overrider)

// WithAdapters replaces the default adapters used to probe the host.
func WithAdapters(adapters ...Adapter) Option {
	return func(o *Overrider) { o.adapters = adapters }
}

// WithStrategy restricts the strategies the probe may settle on.
func WithStrategy(p StrategyPreference) Option {
	return func(o *Overrider) { o.pref = p }
}

// WithIsolation selects how AtomicSwap overrides treat concurrent callers.
//
// With IsolationNone the target is checked again right before the first
// exchange, but a target finalized by another goroutine after that check
// returns its existing instance without this call's decorations.
func WithIsolation(i Isolation) Option {
	return func(o *Overrider) { o.isolation = i }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *Overrider) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPhaseObserver registers fn to be called on every phase transition.
// fn runs on the calling goroutine, inside the override lock when one is held.
func WithPhaseObserver(fn func(Phase)) Option {
	return func(o *Overrider) { o.observer = fn }
}

// WithConfig applies the strategy and isolation of cfg.
func WithConfig(cfg Config) Option {
	return func(o *Overrider) {
		o.pref = cfg.Strategy
		o.isolation = cfg.Isolation
	}
}

// New returns an Overrider for host. The host is not probed until the first
// override or Capability call.
func New(host any, opts ...Option) *Overrider {
	o := &Overrider{host: host, log: zap.NewNop()}
	WithConfig(DefaultConfig())(o)
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// NewFromEnv is New with defaults read from the environment (see Config).
// Options are applied after the environment configuration.
func NewFromEnv(host any, opts ...Option) (*Overrider, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := NewLogger(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	base := []Option{WithConfig(cfg), WithLogger(log)}
	return New(host, append(base, opts...)...), nil
}

var (
	defaultsMu sync.Mutex
	defaults   = map[any]*Overrider{}
)

// For returns the process-wide Overrider of host, creating it from the
// environment on first use. Hosts that are not comparable get a fresh,
// uncached Overrider on every call.
func For(host any) (*Overrider, error) {
	if host == nil || !reflect.ValueOf(host).Comparable() {
		return NewFromEnv(host)
	}

	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	if o, ok := defaults[host]; ok {
		return o, nil
	}
	o, err := NewFromEnv(host)
	if err != nil {
		return nil, err
	}
	defaults[host] = o
	return o, nil
}

// Capability probes the host once and returns the cached result.
func (o *Overrider) Capability() Capability {
	o.once.Do(func() {
		o.capability = probe(o.host, o.pref, o.adapters)
		if o.capability.Available() {
			o.log.Debug("decor: capability detected",
				zap.String("host", hostName(o.host)),
				zap.Stringer("strategy", o.capability.strategy),
				zap.String("adapter", o.capability.adapter),
			)
			return
		}
		o.log.Warn("decor: capability unavailable",
			zap.String("host", hostName(o.host)),
			zap.Stringer("preference", o.pref),
			zap.Error(o.capability.err),
		)
	})
	return o.capability
}

// HostedTarget is a Target that knows the host whose register it consults.
type HostedTarget[T any] interface {
	Target[T]
	Host() any
}

// Decorate is WithDecorations using the process-wide Overrider of the target's host.
func Decorate[T any](target HostedTarget[T], exprs ...Expression) (T, error) {
	var zero T
	if target == nil || isNilValue(target) {
		return zero, ErrNilTarget
	}
	o, err := For(target.Host())
	if err != nil {
		return zero, err
	}
	return WithDecorations[T](o, target, exprs...)
}

// WithDecorations materializes target's instance while the host register holds
// exactly the decorations described by exprs, then restores the register.
//
// It fails before touching the register with ErrNilTarget, an
// *AlreadyInitializedError, ErrNoDecorations, an *ExpressionError or a
// *CapabilityUnavailableError. Errors returned by the target are passed through
// unchanged after the register has been restored; panics are re-raised after
// restoration.
//
// Overrides must not nest: calling WithDecorations from inside the target's
// generation (for example from a host hook) while the outer call holds the
// process-wide lock returns ErrNestedOverride instead of blocking. Nesting from
// a different goroutine that the generation waits on still deadlocks.
func WithDecorations[T any](o *Overrider, target Target[T], exprs ...Expression) (T, error) {
	var zero T
	if o == nil {
		return zero, ErrNilOverrider
	}
	if err := CheckNotFinalized(target); err != nil {
		return zero, err
	}
	if len(exprs) == 0 {
		return zero, ErrNoDecorations
	}
	descs, err := BuildAll(exprs...)
	if err != nil {
		return zero, err
	}

	c := o.Capability()
	s := &session{o: o, capability: c, phase: PhaseIdle}
	switch c.strategy {
	case AtomicSwapAvailable:
		return overrideSwap(s, target, descs)
	case LockedCopyAvailable:
		return overrideLocked(s, target, descs)
	default:
		return zero, &CapabilityUnavailableError{Host: hostName(o.host), Cause: c.err}
	}
}

// session is the call-scoped state of one override.
type session struct {
	o          *Overrider
	capability Capability
	phase      Phase
	prev       []Descriptor
}

func (s *session) enter(p Phase) {
	s.phase = p
	if s.o.observer != nil {
		s.o.observer(p)
	}
}

func (s *session) start(descs []Descriptor) {
	s.enter(PhaseInstalling)
	if ce := s.o.log.Check(zap.DebugLevel, "decor: override start"); ce != nil {
		ce.Write(
			zap.Stringer("strategy", s.capability.strategy),
			zap.Stringer("isolation", s.o.isolation),
			zap.Strings("decorations", descriptorNames(descs)),
		)
	}
}

func (s *session) finish(err error, rec any) {
	s.enter(PhaseDone)
	if rec != nil {
		s.o.log.Error("decor: generation panicked; register restored",
			zap.Stringer("strategy", s.capability.strategy),
			zap.Any("panic", rec),
		)
		return
	}
	if err != nil {
		s.o.log.Warn("decor: generation failed; register restored",
			zap.Stringer("strategy", s.capability.strategy),
			zap.Error(err),
		)
		return
	}
	s.o.log.Debug("decor: override done", zap.Stringer("strategy", s.capability.strategy))
}

func overrideSwap[T any](s *session, target Target[T], descs []Descriptor) (obj T, err error) {
	if s.o.isolation == IsolationSerialized {
		if lerr := overrideLock.lock(); lerr != nil {
			return obj, lerr
		}
		defer overrideLock.unlock()
	}

	// another caller may have materialized the target since the first check
	if gerr := CheckNotFinalized(target); gerr != nil {
		return obj, gerr
	}

	swap := s.capability.swap
	s.start(descs)
	s.prev = swap(descs)
	defer func() {
		rec := recover()
		s.enter(PhaseRestoring)
		_ = swap(s.prev)
		s.finish(err, rec)
		if rec != nil {
			panic(rec)
		}
	}()

	s.enter(PhaseGenerating)
	return target.Object()
}

func overrideLocked[T any](s *session, target Target[T], descs []Descriptor) (obj T, err error) {
	if lerr := overrideLock.lock(); lerr != nil {
		return obj, lerr
	}
	defer overrideLock.unlock()

	if gerr := CheckNotFinalized(target); gerr != nil {
		return obj, gerr
	}

	list := s.capability.list
	s.start(descs)
	s.prev = append([]Descriptor(nil), list.Items()...)
	defer func() {
		rec := recover()
		s.enter(PhaseRestoring)
		list.Clear()
		list.Append(s.prev...)
		s.finish(err, rec)
		if rec != nil {
			panic(rec)
		}
	}()

	list.Clear()
	list.Append(descs...)

	s.enter(PhaseGenerating)
	return target.Object()
}

func hostName(host any) string {
	if host == nil {
		return "<nil>"
	}
	return reflect.TypeOf(host).String()
}
