package decor

import (
	"fmt"
	"reflect"
	"strings"
)

// CellHost is implemented by hosts that keep their register in an AtomicCell.
type CellHost interface {
	DecorationCell() *AtomicCell[[]Descriptor]
}

// ListHost is implemented by hosts that expose their register as a List.
type ListHost interface {
	DecorationList() List
}

// Adapter locates the register of one host layout.
//
// Locate returns ok=false when the host does not have the layout the adapter
// understands. Adapters may panic; Probe recovers and records the panic.
type Adapter interface {
	Name() string
	Locate(host any) (Capability, bool)
}

type adapterFunc struct {
	name string
	fn   func(host any) (Capability, bool)
}

func (a adapterFunc) Name() string                       { return a.name }
func (a adapterFunc) Locate(host any) (Capability, bool) { return a.fn(host) }

// NewAdapter wraps fn as a named Adapter.
func NewAdapter(name string, fn func(host any) (Capability, bool)) Adapter {
	return adapterFunc{name: name, fn: fn}
}

// CellAdapter binds the AtomicSwap strategy to hosts implementing CellHost.
var CellAdapter = NewAdapter("cell", func(host any) (Capability, bool) {
	h, ok := host.(CellHost)
	if !ok {
		return Capability{}, false
	}
	cell := h.DecorationCell()
	if cell == nil {
		return Capability{}, false
	}
	return SwapCapability("cell", cell.Exchange), true
})

// ListAdapter binds the LockedCopy strategy to hosts implementing ListHost.
var ListAdapter = NewAdapter("list", func(host any) (Capability, bool) {
	h, ok := host.(ListHost)
	if !ok {
		return Capability{}, false
	}
	list := h.DecorationList()
	if list == nil || isNilValue(list) {
		return Capability{}, false
	}
	return ListCapability("list", list), true
})

// DefaultAdapters returns the adapters Probe uses when none are given,
// in preference order.
func DefaultAdapters() []Adapter {
	return []Adapter{CellAdapter, ListAdapter}
}

// ProbeError describes why no adapter produced a capability.
type ProbeError struct {
	Tried    []string
	Failures []error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if len(e.Tried) == 0 {
		return "probe: no adapters"
	}
	msg := "probe: register not located (tried " + strings.Join(e.Tried, ", ") + ")"
	for _, f := range e.Failures {
		msg += "; " + f.Error()
	}
	return msg
}

// Probe locates the host register using adapters in order and returns the
// first available capability. It never panics and never returns an error;
// failure is reported as an Unavailable capability.
func Probe(host any, adapters ...Adapter) Capability {
	return probe(host, StrategyAuto, adapters)
}

func probe(host any, pref StrategyPreference, adapters []Adapter) Capability {
	if len(adapters) == 0 {
		adapters = DefaultAdapters()
	}
	if host == nil || isNilValue(host) {
		return UnavailableCapability(&ProbeError{Tried: adapterNames(adapters), Failures: []error{fmt.Errorf("nil host")}})
	}

	perr := &ProbeError{}
	for _, a := range adapters {
		if a == nil {
			continue
		}
		perr.Tried = append(perr.Tried, a.Name())

		c, ok, err := safeLocate(a, host)
		if err != nil {
			perr.Failures = append(perr.Failures, err)
			continue
		}
		if !ok || !c.Available() || !pref.accepts(c.strategy) {
			continue
		}
		if c.adapter == "" {
			c.adapter = a.Name()
		}
		return c
	}
	return UnavailableCapability(perr)
}

func safeLocate(a Adapter, host any) (c Capability, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c, ok = Capability{}, false
			err = fmt.Errorf("adapter %q panicked: %v", a.Name(), rec)
		}
	}()
	c, ok = a.Locate(host)
	return c, ok, nil
}

func adapterNames(adapters []Adapter) []string {
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		if a != nil {
			out = append(out, a.Name())
		}
	}
	return out
}

func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
