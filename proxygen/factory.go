package proxygen

import (
	"errors"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sghaida/decor/decor"
)

// ErrNilOptions is returned when a Factory has no Options.
var ErrNilOptions = errors.New("proxygen: nil options")

// GeneratedType is a type fabricated by a Factory: a unique name plus the
// decoration values that were in effect at fabrication time.
type GeneratedType struct {
	Name        string
	Interface   reflect.Type
	decorations []any
}

// Decorations returns the decoration values of the type, in register order.
func (g *GeneratedType) Decorations() []any {
	out := make([]any, len(g.decorations))
	copy(out, g.decorations)
	return out
}

// Decoration returns the first decoration whose type is t.
func (g *GeneratedType) Decoration(t reflect.Type) (any, bool) {
	for _, d := range g.decorations {
		if reflect.TypeOf(d) == t {
			return d, true
		}
	}
	return nil, false
}

// Find returns the first decoration of type D on g.
func Find[D any](g *GeneratedType) (D, bool) {
	var zero D
	if g == nil {
		return zero, false
	}
	v, ok := g.Decoration(reflect.TypeFor[D]())
	if !ok {
		return zero, false
	}
	return v.(D), true
}

// FindAll returns every decoration of type D on g, in order.
func FindAll[D any](g *GeneratedType) []D {
	if g == nil {
		return nil
	}
	var out []D
	for _, d := range g.decorations {
		if v, ok := d.(D); ok && reflect.TypeOf(d) == reflect.TypeFor[D]() {
			out = append(out, v)
		}
	}
	return out
}

// Hook runs during fabrication, after decorations are constructed and before
// the type is returned. A non-nil error aborts the fabrication.
//
// Fabrication usually runs inside a decor override, so a Hook must not start
// another override; one started on the same goroutine fails with
// decor.ErrNestedOverride.
type Hook func(*GeneratedType) error

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithBuiltin adds decorations every fabricated type carries regardless of
// the register content. They are placed before register decorations.
func WithBuiltin(ds ...decor.Descriptor) FactoryOption {
	return func(f *Factory) { f.builtin = append(f.builtin, ds...) }
}

// WithHook installs a fabrication hook.
func WithHook(h Hook) FactoryOption {
	return func(f *Factory) { f.hook = h }
}

// Factory fabricates types by consulting the register in its Options exactly
// once per fabrication.
type Factory struct {
	opts    *Options
	builtin []decor.Descriptor
	hook    Hook

	generated atomic.Int64
}

// NewFactory returns a Factory bound to opts.
func NewFactory(opts *Options, fopts ...FactoryOption) *Factory {
	f := &Factory{opts: opts}
	for _, o := range fopts {
		if o != nil {
			o(f)
		}
	}
	return f
}

// Options returns the shared options (the register host).
func (f *Factory) Options() *Options { return f.opts }

// Generated returns how many types the factory has fabricated.
func (f *Factory) Generated() int64 { return f.generated.Load() }

// Generate fabricates a new type for iface.
func (f *Factory) Generate(iface reflect.Type) (*GeneratedType, error) {
	if f.opts == nil {
		return nil, ErrNilOptions
	}

	register := f.opts.snapshot()
	descs := make([]decor.Descriptor, 0, len(f.builtin)+len(register))
	descs = append(append(descs, f.builtin...), register...)

	gt := &GeneratedType{
		Name:        proxyName(iface),
		Interface:   iface,
		decorations: make([]any, 0, len(descs)),
	}
	for _, d := range descs {
		v, err := Instantiate(d)
		if err != nil {
			return nil, err
		}
		gt.decorations = append(gt.decorations, v)
	}

	if f.hook != nil {
		if err := f.hook(gt); err != nil {
			return nil, err
		}
	}
	f.generated.Add(1)
	return gt, nil
}

func proxyName(iface reflect.Type) string {
	base := "Object"
	if iface != nil && iface.Name() != "" {
		base = iface.Name()
	}
	return base + "Proxy_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
