package decor

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor is an immutable description of one decoration: the decoration's
// type plus the constructor argument values, already evaluated.
//
// The generation subsystem turns a Descriptor into a real decoration value when
// it fabricates a type; a Descriptor itself never constructs anything.
type Descriptor struct {
	typ  reflect.Type
	args []any
}

// Type returns the decoration type.
func (d Descriptor) Type() reflect.Type { return d.typ }

// TypeName returns the fully qualified decoration type name ("<pkgpath>.<Name>").
func (d Descriptor) TypeName() string { return typeName(d.typ) }

// Args returns a copy of the evaluated constructor arguments.
func (d Descriptor) Args() []any {
	if len(d.args) == 0 {
		return nil
	}
	out := make([]any, len(d.args))
	copy(out, d.args)
	return out
}

// NumArgs returns the number of constructor arguments.
func (d Descriptor) NumArgs() int { return len(d.args) }

// Arg returns argument i.
func (d Descriptor) Arg(i int) any { return d.args[i] }

// Equal reports whether both descriptors name the same type with deeply equal arguments.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.typ != o.typ || len(d.args) != len(o.args) {
		return false
	}
	for i := range d.args {
		if !reflect.DeepEqual(d.args[i], o.args[i]) {
			return false
		}
	}
	return true
}

// String renders the descriptor as a constructor call, e.g. main.Tag("x").
func (d Descriptor) String() string {
	if d.typ == nil {
		return "<nil>()"
	}
	var sb strings.Builder
	sb.WriteString(d.typ.String())
	sb.WriteByte('(')
	for i, a := range d.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s, ok := a.(string); ok {
			sb.WriteString(strconv.Quote(s))
			continue
		}
		sb.WriteString(fmt.Sprint(a))
	}
	sb.WriteByte(')')
	return sb.String()
}

type descriptorDoc struct {
	Type string `yaml:"type"`
	Args []any  `yaml:"args,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (d Descriptor) MarshalYAML() (any, error) {
	return descriptorDoc{Type: d.TypeName(), Args: d.args}, nil
}

// EncodeYAML serializes descriptors as a YAML sequence, preserving order.
func EncodeYAML(descs []Descriptor) ([]byte, error) {
	if descs == nil {
		descs = []Descriptor{}
	}
	return yaml.Marshal(descs)
}

// DescriptorsEqual reports whether a and b hold equal descriptors in the same order.
func DescriptorsEqual(a, b []Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// LazyArg is a constructor argument whose value is computed when the
// descriptor is built.
type LazyArg struct {
	fn func() any
}

// Lazy defers evaluation of a constructor argument until Build.
func Lazy(fn func() any) LazyArg { return LazyArg{fn: fn} }

// Expression is a deferred "construct decoration of type X with these arguments".
//
// Create expressions with Construct or Of. The zero Expression is invalid.
type Expression struct {
	typ  reflect.Type
	args []any
}

// Construct describes a decoration of type D built from args.
//
// Arguments wrapped in Lazy are evaluated by Build, in order.
//
//	decor.Construct[Tag]("x")
func Construct[D any](args ...any) Expression {
	return Of(reflect.TypeFor[D](), args...)
}

// Of is Construct for a type only known at runtime.
func Of(t reflect.Type, args ...any) Expression {
	return Expression{typ: t, args: args}
}

// Type returns the decoration type the expression describes.
func (e Expression) Type() reflect.Type { return e.typ }

// Build evaluates the expression's arguments and returns its descriptor.
func Build(e Expression) (Descriptor, error) {
	return buildAt(0, e)
}

// BuildAll builds every expression, preserving order and duplicates.
func BuildAll(exprs ...Expression) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(exprs))
	for i, e := range exprs {
		d, err := buildAt(i, e)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func buildAt(i int, e Expression) (d Descriptor, err error) {
	if e.typ == nil {
		return Descriptor{}, &ExpressionError{Index: i, Reason: "missing decoration type"}
	}
	name := typeName(e.typ)

	args := make([]any, len(e.args))
	for j, a := range e.args {
		lazy, ok := a.(LazyArg)
		if !ok {
			args[j] = a
			continue
		}
		if lazy.fn == nil {
			return Descriptor{}, &ExpressionError{Index: i, Type: name, Reason: "lazy argument " + strconv.Itoa(j) + " is nil"}
		}
		v, err := evalLazy(lazy.fn)
		if err != nil {
			return Descriptor{}, &ExpressionError{Index: i, Type: name, Reason: "lazy argument " + strconv.Itoa(j) + " panicked: " + err.Error()}
		}
		args[j] = v
	}
	return Descriptor{typ: e.typ, args: args}, nil
}

func evalLazy(fn func() any) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("%v", rec)
		}
	}()
	return fn(), nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
