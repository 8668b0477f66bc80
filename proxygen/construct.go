package proxygen

import (
	"reflect"
	"strconv"

	"github.com/sghaida/decor/decor"
)

// ConstructError is returned when a descriptor cannot be turned into a
// decoration value.
type ConstructError struct {
	Type   string
	Reason string
}

// Error implements the error interface.
func (e *ConstructError) Error() string {
	// Example: proxygen: cannot construct "example.com/p.Tag": argument 0: want string, got int
	return "proxygen: cannot construct " + strconv.Quote(e.Type) + ": " + e.Reason
}

// Instantiate builds the decoration value described by d.
//
// Struct decorations receive their arguments positionally in their exported
// fields; pointer-to-struct decorations are allocated first. Any other kind
// takes exactly one argument convertible to it.
func Instantiate(d decor.Descriptor) (any, error) {
	t := d.Type()
	if t == nil {
		return nil, &ConstructError{Type: "<nil>", Reason: "missing type"}
	}

	switch {
	case t.Kind() == reflect.Struct:
		v := reflect.New(t).Elem()
		if err := fillStruct(d, v); err != nil {
			return nil, err
		}
		return v.Interface(), nil

	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		p := reflect.New(t.Elem())
		if err := fillStruct(d, p.Elem()); err != nil {
			return nil, err
		}
		return p.Interface(), nil

	default:
		if d.NumArgs() != 1 {
			return nil, &ConstructError{Type: d.TypeName(), Reason: "want exactly 1 argument, got " + strconv.Itoa(d.NumArgs())}
		}
		v, err := coerce(d, 0, t)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}
}

func fillStruct(d decor.Descriptor, v reflect.Value) error {
	t := v.Type()
	fields := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			fields = append(fields, i)
		}
	}
	if d.NumArgs() > len(fields) {
		return &ConstructError{
			Type:   d.TypeName(),
			Reason: "too many arguments: got " + strconv.Itoa(d.NumArgs()) + ", type has " + strconv.Itoa(len(fields)) + " exported fields",
		}
	}
	for i := 0; i < d.NumArgs(); i++ {
		f := v.Field(fields[i])
		av, err := coerce(d, i, f.Type())
		if err != nil {
			return err
		}
		f.Set(av)
	}
	return nil
}

func coerce(d decor.Descriptor, i int, want reflect.Type) (reflect.Value, error) {
	arg := d.Arg(i)
	if arg == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, &ConstructError{Type: d.TypeName(), Reason: "argument " + strconv.Itoa(i) + ": nil for " + want.String()}
	}
	av := reflect.ValueOf(arg)
	switch {
	case av.Type().AssignableTo(want):
		return av, nil
	case av.Type().ConvertibleTo(want) && sameFamily(av.Kind(), want.Kind()):
		return av.Convert(want), nil
	default:
		return reflect.Value{}, &ConstructError{
			Type:   d.TypeName(),
			Reason: "argument " + strconv.Itoa(i) + ": want " + want.String() + ", got " + av.Type().String(),
		}
	}
}

// sameFamily rejects cross-kind conversions such as int -> string and
// float -> int. Integers may widen to floats.
func sameFamily(from, to reflect.Kind) bool {
	f, t := family(from), family(to)
	if f == familyInt && t == familyFloat {
		return true
	}
	return f != familyNone && f == t
}

const (
	familyNone = iota
	familyInt
	familyFloat
	familyString
	familyBool
)

func family(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return familyInt
	case reflect.Float32, reflect.Float64:
		return familyFloat
	case reflect.String:
		return familyString
	case reflect.Bool:
		return familyBool
	default:
		return familyNone
	}
}
