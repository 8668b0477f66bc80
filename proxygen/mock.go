package proxygen

import (
	"errors"
	"reflect"
	"sync"
)

// ErrNilFactory is returned by Object when the mock has no Factory.
var ErrNilFactory = errors.New("proxygen: nil factory")

// Proxy is the instance produced for a Mock.
type Proxy[T any] struct {
	typ *GeneratedType
}

// Type returns the fabricated type of the proxy.
func (p *Proxy[T]) Type() *GeneratedType { return p.typ }

// Mock is a generation request for T. The proxy is fabricated on the first
// successful Object call; later calls return the same proxy.
type Mock[T any] struct {
	factory *Factory

	mu  sync.Mutex
	obj *Proxy[T]
}

// NewMock returns an uninitialized mock of T.
func NewMock[T any](f *Factory) *Mock[T] {
	return &Mock[T]{factory: f}
}

// IsInitialized reports whether the proxy has been fabricated.
func (m *Mock[T]) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.obj != nil
}

// Object fabricates the proxy on first use. A failed fabrication leaves the
// mock uninitialized.
func (m *Mock[T]) Object() (*Proxy[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.obj != nil {
		return m.obj, nil
	}
	if m.factory == nil {
		return nil, ErrNilFactory
	}
	gt, err := m.factory.Generate(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	m.obj = &Proxy[T]{typ: gt}
	return m.obj, nil
}

// Host returns the options whose register the mock's factory consults.
func (m *Mock[T]) Host() any {
	if m.factory == nil {
		return nil
	}
	return m.factory.opts
}
