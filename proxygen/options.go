package proxygen

import (
	"sync"

	"github.com/sghaida/decor/decor"
)

// Layout selects how Options stores its shared register, mimicking the
// internal layouts of different host versions.
type Layout int

const (
	// LayoutCell keeps the register in an atomic cell (decor.CellHost).
	LayoutCell Layout = iota
	// LayoutList exposes only a mutable list view (decor.ListHost).
	LayoutList
	// LayoutBoth exposes both views over the same storage.
	LayoutBoth
	// LayoutSealed exposes neither view.
	LayoutSealed
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case LayoutCell:
		return "cell"
	case LayoutList:
		return "list"
	case LayoutBoth:
		return "both"
	case LayoutSealed:
		return "sealed"
	default:
		return "unknown"
	}
}

// Options holds the generation options shared by every Factory built on it,
// including the process-wide register of additional decorations.
type Options struct {
	layout Layout

	// cell backs the register for LayoutCell and LayoutBoth.
	cell *decor.AtomicCell[[]decor.Descriptor]

	// mu and items back the register for LayoutList and LayoutSealed.
	mu    sync.Mutex
	items []decor.Descriptor
}

// NewOptions returns empty options with the given register layout.
func NewOptions(layout Layout) *Options {
	o := &Options{layout: layout}
	if o.usesCell() {
		o.cell = decor.NewAtomicCell[[]decor.Descriptor](nil)
	}
	return o
}

// Layout returns the register layout.
func (o *Options) Layout() Layout { return o.layout }

func (o *Options) usesCell() bool {
	return o.layout == LayoutCell || o.layout == LayoutBoth
}

// Add appends ds to the register. Decorations added this way apply to every
// type generated afterwards.
func (o *Options) Add(ds ...decor.Descriptor) {
	if o.usesCell() {
		cur := o.cell.Load()
		next := make([]decor.Descriptor, 0, len(cur)+len(ds))
		next = append(append(next, cur...), ds...)
		o.cell.Store(next)
		return
	}
	o.mu.Lock()
	o.items = append(o.items, ds...)
	o.mu.Unlock()
}

// Decorations returns a copy of the current register content.
func (o *Options) Decorations() []decor.Descriptor {
	var cur []decor.Descriptor
	if o.usesCell() {
		cur = o.cell.Load()
	} else {
		o.mu.Lock()
		cur = o.items
		o.mu.Unlock()
	}
	if len(cur) == 0 {
		return []decor.Descriptor{}
	}
	out := make([]decor.Descriptor, len(cur))
	copy(out, cur)
	return out
}

// DecorationCell implements decor.CellHost. It returns nil unless the layout
// keeps the register in a cell.
func (o *Options) DecorationCell() *decor.AtomicCell[[]decor.Descriptor] {
	if o.layout != LayoutCell && o.layout != LayoutBoth {
		return nil
	}
	return o.cell
}

// DecorationList implements decor.ListHost. It returns nil unless the layout
// exposes a list view.
func (o *Options) DecorationList() decor.List {
	switch o.layout {
	case LayoutList:
		return (*sliceList)(o)
	case LayoutBoth:
		return (*cellList)(o)
	default:
		return nil
	}
}

// sliceList is the list view of a LayoutList register.
type sliceList Options

func (l *sliceList) Items() []decor.Descriptor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]decor.Descriptor(nil), l.items...)
}

func (l *sliceList) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}

func (l *sliceList) Append(ds ...decor.Descriptor) {
	l.mu.Lock()
	l.items = append(l.items, ds...)
	l.mu.Unlock()
}

// cellList is the list view of a LayoutBoth register, layered on the cell.
type cellList Options

func (l *cellList) Items() []decor.Descriptor {
	return append([]decor.Descriptor(nil), l.cell.Load()...)
}

func (l *cellList) Clear() { l.cell.Store(nil) }

func (l *cellList) Append(ds ...decor.Descriptor) {
	cur := l.cell.Load()
	next := make([]decor.Descriptor, 0, len(cur)+len(ds))
	next = append(append(next, cur...), ds...)
	l.cell.Store(next)
}

// snapshot returns the register content as seen by one type fabrication.
func (o *Options) snapshot() []decor.Descriptor {
	if o.usesCell() {
		return o.cell.Load()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]decor.Descriptor(nil), o.items...)
}
