package decor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCellHost struct{ cell *AtomicCell[[]Descriptor] }

func (h *fakeCellHost) DecorationCell() *AtomicCell[[]Descriptor] { return h.cell }

type fakeList struct{ items []Descriptor }

func (l *fakeList) Items() []Descriptor     { return append([]Descriptor(nil), l.items...) }
func (l *fakeList) Clear()                  { l.items = nil }
func (l *fakeList) Append(ds ...Descriptor) { l.items = append(l.items, ds...) }

type fakeListHost struct{ list *fakeList }

func (h *fakeListHost) DecorationList() List {
	if h.list == nil {
		return nil
	}
	return h.list
}

type fakeBothHost struct {
	fakeCellHost
	fakeListHost
}

// TestProbe_Layouts verifies which strategy each host layout yields.
func TestProbe_Layouts(t *testing.T) {
	t.Parallel()

	cell := NewAtomicCell[[]Descriptor](nil)
	list := &fakeList{}

	tests := []struct {
		name        string
		host        any
		pref        StrategyPreference
		want        Strategy
		wantAdapter string
	}{
		{name: "cell_host", host: &fakeCellHost{cell: cell}, want: AtomicSwapAvailable, wantAdapter: "cell"},
		{name: "list_host", host: &fakeListHost{list: list}, want: LockedCopyAvailable, wantAdapter: "list"},
		{name: "both_prefers_cell", host: &fakeBothHost{fakeCellHost{cell}, fakeListHost{list}}, want: AtomicSwapAvailable, wantAdapter: "cell"},
		{name: "both_locked_preference", host: &fakeBothHost{fakeCellHost{cell}, fakeListHost{list}}, pref: StrategyLocked, want: LockedCopyAvailable, wantAdapter: "list"},
		{name: "list_atomic_preference", host: &fakeListHost{list: list}, pref: StrategyAtomic, want: Unavailable},
		{name: "cell_host_nil_cell", host: &fakeCellHost{}, want: Unavailable},
		{name: "list_host_nil_list", host: &fakeListHost{}, want: Unavailable},
		{name: "unrelated_host", host: struct{}{}, want: Unavailable},
		{name: "nil_host", host: nil, want: Unavailable},
		{name: "typed_nil_host", host: (*fakeCellHost)(nil), want: Unavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := probe(tt.host, tt.pref, nil)
			assert.Equal(t, tt.want, c.Strategy())
			assert.Equal(t, tt.wantAdapter, c.Adapter())
			if tt.want == Unavailable {
				assert.False(t, c.Available())
				assert.Error(t, c.Err())
			} else {
				assert.True(t, c.Available())
				assert.NoError(t, c.Err())
			}
		})
	}
}

// TestProbe_SwapBoundToCell verifies the AtomicSwap capability exchanges the host cell itself.
func TestProbe_SwapBoundToCell(t *testing.T) {
	t.Parallel()

	cell := NewAtomicCell([]Descriptor{{}})
	c := Probe(&fakeCellHost{cell: cell})
	require.Equal(t, AtomicSwapAvailable, c.Strategy())

	prev := c.swap(nil)
	assert.Len(t, prev, 1)
	assert.Nil(t, cell.Load())
}

// TestProbe_RecoversAdapterPanic verifies a panicking adapter degrades to the next one.
func TestProbe_RecoversAdapterPanic(t *testing.T) {
	t.Parallel()

	boom := NewAdapter("boom", func(any) (Capability, bool) { panic("layout changed") })
	host := &fakeListHost{list: &fakeList{}}

	var c Capability
	require.NotPanics(t, func() { c = Probe(host, boom, ListAdapter) })
	assert.Equal(t, LockedCopyAvailable, c.Strategy())

	c = Probe(host, boom)
	assert.Equal(t, Unavailable, c.Strategy())

	var pe *ProbeError
	require.True(t, errors.As(c.Err(), &pe))
	assert.Equal(t, []string{"boom"}, pe.Tried)
	require.Len(t, pe.Failures, 1)
	assert.Contains(t, pe.Error(), `adapter "boom" panicked: layout changed`)
}

// TestProbe_CustomAdapterName verifies an adapter that leaves the name empty gets its own name.
func TestProbe_CustomAdapterName(t *testing.T) {
	t.Parallel()

	list := &fakeList{}
	custom := NewAdapter("v2-layout", func(any) (Capability, bool) {
		return Capability{strategy: LockedCopyAvailable, list: list}, true
	})

	c := Probe(struct{}{}, nil, custom)
	assert.Equal(t, LockedCopyAvailable, c.Strategy())
	assert.Equal(t, "v2-layout", c.Adapter())
}

// TestProbeError_Message verifies the error text for the empty and populated cases.
func TestProbeError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "probe: no adapters", (&ProbeError{}).Error())
	assert.Equal(t,
		"probe: register not located (tried cell, list)",
		(&ProbeError{Tried: []string{"cell", "list"}}).Error(),
	)
}

// TestStrategy_String verifies the names used in logs.
func TestStrategy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unavailable", Unavailable.String())
	assert.Equal(t, "atomic-swap", AtomicSwapAvailable.String())
	assert.Equal(t, "locked-copy", LockedCopyAvailable.String())
	assert.Equal(t, "strategy(9)", Strategy(9).String())
}
