package decor_test

import (
	"testing"

	"github.com/sghaida/decor/decor"
	"github.com/sghaida/decor/proxygen"
	"github.com/stretchr/testify/require"
)

type Greeter interface{ Greet() string }

type Alpha interface{ A() }

type Beta interface{ B() }

// Tag mirrors a single-value attribute.
type Tag struct{ Value string }

type Foo struct{ Value string }

type Bar struct{ Value string }

type Owner struct {
	Team     string
	Priority int
}

type strategyCase struct {
	name   string
	layout proxygen.Layout
	opts   []decor.Option
	want   decor.Strategy
}

// strategyCases covers every way an Overrider can end up with a usable strategy.
var strategyCases = []strategyCase{
	{name: "atomic_swap", layout: proxygen.LayoutCell, want: decor.AtomicSwapAvailable},
	{name: "locked_copy", layout: proxygen.LayoutList, want: decor.LockedCopyAvailable},
	{
		name:   "locked_copy_forced_on_both",
		layout: proxygen.LayoutBoth,
		opts:   []decor.Option{decor.WithStrategy(decor.StrategyLocked)},
		want:   decor.LockedCopyAvailable,
	},
	{name: "atomic_swap_preferred_on_both", layout: proxygen.LayoutBoth, want: decor.AtomicSwapAvailable},
}

func newOverrider(t *testing.T, tc strategyCase, fopts ...proxygen.FactoryOption) (*decor.Overrider, *proxygen.Factory) {
	t.Helper()
	f := proxygen.NewFactory(proxygen.NewOptions(tc.layout), fopts...)
	o := decor.New(f.Options(), tc.opts...)
	require.Equal(t, tc.want, o.Capability().Strategy())
	return o, f
}

func tagValues[T any](t *testing.T, p *proxygen.Proxy[T]) []string {
	t.Helper()
	require.NotNil(t, p)
	var out []string
	for _, tag := range proxygen.FindAll[Tag](p.Type()) {
		out = append(out, tag.Value)
	}
	return out
}

func mustBuild(t *testing.T, exprs ...decor.Expression) []decor.Descriptor {
	t.Helper()
	ds, err := decor.BuildAll(exprs...)
	require.NoError(t, err)
	return ds
}
