package decor_test

import (
	"testing"

	"github.com/sghaida/decor/decor"
	"github.com/sghaida/decor/proxygen"
)

/*
   Shared helpers (NOT counted in benchmarks)
*/

func newBenchOverrider(b *testing.B, layout proxygen.Layout, opts ...decor.Option) (*decor.Overrider, *proxygen.Factory) {
	b.Helper()
	f := proxygen.NewFactory(proxygen.NewOptions(layout))
	o := decor.New(f.Options(), opts...)
	if !o.Capability().Available() {
		b.Fatalf("capability unavailable for layout %s", layout)
	}
	return o, f
}

/*
   Benchmarks
*/

func BenchmarkBuild_TwoArgs(b *testing.B) {
	expr := decor.Construct[Owner]("team", 1)
	for i := 0; i < b.N; i++ {
		_, _ = decor.Build(expr)
	}
}

func BenchmarkWithDecorations_AtomicSwap(b *testing.B) {
	o, f := newBenchOverrider(b, proxygen.LayoutCell)
	expr := decor.Construct[Tag]("x")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = decor.WithDecorations(o, proxygen.NewMock[Greeter](f), expr)
	}
}

func BenchmarkWithDecorations_AtomicSwapUnisolated(b *testing.B) {
	o, f := newBenchOverrider(b, proxygen.LayoutCell, decor.WithIsolation(decor.IsolationNone))
	expr := decor.Construct[Tag]("x")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = decor.WithDecorations(o, proxygen.NewMock[Greeter](f), expr)
	}
}

func BenchmarkWithDecorations_LockedCopy(b *testing.B) {
	o, f := newBenchOverrider(b, proxygen.LayoutList)
	f.Options().Add(mustBuildB(b, decor.Construct[Tag]("baseline"), decor.Construct[Foo]("baseline"))...)
	expr := decor.Construct[Tag]("x")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = decor.WithDecorations(o, proxygen.NewMock[Greeter](f), expr)
	}
}

func BenchmarkWithDecorations_LockedCopyParallel(b *testing.B) {
	o, f := newBenchOverrider(b, proxygen.LayoutList)
	expr := decor.Construct[Tag]("x")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = decor.WithDecorations(o, proxygen.NewMock[Greeter](f), expr)
		}
	})
}

func mustBuildB(b *testing.B, exprs ...decor.Expression) []decor.Descriptor {
	b.Helper()
	ds, err := decor.BuildAll(exprs...)
	if err != nil {
		b.Fatal(err)
	}
	return ds
}
