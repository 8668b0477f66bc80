// Package proxygen is a minimal object-generation subsystem used as the host
// for package decor.
//
// It behaves like a third-party proxy generator: a Factory fabricates a new
// GeneratedType for every Mock, and the only way to influence the decorations
// a fabricated type carries is the shared register kept in Options, which the
// Factory reads exactly once per fabrication.
//
// Options can store the register in one of several layouts (see Layout) so
// that every decor strategy can be exercised:
//
//   - LayoutCell:   register in an atomic cell   -> AtomicSwap
//   - LayoutList:   mutable list view only        -> LockedCopy
//   - LayoutBoth:   both views, same storage      -> either
//   - LayoutSealed: nothing exposed               -> capability unavailable
//
// Decoration values are constructed by Instantiate from a decor.Descriptor:
// struct decorations receive the descriptor arguments positionally in their
// exported fields.
package proxygen
