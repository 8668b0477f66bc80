// Package decor provides scoped decoration overrides for shared generation hosts.
//
// A generation host (a mock/proxy factory, a codegen registry) keeps one
// process-wide register of decorations that it applies to every type it
// fabricates. Tests often need a single fabricated type to carry extra
// decorations without leaking them into everything else built from the same
// host. This repository provides that, safely under concurrency:
//
//   - decor: the runtime (descriptors, capability probe, WithDecorations, config)
//   - proxygen: a reference generation host with cell and list register layouts
//   - cmd/decorgen: a code generator for typed decoration helpers
//   - examples/tags: a runnable end-to-end example
//
// Start with the decor package documentation and examples/tags.
package decor
