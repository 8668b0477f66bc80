// Command decorgen generates typed decoration helpers for decor.
//
// A test suite usually applies the same few decoration sets again and again:
// an owner tag on every payments mock, a retry budget on every client proxy.
// Writing the decor.Construct expressions at every call site is noisy and easy
// to get subtly wrong (argument order, a missing decoration). decorgen moves
// those sets into a small spec file and emits one helper per set.
//
// Usage
//
//	//go:generate go run github.com/sghaida/decor/cmd/decorgen -spec tags.decor.yaml -out tags.gen.go
//
//	decorgen -spec <file.decor.json|file.decor.yaml> -out <file.gen.go> [-v]
//
// Flags:
//
//   - -spec  decoration spec; YAML when the extension is .yaml or .yml, JSON otherwise
//   - -out   generated Go file (written atomically, gofmt'ed)
//   - -v     development logging of each generation step
//
// Exit codes: 0 on success, 1 on a generation error, 2 on bad usage.
//
// Spec format
//
//	package: svc
//	imports:
//	  decor: github.com/sghaida/decor/decor   # optional, inferred when empty
//	  extra:
//	    - path: github.com/acme/proj/tags
//	helpers:
//	  - name: PaymentsOwned
//	    doc: Marks the proxy as owned by the payments team.
//	    decorations:
//	      - type: tags.Owner
//	        args: ['"payments"', "2"]
//	      - type: tags.Stamp
//	        args: ["time.Now().Unix()"]
//	        lazy: true
//
// Types and arguments are Go expressions and are copied verbatim into the
// generated code. With lazy: true every argument is wrapped in decor.Lazy so it
// is evaluated on each call instead of once.
//
// Generated code
//
// For each helper the output contains:
//
//	func PaymentsOwnedDecorations() []decor.Expression
//	func PaymentsOwned[T any](o *decor.Overrider, target decor.Target[T]) (T, error)
//
// Decorations keep the order written in the spec; duplicates are kept.
// Helpers are emitted sorted by name so regeneration is stable.
//
// Import inference
//
// The decor import is taken from imports.decor, else from an import aliased
// decor (or ending in /decor) in the package's non-generated sources, else
// from the module that contains decorgen itself. Imports already present in
// an existing output file are preserved.
package main
