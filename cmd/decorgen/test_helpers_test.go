package main

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// minimalSpecJSON returns a spec that passes validateSpec and pins the decor
// import so generation does not depend on inference.
func minimalSpecJSON() string {
	return `{
  "package": "svc",
  "imports": {
    "decor": "github.com/sghaida/decor/decor",
    "extra": [{ "path": "example.com/project/tags" }]
  },
  "helpers": [
    {
      "name": "PaymentsOwned",
      "doc": "Marks the proxy as owned by payments.",
      "decorations": [
        { "type": "tags.Owner", "args": ["\"payments\"", "2"] },
        { "type": "tags.Tag", "args": ["\"x\""] },
        { "type": "tags.Tag", "args": ["\"x\""] }
      ]
    }
  ]
}`
}

// minimalSpecYAML is the YAML rendition of a two-helper spec.
func minimalSpecYAML() string {
	return `package: svc
imports:
  decor: github.com/sghaida/decor/decor
  extra:
    - path: time
    - name: t
      path: example.com/project/tags
helpers:
  - name: Stamped
    decorations:
      - type: t.Stamp
        args: ["time.Now().Unix()"]
        lazy: true
  - name: Audited
    decorations:
      - type: t.Tag
        args: ['"audit"']
`
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// requireParses asserts src is syntactically valid Go.
func requireParses(t *testing.T, src string) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.AllErrors)
	require.NoError(t, err, src)
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
	written  []byte
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// withFileHooks swaps the file operation hooks for the duration of the test.
func withFileHooks(t *testing.T, create func(dir, pattern string) (tempFile, error), rename func(string, string) error, removed *[]string) {
	t.Helper()

	origCreate, origChmod, origRename, origRemove := createTempFile, chmodFile, renameFile, removeFile
	t.Cleanup(func() {
		createTempFile, chmodFile, renameFile, removeFile = origCreate, origChmod, origRename, origRemove
	})

	if create != nil {
		createTempFile = create
	}
	chmodFile = func(string, os.FileMode) error { return nil }
	if rename != nil {
		renameFile = rename
	}
	removeFile = func(p string) error {
		*removed = append(*removed, p)
		return nil
	}
}
