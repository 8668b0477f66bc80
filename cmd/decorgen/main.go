// decor/cmd/decorgen/main.go
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/template"

	"github.com/sghaida/decor/decor"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// This binary is a code-generation tool.
//
// It reads a decoration spec (JSON or YAML) naming sets of decorations and
// generates one typed helper per set. Each helper calls decor.WithDecorations
// with its fixed decoration list, so test code can write
//
//	svc, err := PaymentsOwned(o, mock)
//
// instead of repeating the decor.Construct expressions at every call site.
//
// Key behaviors:
// - Reads spec JSON or YAML (chosen by file extension)
// - Validates every type and argument as a Go expression
// - Keeps decoration order exactly as written; helpers are emitted sorted by name
// - Infers the decor runtime import from package sources or the generator's own module
// - Preserves imports already present in a previous output file
// - Writes gofmt'ed output atomically (temp file + rename)

// GoImport models one Go import: optional alias and full import path.
type GoImport struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Imports defines packages referenced by the generated code.
type Imports struct {
	// Decor overrides the inferred import path of the decor runtime package.
	Decor string `json:"decor" yaml:"decor"`

	// Extra lists packages referenced by decoration types or arguments.
	Extra []GoImport `json:"extra" yaml:"extra"`
}

// DecorationSpec describes one decoration construction.
type DecorationSpec struct {
	// Type is the Go type of the decoration, e.g. "tags.Owner" or "Tag".
	Type string `json:"type" yaml:"type"`

	// Args are Go expressions passed positionally to the decoration.
	Args []string `json:"args" yaml:"args"`

	// Lazy wraps every argument in decor.Lazy so it is evaluated per call.
	Lazy bool `json:"lazy" yaml:"lazy"`
}

// HelperSpec describes one generated helper and its decoration set.
type HelperSpec struct {
	Name        string           `json:"name" yaml:"name"`
	Doc         string           `json:"doc" yaml:"doc"`
	Decorations []DecorationSpec `json:"decorations" yaml:"decorations"`
}

// Spec is the full input schema consumed by the generator.
type Spec struct {
	Package string       `json:"package" yaml:"package"`
	Imports Imports      `json:"imports" yaml:"imports"`
	Helpers []HelperSpec `json:"helpers" yaml:"helpers"`
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec     Spec
	SpecPath string
	SpecHash string
	Imports  []GoImport
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("decorgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	specPath := flags.String("spec", "", "path to file.decor.json or file.decor.yaml")
	outPath := flags.String("out", "", "output .gen.go file path")
	verbose := flags.Bool("v", false, "log generation steps")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*specPath) == "" || strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: decorgen -spec <file.decor.json|yaml> -out <file.gen.go> [-v]")
		return 2
	}

	mode := "nop"
	if *verbose {
		mode = "dev"
	}
	log, err := decor.NewLogger(mode)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "decorgen:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if err := generate(*specPath, filepath.Clean(*outPath), log); err != nil {
		_, _ = fmt.Fprintln(stderr, "decorgen:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// generate reads specPath and writes the formatted helpers to outPath.
func generate(specPath, outPath string, log *zap.Logger) error {
	raw, err := os.ReadFile(specPath)
	if err != nil {
		return err
	}

	spec, err := decodeSpec(specPath, raw)
	if err != nil {
		return err
	}
	if err := validateSpec(&spec); err != nil {
		return err
	}

	if err := inferImports(&spec, outPath); err != nil {
		return err
	}
	log.Debug("decorgen: spec loaded",
		zap.String("spec", specPath),
		zap.Int("helpers", len(spec.Helpers)),
		zap.String("decor", spec.Imports.Decor),
	)

	// Helpers are sorted for stable output. Decorations are never reordered.
	sort.Slice(spec.Helpers, func(i, j int) bool { return spec.Helpers[i].Name < spec.Helpers[j].Name })

	required := []GoImport{{Name: "decor", Path: spec.Imports.Decor}}
	required = append(required, spec.Imports.Extra...)
	preserved := readImportsFromExistingOut(outPath)

	data := templateData{
		Spec:     spec,
		SpecPath: filepath.ToSlash(specPath),
		SpecHash: sha256Hex(raw),
		Imports:  mergeImports(required, preserved),
	}

	var out bytes.Buffer
	if err := genTemplate.Execute(&out, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	src, err := format.Source(out.Bytes())
	if err != nil {
		return fmt.Errorf("gofmt generated source: %w", err)
	}
	if err := writeFileAtomic(outPath, src, 0o644); err != nil {
		return err
	}

	log.Info("decorgen: generated", zap.String("out", outPath), zap.Int("bytes", len(src)))
	return nil
}

// decodeSpec parses raw as YAML for .yaml/.yml paths and as JSON otherwise.
func decodeSpec(specPath string, raw []byte) (Spec, error) {
	var spec Spec
	switch strings.ToLower(filepath.Ext(specPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &spec); err != nil {
			return Spec{}, fmt.Errorf("decode yaml spec %s: %w", specPath, err)
		}
	default:
		if err := json.Unmarshal(raw, &spec); err != nil {
			return Spec{}, fmt.Errorf("decode json spec %s: %w", specPath, err)
		}
	}
	return spec, nil
}

// validateSpec validates semantic correctness of the input specification.
func validateSpec(spec *Spec) error {
	var missing []string
	if strings.TrimSpace(spec.Package) == "" {
		missing = append(missing, "package")
	}
	if len(spec.Helpers) == 0 {
		missing = append(missing, "helpers (must have at least 1)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("spec missing required fields: %v", missing)
	}
	if !token.IsIdentifier(spec.Package) {
		return fmt.Errorf("package %q is not a valid identifier", spec.Package)
	}

	seen := make(map[string]struct{}, len(spec.Helpers))
	for _, h := range spec.Helpers {
		if !token.IsIdentifier(h.Name) {
			return fmt.Errorf("helper name %q is not a valid identifier", h.Name)
		}
		if _, dup := seen[h.Name]; dup {
			return fmt.Errorf("duplicate helper name: %s", h.Name)
		}
		seen[h.Name] = struct{}{}

		if len(h.Decorations) == 0 {
			return fmt.Errorf("helper %s: %w", h.Name, decor.ErrNoDecorations)
		}
		for i, d := range h.Decorations {
			if strings.TrimSpace(d.Type) == "" {
				return fmt.Errorf("helper %s: decoration %d: missing type", h.Name, i)
			}
			if _, err := parser.ParseExpr(d.Type); err != nil {
				return fmt.Errorf("helper %s: decoration %d: invalid type %q: %w", h.Name, i, d.Type, err)
			}
			for j, a := range d.Args {
				if _, err := parser.ParseExpr(a); err != nil {
					return fmt.Errorf("helper %s: decoration %d: invalid argument %d %q: %w", h.Name, i, j, a, err)
				}
			}
		}
	}

	for _, gi := range spec.Imports.Extra {
		if strings.TrimSpace(gi.Path) == "" {
			return errors.New("imports.extra: empty import path")
		}
		if gi.Name != "" && gi.Name != "_" && gi.Name != "." && !token.IsIdentifier(gi.Name) {
			return fmt.Errorf("imports.extra: invalid alias %q", gi.Name)
		}
	}
	return nil
}

// -------------------------
// Import inference
// -------------------------
//
// The decor runtime import is resolved in this order:
// (1) imports.decor from the spec,
// (2) an import aliased "decor" or ending in "/decor" in the package sources,
// (3) the decor package of the module that contains this generator.

func inferImports(spec *Spec, outPath string) error {
	spec.Imports.Decor = strings.TrimSpace(spec.Imports.Decor)
	if spec.Imports.Decor != "" {
		return nil
	}

	scanned := scanPackageImports(filepath.Dir(outPath))
	if gi, ok := findImportByAliasOrSuffix(scanned, "decor", "/decor"); ok {
		spec.Imports.Decor = gi.Path
		return nil
	}

	p, err := inferRuntimeImportFromGeneratorModule("decor")
	if err != nil {
		return err
	}
	spec.Imports.Decor = p
	return nil
}

// inferRuntimeImportFromGeneratorModule computes the import path of the runtime
// package based on the go.mod of the module that contains this generator.
func inferRuntimeImportFromGeneratorModule(runtimePkgRel string) (string, error) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", &cmdError{msg: "cannot infer decor runtime import: runtime.Caller failed"}
	}

	modRoot, modPath, err := findModule(filepath.Dir(thisFile))
	if err != nil {
		return "", fmt.Errorf("cannot infer decor runtime import: %w", err)
	}

	runtimeAbs := filepath.Join(modRoot, filepath.FromSlash(runtimePkgRel))
	if !dirExists(runtimeAbs) {
		return "", &cmdError{msg: "cannot infer decor runtime import: expected runtime package dir at " + filepath.ToSlash(runtimeAbs)}
	}
	return modPath + "/" + filepath.ToSlash(runtimePkgRel), nil
}

// -------------------------
// go.mod helpers
// -------------------------

type cmdError struct{ msg string }

func (e *cmdError) Error() string { return e.msg }

func findModule(startDir string) (modRoot string, modPath string, err error) {
	dir := startDir
	for {
		gomod := filepath.Join(dir, "go.mod")
		if fileExists(gomod) {
			b, rerr := os.ReadFile(gomod)
			if rerr != nil {
				return "", "", rerr
			}
			for _, ln := range strings.Split(string(b), "\n") {
				ln = strings.TrimSpace(ln)
				if strings.HasPrefix(ln, "module ") {
					mod := strings.Trim(strings.TrimSpace(strings.TrimPrefix(ln, "module ")), `"`)
					if mod == "" {
						return "", "", &cmdError{msg: "go.mod has empty module path at " + filepath.ToSlash(gomod)}
					}
					return dir, mod, nil
				}
			}
			return "", "", &cmdError{msg: "go.mod missing module directive at " + filepath.ToSlash(gomod)}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", &cmdError{msg: "could not find go.mod starting from " + filepath.ToSlash(startDir)}
}

func dirExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// -------------------------
// Import scanning and preservation
// -------------------------

// scanPackageImports reads imports from all non-generated .go files in pkgDir
// (excluding *_test.go and *.gen.go) and returns them sorted and deduplicated.
func scanPackageImports(pkgDir string) []GoImport {
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return nil
	}

	var out []GoImport
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if strings.HasSuffix(name, ".gen.go") || strings.HasSuffix(name, "_gen.go") {
			continue
		}

		full := filepath.Join(pkgDir, name)
		f, perr := parser.ParseFile(fset, full, nil, parser.ImportsOnly)
		if perr != nil {
			continue
		}
		out = append(out, importsOf(f.Imports)...)
	}
	return dedupeAndSortImports(out)
}

// findImportByAliasOrSuffix prefers an alias match, then a path suffix match.
func findImportByAliasOrSuffix(imports []GoImport, preferAlias, preferSuffix string) (GoImport, bool) {
	if preferAlias != "" {
		for _, gi := range imports {
			if gi.Name == preferAlias {
				return gi, true
			}
		}
	}
	if preferSuffix != "" {
		for _, gi := range imports {
			if strings.HasSuffix(gi.Path, preferSuffix) {
				return gi, true
			}
		}
	}
	return GoImport{}, false
}

// readImportsFromExistingOut keeps imports a user added to a previous output.
func readImportsFromExistingOut(outPath string) []GoImport {
	if !fileExists(outPath) {
		return nil
	}
	f, err := parser.ParseFile(token.NewFileSet(), outPath, nil, parser.ImportsOnly)
	if err != nil {
		return nil
	}
	return importsOf(f.Imports)
}

func importsOf(specs []*ast.ImportSpec) []GoImport {
	out := make([]GoImport, 0, len(specs))
	for _, imp := range specs {
		gi := GoImport{Path: strings.Trim(imp.Path.Value, "\"`")}
		if imp.Name != nil {
			gi.Name = imp.Name.Name
		}
		out = append(out, gi)
	}
	return out
}

func mergeImports(required []GoImport, preserved []GoImport) []GoImport {
	byPath := make(map[string]bool, len(required))
	byName := make(map[string]bool, len(required))
	out := make([]GoImport, 0, len(required)+len(preserved))
	for _, gi := range required {
		out = append(out, gi)
		byPath[gi.Path] = true
		if gi.Name != "" {
			byName[gi.Name] = true
		}
	}
	for _, gi := range preserved {
		// required imports win over stale entries for the same path or alias
		if byPath[gi.Path] || (gi.Name != "" && byName[gi.Name]) {
			continue
		}
		out = append(out, gi)
	}
	return dedupeAndSortImports(out)
}

func dedupeAndSortImports(imps []GoImport) []GoImport {
	seen := make(map[GoImport]bool, len(imps))
	out := make([]GoImport, 0, len(imps))
	for _, gi := range imps {
		if seen[gi] {
			continue
		}
		seen[gi] = true
		out = append(out, gi)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].Name < out[j].Name
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// -------------------------
// Misc helpers
// -------------------------

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes to a temporary file in the target directory and then
// renames it over targetPath, so readers never observe a partial file.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	tmpFile, err := createTempFile(filepath.Dir(targetPath), filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}

// -------------------------
// Template
// -------------------------

func lazyArg(expr string) string {
	return "decor.Lazy(func() any { return " + expr + " })"
}

func argList(d DecorationSpec) string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		if d.Lazy {
			args[i] = lazyArg(a)
			continue
		}
		args[i] = a
	}
	return strings.Join(args, ", ")
}

func docLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\n")
}

var genTemplate = template.Must(template.New("decorgen").Funcs(template.FuncMap{
	"argList":  argList,
	"docLines": docLines,
}).Parse(`// Code generated by decorgen; DO NOT EDIT.
// Spec: {{ .SpecPath }}
// Spec-SHA256: {{ .SpecHash }}

package {{ .Spec.Package }}

import (
{{- range .Imports }}
	{{ if .Name }}{{ .Name }} {{ end }}"{{ .Path }}"
{{- end }}
)
{{ range .Spec.Helpers }}
// {{ .Name }}Decorations returns the decoration set applied by {{ .Name }}, in order.
func {{ .Name }}Decorations() []decor.Expression {
	return []decor.Expression{
{{- range .Decorations }}
		decor.Construct[{{ .Type }}]({{ argList . }}),
{{- end }}
	}
}

// {{ .Name }} fabricates target with the {{ .Name }} decorations added to the
// register of o for the duration of the call.
{{- with docLines .Doc }}
//
{{- range . }}
// {{ . }}
{{- end }}
{{- end }}
func {{ .Name }}[T any](o *decor.Overrider, target decor.Target[T]) (T, error) {
	return decor.WithDecorations(o, target, {{ .Name }}Decorations()...)
}
{{ end }}`))
