package bindgen

import (
	"bytes"
	"go/types"
	"path"
	"sort"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/witx"
)

// File is one generated Go source file.
type File struct {
	Name    string
	Package string
	Source  []byte
}

// Generator emits Go bindings and placeholder implementations.
type Generator struct {
	// ImportPrefix is prepended to the package name of an interface to form
	// its import path. Empty means the bare package name.
	ImportPrefix string

	// Format runs the output through goimports formatting. Formatting
	// failures are ignored and the unformatted source is kept.
	Format bool
}

// ImportPath returns the import path of the package generated for iface.
func (g *Generator) ImportPath(iface *witx.Interface) string {
	pkg := GoPackage(iface.Name)
	if g.ImportPrefix == "" {
		return pkg
	}
	return path.Join(g.ImportPrefix, pkg)
}

type typeDecl struct {
	Name   string
	Source string
	Expr   string
}

type method struct {
	Name string
	Sig  string
}

type bindingsData struct {
	Package   string
	Source    string
	Imports   []string
	Types     []typeDecl
	Resources []string
	Contract  string
	Methods   []method
}

// Bindings emits the package of one interface: a declaration for every
// named type, a handle struct for every resource and, when the interface
// has functions, the Go interface that implementations satisfy.
func (g *Generator) Bindings(iface *witx.Interface) (f *File, err error) {
	defer recoverFatal(&err)

	m := NewMapper(iface, Local())
	data := bindingsData{
		Package: GoPackage(iface.Name),
		Source:  iface.Name,
	}
	declared := make(map[string]bool)
	for _, id := range iface.NamedTypes() {
		def, _ := iface.TypeDef(id)
		name := GoName(def.Name)
		if declared[name] {
			continue
		}
		declared[name] = true
		data.Types = append(data.Types, typeDecl{
			Name:   name,
			Source: def.Name,
			Expr:   types.ExprString(m.Definition(id)),
		})
	}
	for _, r := range iface.Resources {
		name := GoName(r.Name)
		if declared[name] {
			continue
		}
		declared[name] = true
		data.Resources = append(data.Resources, name)
	}
	if len(iface.Functions) > 0 {
		data.Contract = contractName(iface)
		data.Methods = methods(m, iface)
	}
	data.Imports = g.importPaths(map[string]string{}, m)

	return g.render(bindingsTemplate, "bindings.go", data.Package, data)
}

type stub struct {
	Type     string
	Var      string
	Accessor string
	Contract string
	Methods  []method
}

type stubsData struct {
	Package string
	Imports []string
	Stubs   []stub
}

// Stubs emits, into package pkg, one accessor per interface with at least
// one function. The accessor returns a shared implementation whose method
// bodies never return. The stubs exist so that generated harness code
// type-checks; they are not meant to be called.
func (g *Generator) Stubs(pkg string, ifaces ...*witx.Interface) (f *File, err error) {
	defer recoverFatal(&err)

	data := stubsData{Package: pkg}
	paths := make(map[string]string)
	byPackage := make(map[string]string)
	for _, iface := range ifaces {
		if len(iface.Functions) == 0 {
			continue
		}
		m := NewMapper(iface)
		qualifier := GoPackage(iface.Name)
		accessor := ContractName(iface.Name)
		// the accessor is derived from the same words as the package, so
		// distinct packages imply distinct accessors
		if prev, ok := byPackage[qualifier]; ok {
			return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
				Path(pkg, "extra.go").
				Value(qualifier).
				Detail("interfaces %q and %q both map to Go package %s", prev, iface.Name, qualifier).
				Build()
		}
		byPackage[qualifier] = iface.Name

		typ := lowerFirst(accessor) + "Stub"
		data.Stubs = append(data.Stubs, stub{
			Type:     typ,
			Var:      typ + "Impl",
			Accessor: accessor,
			Contract: qualifier + "." + contractName(iface),
			Methods:  methods(m, iface),
		})
		paths[qualifier] = g.ImportPath(iface)
		g.importPaths(paths, m)
	}
	data.Imports = sortedValues(paths)

	return g.render(stubsTemplate, "extra.go", pkg, data)
}

// contractName names the Go interface of iface. When a named type or
// resource of the interface already takes the name, "Interface" is appended
// until it is free.
func contractName(iface *witx.Interface) string {
	taken := make(map[string]bool)
	for _, id := range iface.NamedTypes() {
		def, _ := iface.TypeDef(id)
		taken[GoName(def.Name)] = true
	}
	for _, r := range iface.Resources {
		taken[GoName(r.Name)] = true
	}
	name := ContractName(iface.Name)
	for taken[name] {
		name += "Interface"
	}
	return name
}

func methods(m *Mapper, iface *witx.Interface) []method {
	out := make([]method, 0, len(iface.Functions))
	for i := range iface.Functions {
		fn := &iface.Functions[i]
		out = append(out, method{
			Name: GoName(fn.Name),
			Sig:  strings.TrimPrefix(types.ExprString(m.Signature(fn)), "func"),
		})
	}
	return out
}

// importPaths adds the packages m referred to into paths and returns the
// sorted paths.
func (g *Generator) importPaths(paths map[string]string, m *Mapper) []string {
	for _, pkg := range m.Uses() {
		if pkg == witgoPackage {
			paths[pkg] = WitgoImportPath
			continue
		}
		if _, ok := paths[pkg]; !ok {
			paths[pkg] = g.ImportPath(m.Interface())
		}
	}
	return sortedValues(paths)
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func (g *Generator) render(t *template.Template, name, pkg string, data any) (*File, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Path(pkg, name).
			Cause(err).
			Detail("executing template").
			Build()
	}
	src := buf.Bytes()
	if g.Format {
		src = Format(name, src)
	}
	return &File{Name: name, Package: pkg, Source: src}, nil
}

// Format formats generated source. On failure src is returned unchanged.
func Format(filename string, src []byte) []byte {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		Logger().Debug("formatting generated source failed",
			zap.String("file", filename),
			zap.Error(err))
		return src
	}
	return out
}

const header = `// Code generated by witx-bindgen. DO NOT EDIT.
`

var bindingsTemplate = template.Must(template.New("bindings").Parse(header + `
// Package {{.Package}} holds the bindings of the {{.Source}} interface.
package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}{{range .Types}}
// {{.Name}} is the {{.Source}} type.
type {{.Name}} {{.Expr}}
{{end}}{{range .Resources}}
// {{.}} is a handle to a resource owned by the other side.
type {{.}} struct {
	Handle uint32
}
{{end}}{{if .Contract}}
// {{.Contract}} is implemented by providers of the {{.Source}} interface.
type {{.Contract}} interface {
{{range .Methods}}	{{.Name}}{{.Sig}}
{{end}}}
{{end}}`))

var stubsTemplate = template.Must(template.New("stubs").Parse(header + `
package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}{{range .Stubs}}{{$type := .Type}}
type {{.Type}} struct{}
{{range .Methods}}
func (*{{$type}}) {{.Name}}{{.Sig}} {
	for {
	}
}
{{end}}
var {{.Var}} {{.Type}}

// {{.Accessor}} returns a placeholder {{.Contract}} whose methods never return.
func {{.Accessor}}() {{.Contract}} {
	return &{{.Var}}
}
{{end}}`))
