package bindgen

import (
	"fmt"
	"go/ast"
	"go/types"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/witx"
)

// WitgoImportPath is the import path of the runtime types generated code
// refers to.
const WitgoImportPath = "github.com/wippyai/witx-bindgen/witgo"

const witgoPackage = "witgo"

var primitives = map[witx.TypeKind]string{
	witx.KindU8:    "uint8",
	witx.KindU16:   "uint16",
	witx.KindU32:   "uint32",
	witx.KindU64:   "uint64",
	witx.KindS8:    "int8",
	witx.KindS16:   "int16",
	witx.KindS32:   "int32",
	witx.KindS64:   "int64",
	witx.KindF32:   "float32",
	witx.KindF64:   "float64",
	witx.KindChar:  "rune",
	witx.KindCChar: "byte",
	witx.KindUsize: "uintptr",
}

// Mapper turns interface types into Go type expressions.
//
// Map panics with an *errors.Error in the map phase when it meets a type it
// cannot express: buffers, variants of no known shape, dangling indices or
// a cycle through anonymous definitions. Those indicate a generator gap,
// not bad input. TryMap converts them to errors.
//
// A Mapper records which packages its expressions refer to and is not safe
// for concurrent use.
type Mapper struct {
	iface     *witx.Interface
	qualifier string
	visiting  map[witx.TypeID]bool
	uses      map[string]bool
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// Local makes named types and resources unqualified, for code generated
// inside the interface's own package.
func Local() MapperOption {
	return func(m *Mapper) { m.qualifier = "" }
}

// WithQualifier sets the package name named types are qualified with. The
// default is GoPackage of the interface name.
func WithQualifier(pkg string) MapperOption {
	return func(m *Mapper) { m.qualifier = pkg }
}

// NewMapper creates a mapper for types of iface.
func NewMapper(iface *witx.Interface, opts ...MapperOption) *Mapper {
	m := &Mapper{
		iface:     iface,
		qualifier: GoPackage(iface.Name),
		visiting:  make(map[witx.TypeID]bool),
		uses:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interface returns the interface the mapper resolves indices against.
func (m *Mapper) Interface() *witx.Interface {
	return m.iface
}

// Uses returns the package names referenced by the expressions produced so
// far, sorted.
func (m *Mapper) Uses() []string {
	out := make([]string, 0, len(m.uses))
	for pkg := range m.uses {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// Map returns the Go type expression for t. Named definitions are referred
// to by name, never expanded.
func (m *Mapper) Map(t witx.Type) ast.Expr {
	if name, ok := primitives[t.Kind]; ok {
		return ast.NewIdent(name)
	}
	switch t.Kind {
	case witx.KindHandle:
		return &ast.StarExpr{X: m.named(m.resourceName(witx.ResourceID(t.Index)))}
	case witx.KindID:
		id := witx.TypeID(t.Index)
		def := m.typeDef(id)
		if def.Named() {
			return m.named(GoName(def.Name))
		}
		return m.expand(id, def, false)
	default:
		panic(m.fatal(errors.KindInvalidData, "unknown type kind %s", t.Kind))
	}
}

// TryMap is Map with fatal conditions returned as errors.
func (m *Mapper) TryMap(t witx.Type) (expr ast.Expr, err error) {
	defer recoverFatal(&err)
	return m.Map(t), nil
}

// Expr renders the expression for t.
func (m *Mapper) Expr(t witx.Type) string {
	return types.ExprString(m.Map(t))
}

// Definition returns the structural expression of a definition, used as
// the right-hand side of its type declaration. Record fields keep their
// names where they form valid identifiers.
func (m *Mapper) Definition(id witx.TypeID) ast.Expr {
	return m.expand(id, m.typeDef(id), true)
}

// Signature returns the Go function type of f. Several results become
// several return values.
func (m *Mapper) Signature(f *witx.Function) *ast.FuncType {
	ft := &ast.FuncType{Params: &ast.FieldList{}}
	used := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		ft.Params.List = append(ft.Params.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(unique(GoParam(p.Name), used))},
			Type:  m.Map(p.Type),
		})
	}
	if len(f.Results) > 0 {
		ft.Results = &ast.FieldList{}
		for _, r := range f.Results {
			ft.Results.List = append(ft.Results.List, &ast.Field{Type: m.Map(r.Type)})
		}
	}
	return ft
}

// unique returns name, or name with the first free numeric suffix when an
// earlier parameter or field already took it.
func unique(name string, used map[string]bool) string {
	out := name
	for n := 2; used[out]; n++ {
		out = name + strconv.Itoa(n)
	}
	used[out] = true
	return out
}

// Method renders f as an interface method: "Add(a uint32, b uint32) uint32".
func (m *Mapper) Method(f *witx.Function) string {
	return GoName(f.Name) + strings.TrimPrefix(types.ExprString(m.Signature(f)), "func")
}

// TryMethod is Method with fatal conditions returned as errors.
func (m *Mapper) TryMethod(f *witx.Function) (s string, err error) {
	defer recoverFatal(&err)
	return m.Method(f), nil
}

func (m *Mapper) expand(id witx.TypeID, def *witx.TypeDef, declared bool) ast.Expr {
	if m.visiting[id] {
		panic(errors.New(errors.PhaseMap, errors.KindRecursion).
			Path(m.iface.Name, fmt.Sprintf("id(%d)", id)).
			Detail("type refers to itself through anonymous definitions").
			Build())
	}
	m.visiting[id] = true
	defer delete(m.visiting, id)

	switch k := def.Kind.(type) {
	case witx.Alias:
		return m.Map(k.Type)
	case witx.Pointer:
		return &ast.StarExpr{X: m.Map(k.Elem)}
	case witx.ConstPointer:
		return m.witgo("ConstPointer", m.Map(k.Elem))
	case witx.List:
		if k.Elem.Kind == witx.KindChar {
			return ast.NewIdent("string")
		}
		return &ast.ArrayType{Elt: m.Map(k.Elem)}
	case witx.PushBuffer, witx.PullBuffer:
		panic(errors.Unsupported(errors.PhaseMap, witx.KindName(k)+" types are not implemented"))
	case *witx.Record:
		return m.record(k, declared)
	case *witx.Variant:
		return m.variant(k)
	case nil:
		panic(m.fatal(errors.KindInvalidData, "type id(%d) is reserved but never defined", id))
	default:
		panic(m.fatal(errors.KindUnsupported, "unknown definition kind %T", k))
	}
}

func (m *Mapper) record(r *witx.Record, declared bool) ast.Expr {
	fields := &ast.FieldList{}
	used := make(map[string]bool, len(r.Fields))
	for i, f := range r.Fields {
		name := fmt.Sprintf("F%d", i)
		if declared && startsWithLetter(f.Name) {
			name = GoName(f.Name)
		}
		name = unique(name, used)
		fields.List = append(fields.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(name)},
			Type:  m.Map(f.Type),
		})
	}
	return &ast.StructType{Fields: fields}
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func (m *Mapper) variant(v *witx.Variant) ast.Expr {
	switch v.Shape() {
	case witx.ShapeBool:
		return ast.NewIdent("bool")
	case witx.ShapeOption:
		t, _ := witx.AsOption(v.Cases)
		return m.witgo("Option", m.Map(t))
	case witx.ShapeExpected:
		ok, err, _ := witx.AsExpected(v.Cases)
		return m.witgo("Result", m.side(ok), m.side(err))
	default:
		panic(m.fatal(errors.KindUnsupported, "unrecognized variant shape with %d cases", len(v.Cases)))
	}
}

func (m *Mapper) side(t *witx.Type) ast.Expr {
	if t == nil {
		return m.witgoIdent("Unit")
	}
	return m.Map(*t)
}

func (m *Mapper) named(name string) ast.Expr {
	if m.qualifier == "" {
		return ast.NewIdent(name)
	}
	m.uses[m.qualifier] = true
	return &ast.SelectorExpr{X: ast.NewIdent(m.qualifier), Sel: ast.NewIdent(name)}
}

func (m *Mapper) witgoIdent(name string) ast.Expr {
	m.uses[witgoPackage] = true
	return &ast.SelectorExpr{X: ast.NewIdent(witgoPackage), Sel: ast.NewIdent(name)}
}

func (m *Mapper) witgo(name string, args ...ast.Expr) ast.Expr {
	x := m.witgoIdent(name)
	if len(args) == 1 {
		return &ast.IndexExpr{X: x, Index: args[0]}
	}
	return &ast.IndexListExpr{X: x, Indices: args}
}

func (m *Mapper) typeDef(id witx.TypeID) *witx.TypeDef {
	def, ok := m.iface.TypeDef(id)
	if !ok {
		panic(errors.OutOfBounds(errors.PhaseMap, []string{m.iface.Name, "types"}, int(id), len(m.iface.Types)))
	}
	return def
}

func (m *Mapper) resourceName(id witx.ResourceID) string {
	res, ok := m.iface.Resource(id)
	if !ok {
		panic(errors.OutOfBounds(errors.PhaseMap, []string{m.iface.Name, "resources"}, int(id), len(m.iface.Resources)))
	}
	return GoName(res.Name)
}

func (m *Mapper) fatal(kind errors.Kind, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseMap, kind).Path(m.iface.Name).Detail(format, args...).Build()
}

// recoverFatal turns a map-phase *errors.Error panic into *err. Other
// panics continue.
func recoverFatal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*errors.Error); ok && e.Phase == errors.PhaseMap {
		*err = e
		return
	}
	panic(r)
}
