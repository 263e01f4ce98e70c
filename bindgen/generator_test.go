package bindgen_test

import (
	stderrors "errors"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/witx"
)

func calculator() *witx.Interface {
	iface := witx.NewInterface("calculator")
	iface.AddFunction(witx.Function{
		Name:    "add",
		Params:  []witx.Param{{Name: "a", Type: witx.U32}, {Name: "b", Type: witx.U32}},
		Results: []witx.Param{{Type: witx.U32}},
	})
	return iface
}

func filesystem() *witx.Interface {
	iface := witx.NewInterface("wasi:fs")
	errno := iface.AddNamedType("errno", witx.Alias{Type: witx.U16})
	iface.AddNamedType("stat", &witx.Record{Fields: []witx.Field{
		{Name: "size", Type: witx.U64},
		{Name: "mode", Type: witx.U32},
	}})
	bytes := iface.AddType(witx.List{Elem: witx.U8})
	fd := iface.AddResource("descriptor")
	result := iface.AddType(&witx.Variant{Cases: []witx.Case{
		{Name: "ok", Type: &bytes},
		{Name: "err", Type: &errno},
	}})
	iface.AddFunction(witx.Function{
		Name:    "read",
		Params:  []witx.Param{{Name: "fd", Type: fd}, {Name: "len", Type: witx.U32}},
		Results: []witx.Param{{Type: result}},
	})
	return iface
}

func parse(t *testing.T, f *bindgen.File) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Source, parser.AllErrors)
	require.NoError(t, err, "generated source:\n%s", f.Source)
}

func TestBindingsCalculator(t *testing.T) {
	g := &bindgen.Generator{}
	f, err := g.Bindings(calculator())
	require.NoError(t, err)
	parse(t, f)

	src := string(f.Source)
	assert.Equal(t, "bindings.go", f.Name)
	assert.Equal(t, "calculator", f.Package)
	assert.Contains(t, src, "package calculator\n")
	assert.Contains(t, src, "type Calculator interface {\n\tAdd(a uint32, b uint32) uint32\n}")
	assert.NotContains(t, src, "import")
}

func TestBindingsTypesAndResources(t *testing.T) {
	for _, format := range []bool{false, true} {
		g := &bindgen.Generator{Format: format}
		f, err := g.Bindings(filesystem())
		require.NoError(t, err)
		parse(t, f)

		src := string(f.Source)
		assert.Contains(t, src, "package fs\n")
		assert.Contains(t, src, `"github.com/wippyai/witx-bindgen/witgo"`)
		assert.Contains(t, src, "type Errno uint16")
		assert.Contains(t, src, "type Descriptor struct {\n\tHandle uint32\n}")
		assert.Contains(t, src, "type Fs interface {")
		assert.Contains(t, src, "Read(fd *Descriptor, len uint32) witgo.Result[[]uint8, Errno]")
		if !format {
			assert.Contains(t, src, "type Stat struct{Size uint64; Mode uint32}")
		}
	}
}

func TestBindingsWithoutFunctions(t *testing.T) {
	iface := witx.NewInterface("types")
	iface.AddNamedType("size", witx.Alias{Type: witx.Usize})

	f, err := (&bindgen.Generator{}).Bindings(iface)
	require.NoError(t, err)
	parse(t, f)
	assert.Contains(t, string(f.Source), "type Size uintptr")
	assert.NotContains(t, string(f.Source), "interface {")
}

func TestBindingsUnsupported(t *testing.T) {
	iface := witx.NewInterface("io")
	buf := iface.AddType(witx.PushBuffer{Elem: witx.U8})
	iface.AddFunction(witx.Function{Name: "fill", Params: []witx.Param{{Name: "buf", Type: buf}}})

	f, err := (&bindgen.Generator{}).Bindings(iface)
	assert.Nil(t, f)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindUnsupported, e.Kind)
}

func TestStubsCalculator(t *testing.T) {
	g := &bindgen.Generator{ImportPrefix: "example.com/gen"}
	f, err := g.Stubs("harness", calculator())
	require.NoError(t, err)
	parse(t, f)

	src := string(f.Source)
	assert.Equal(t, "extra.go", f.Name)
	assert.Contains(t, src, "package harness\n")
	assert.Contains(t, src, `"example.com/gen/calculator"`)
	assert.Contains(t, src, "func (*calculatorStub) Add(a uint32, b uint32) uint32 {\n\tfor {\n\t}\n}")
	assert.Contains(t, src, "var calculatorStubImpl calculatorStub")
	assert.Contains(t, src, "func Calculator() calculator.Calculator {\n\treturn &calculatorStubImpl\n}")
}

func TestStubsSeveralInterfaces(t *testing.T) {
	empty := witx.NewInterface("empty")
	def := witx.NewInterface(witx.DefaultInterfaceName)
	def.AddFunction(witx.Function{Name: "run"})

	g := &bindgen.Generator{ImportPrefix: "example.com/gen", Format: true}
	f, err := g.Stubs("harness", calculator(), filesystem(), empty, def)
	require.NoError(t, err)
	parse(t, f)

	src := string(f.Source)
	assert.Contains(t, src, `"example.com/gen/defaultpkg"`)
	assert.Contains(t, src, `"example.com/gen/fs"`)
	assert.Contains(t, src, `"github.com/wippyai/witx-bindgen/witgo"`)
	assert.NotContains(t, src, `"example.com/gen/empty"`)
	assert.Contains(t, src, "func Default() defaultpkg.Default {")
	assert.Contains(t, src, "func Fs() fs.Fs {")
	assert.Contains(t, src, "Read(fd *fs.Descriptor, len uint32) witgo.Result[[]uint8, fs.Errno] {")
	assert.NotContains(t, src, "Empty()")
}

func TestStubsPackageCollision(t *testing.T) {
	streams := func(name string) *witx.Interface {
		iface := witx.NewInterface(name)
		iface.AddFunction(witx.Function{Name: "read", Results: []witx.Param{{Type: witx.U64}}})
		return iface
	}

	tests := []struct {
		name  string
		a, b  string
		value string
	}{
		{"same base name", "wasi:io/streams", "my:io/streams", "streams"},
		{"separators dropped", "foo-bar", "foobar", "foobar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := (&bindgen.Generator{}).Stubs("harness", streams(tt.a), streams(tt.b))
			assert.Nil(t, f)
			var e *errors.Error
			require.True(t, stderrors.As(err, &e))
			assert.Equal(t, errors.PhaseGenerate, e.Phase)
			assert.Equal(t, errors.KindInvalidInput, e.Kind)
			assert.Equal(t, tt.value, e.Value)
			assert.Contains(t, e.Detail, tt.a)
			assert.Contains(t, e.Detail, tt.b)
		})
	}
}

func TestBindingsContractNameTaken(t *testing.T) {
	iface := calculator()
	iface.AddNamedType("calculator", &witx.Record{Fields: []witx.Field{{Name: "acc", Type: witx.U32}}})

	g := &bindgen.Generator{ImportPrefix: "example.com/gen"}
	f, err := g.Bindings(iface)
	require.NoError(t, err)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, f.Name, f.Source, parser.AllErrors)
	require.NoError(t, err, "generated source:\n%s", f.Source)
	_, err = (&types.Config{}).Check("calculator", fset, []*ast.File{file}, nil)
	require.NoError(t, err, "generated source:\n%s", f.Source)

	src := string(f.Source)
	assert.Contains(t, src, "type Calculator struct")
	assert.Contains(t, src, "type CalculatorInterface interface {")

	stubs, err := g.Stubs("harness", iface)
	require.NoError(t, err)
	assert.Contains(t, string(stubs.Source), "func Calculator() calculator.CalculatorInterface {")
}

func TestImportPath(t *testing.T) {
	iface := witx.NewInterface("wasi:io/streams@0.2.0")
	assert.Equal(t, "streams", (&bindgen.Generator{}).ImportPath(iface))
	assert.Equal(t, "example.com/gen/streams", (&bindgen.Generator{ImportPrefix: "example.com/gen/"}).ImportPath(iface))
}

func TestFormatIgnoresFailure(t *testing.T) {
	src := []byte("package broken\n\nfunc {")
	assert.Equal(t, src, bindgen.Format("broken.go", src))

	out := bindgen.Format("ok.go", []byte("package ok\nvar   x    = 1\n"))
	assert.Equal(t, "package ok\n\nvar x = 1\n", string(out))
}
