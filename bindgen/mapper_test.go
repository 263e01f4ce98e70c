package bindgen_test

import (
	stderrors "errors"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/witx"
)

func ptr(t witx.Type) *witx.Type { return &t }

func TestMapPrimitives(t *testing.T) {
	m := bindgen.NewMapper(witx.NewInterface("calc"))
	tests := []struct {
		in   witx.Type
		want string
	}{
		{witx.U8, "uint8"},
		{witx.U16, "uint16"},
		{witx.U32, "uint32"},
		{witx.U64, "uint64"},
		{witx.S8, "int8"},
		{witx.S16, "int16"},
		{witx.S32, "int32"},
		{witx.S64, "int64"},
		{witx.F32, "float32"},
		{witx.F64, "float64"},
		{witx.Char, "rune"},
		{witx.CChar, "byte"},
		{witx.Usize, "uintptr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Expr(tt.in), "%s", tt.in)
	}
	assert.Empty(t, m.Uses())
}

func TestMapDefinitions(t *testing.T) {
	iface := witx.NewInterface("calc")
	str := iface.AddType(witx.List{Elem: witx.Char})
	errno := iface.AddNamedType("errno", witx.Alias{Type: witx.U16})

	tests := []struct {
		name string
		kind witx.TypeDefKind
		want string
	}{
		{"alias", witx.Alias{Type: witx.S32}, "int32"},
		{"pointer", witx.Pointer{Elem: witx.S32}, "*int32"},
		{"const pointer", witx.ConstPointer{Elem: witx.U8}, "witgo.ConstPointer[uint8]"},
		{"string", witx.List{Elem: witx.Char}, "string"},
		{"list", witx.List{Elem: witx.U8}, "[]uint8"},
		{"list of cchar", witx.List{Elem: witx.CChar}, "[]byte"},
		{"list of strings", witx.List{Elem: str}, "[]string"},
		{"record", &witx.Record{Fields: []witx.Field{
			{Name: "a", Type: witx.U32},
			{Name: "b", Type: str},
			{Name: "c", Type: errno},
		}}, "struct{F0 uint32; F1 string; F2 calc.Errno}"},
		{"empty record", &witx.Record{}, "struct{}"},
		{"bool", &witx.Variant{Cases: []witx.Case{{Name: "false"}, {Name: "true"}}}, "bool"},
		{"option", &witx.Variant{Cases: []witx.Case{{Name: "none"}, {Name: "some", Type: ptr(witx.U32)}}}, "witgo.Option[uint32]"},
		{"option payload first", &witx.Variant{Cases: []witx.Case{{Name: "a", Type: ptr(str)}, {Name: "b"}}}, "witgo.Option[string]"},
		{"result ok only", &witx.Variant{Cases: []witx.Case{{Name: "ok", Type: ptr(witx.U32)}, {Name: "err"}}}, "witgo.Result[uint32, witgo.Unit]"},
		{"result err only", &witx.Variant{Cases: []witx.Case{{Name: "ok"}, {Name: "err", Type: ptr(str)}}}, "witgo.Result[witgo.Unit, string]"},
		{"result both", &witx.Variant{Cases: []witx.Case{{Name: "x", Type: ptr(witx.U8)}, {Name: "y", Type: ptr(errno)}}}, "witgo.Result[uint8, calc.Errno]"},
		{"payload-free ok err", &witx.Variant{Cases: []witx.Case{{Name: "ok"}, {Name: "err"}}}, "bool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := iface.AddType(tt.kind)
			m := bindgen.NewMapper(iface)
			assert.Equal(t, tt.want, m.Expr(ref))
		})
	}
}

func TestMapNamedTypes(t *testing.T) {
	iface := witx.NewInterface("wasi:fs")
	errno := iface.AddNamedType("errno", witx.Alias{Type: witx.U16})
	fd := iface.AddResource("file-descriptor")
	opt := iface.AddType(&witx.Variant{Cases: []witx.Case{{Name: "none"}, {Name: "some", Type: ptr(errno)}}})

	m := bindgen.NewMapper(iface)
	assert.Equal(t, "fs.Errno", m.Expr(errno))
	assert.Equal(t, "*fs.FileDescriptor", m.Expr(fd))
	assert.Equal(t, "witgo.Option[fs.Errno]", m.Expr(opt))
	assert.Equal(t, []string{"fs", "witgo"}, m.Uses())

	local := bindgen.NewMapper(iface, bindgen.Local())
	assert.Equal(t, "Errno", local.Expr(errno))
	assert.Equal(t, "*FileDescriptor", local.Expr(fd))
	assert.Empty(t, local.Uses())
	local.Expr(opt)
	assert.Equal(t, []string{"witgo"}, local.Uses())

	custom := bindgen.NewMapper(iface, bindgen.WithQualifier("wasifs"))
	assert.Equal(t, "wasifs.Errno", custom.Expr(errno))

	id, _ := errno.TypeID()
	assert.Equal(t, "uint16", types.ExprString(local.Definition(id)))
}

func TestMapForwardReference(t *testing.T) {
	iface := witx.NewInterface("calc")
	later := iface.ReserveType()
	list := iface.AddType(witx.List{Elem: witx.ID(later)})
	require.NoError(t, iface.DefineType(later, witx.TypeDef{Kind: &witx.Record{Fields: []witx.Field{
		{Name: "x", Type: witx.F32},
		{Name: "y", Type: witx.F32},
	}}}))
	require.NoError(t, iface.Validate())

	m := bindgen.NewMapper(iface)
	assert.Equal(t, "[]struct{F0 float32; F1 float32}", m.Expr(list))
}

func TestMapDeterministic(t *testing.T) {
	iface := witx.NewInterface("calc")
	str := iface.AddType(witx.List{Elem: witx.Char})
	rec := iface.AddType(&witx.Record{Fields: []witx.Field{{Name: "s", Type: str}, {Name: "n", Type: witx.U64}}})
	res := iface.AddType(&witx.Variant{Cases: []witx.Case{{Name: "ok", Type: &rec}, {Name: "err", Type: &str}}})

	m := bindgen.NewMapper(iface)
	first := m.Map(res)
	second := m.Map(res)
	assert.Equal(t, first, second)
	assert.Equal(t, types.ExprString(first), bindgen.NewMapper(iface).Expr(res))
	assert.Equal(t, "witgo.Result[struct{F0 string; F1 uint64}, string]", types.ExprString(first))
}

func TestMapRecordFieldOrder(t *testing.T) {
	iface := witx.NewInterface("calc")
	fields := []witx.Field{
		{Name: "z", Type: witx.U8},
		{Name: "a", Type: witx.S64},
		{Name: "m", Type: witx.Char},
		{Name: "b", Type: witx.F64},
	}
	rec := iface.AddType(&witx.Record{Fields: fields})
	assert.Equal(t, "struct{F0 uint8; F1 int64; F2 rune; F3 float64}", bindgen.NewMapper(iface).Expr(rec))

	id, _ := rec.TypeID()
	assert.Equal(t, "struct{Z uint8; A int64; M rune; B float64}",
		types.ExprString(bindgen.NewMapper(iface).Definition(id)))
}

func TestMapFatal(t *testing.T) {
	iface := witx.NewInterface("calc")
	push := iface.AddType(witx.PushBuffer{Elem: witx.U8})
	pull := iface.AddType(witx.PullBuffer{Elem: witx.U8})
	enum := iface.AddType(&witx.Variant{Cases: []witx.Case{{Name: "a"}, {Name: "b"}, {Name: "c"}}})
	self := iface.ReserveType()
	require.NoError(t, iface.DefineType(self, witx.TypeDef{Kind: witx.List{Elem: witx.ID(self)}}))
	reserved := iface.ReserveType()

	tests := []struct {
		name string
		in   witx.Type
		kind errors.Kind
	}{
		{"push buffer", push, errors.KindUnsupported},
		{"pull buffer", pull, errors.KindUnsupported},
		{"unknown variant", enum, errors.KindUnsupported},
		{"cycle", witx.ID(self), errors.KindRecursion},
		{"reserved", witx.ID(reserved), errors.KindInvalidData},
		{"dangling id", witx.ID(99), errors.KindOutOfBounds},
		{"dangling handle", witx.Handle(3), errors.KindOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bindgen.NewMapper(iface)
			assert.Panics(t, func() { m.Map(tt.in) })

			_, err := m.TryMap(tt.in)
			var e *errors.Error
			require.True(t, stderrors.As(err, &e), "got %v", err)
			assert.Equal(t, errors.PhaseMap, e.Phase)
			assert.Equal(t, tt.kind, e.Kind)

			// a failed mapping leaves the mapper usable
			assert.Equal(t, "uint32", m.Expr(witx.U32))
		})
	}
}

func TestMapNamedCycle(t *testing.T) {
	iface := witx.NewInterface("tree")
	node := iface.ReserveType()
	children := iface.AddType(witx.List{Elem: witx.ID(node)})
	require.NoError(t, iface.DefineType(node, witx.TypeDef{
		Name: "node",
		Kind: &witx.Record{Fields: []witx.Field{{Name: "children", Type: children}}},
	}))

	m := bindgen.NewMapper(iface, bindgen.Local())
	assert.Equal(t, "struct{Children []Node}", types.ExprString(m.Definition(node)))
}

func TestDefinitionFieldNamesUnique(t *testing.T) {
	iface := witx.NewInterface("calc")
	pair := iface.AddNamedType("pair", &witx.Record{Fields: []witx.Field{
		{Name: "a-b", Type: witx.U32},
		{Name: "a_b", Type: witx.U32},
		{Name: "0", Type: witx.U8},
	}})

	m := bindgen.NewMapper(iface, bindgen.Local())
	assert.Equal(t, "struct{AB uint32; AB2 uint32; F2 uint8}", types.ExprString(m.Definition(witx.TypeID(pair.Index))))
}

func TestSignature(t *testing.T) {
	iface := witx.NewInterface("calc")
	str := iface.AddType(witx.List{Elem: witx.Char})
	m := bindgen.NewMapper(iface)

	tests := []struct {
		fn   witx.Function
		want string
	}{
		{
			witx.Function{Name: "add", Params: []witx.Param{{Name: "a", Type: witx.U32}, {Name: "b", Type: witx.U32}}, Results: []witx.Param{{Type: witx.U32}}},
			"Add(a uint32, b uint32) uint32",
		},
		{witx.Function{Name: "reset"}, "Reset()"},
		{
			witx.Function{Name: "split-name", Params: []witx.Param{{Name: "type", Type: str}}, Results: []witx.Param{{Type: str}, {Type: witx.U8}}},
			"SplitName(type_ string) (string, uint8)",
		},
		{
			witx.Function{Name: "take", Params: []witx.Param{
				{Name: "a-b", Type: witx.U8},
				{Name: "a_b", Type: witx.U8},
				{Name: "", Type: witx.U8},
				{Name: "", Type: witx.U8},
			}},
			"Take(aB uint8, aB2 uint8, arg uint8, arg2 uint8)",
		},
		{
			witx.Function{Name: "pick", Params: []witx.Param{
				{Name: "x", Type: witx.U8},
				{Name: "x2", Type: witx.U8},
				{Name: "x", Type: witx.U8},
			}},
			"Pick(x uint8, x2 uint8, x3 uint8)",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Method(&tt.fn))
	}
}
