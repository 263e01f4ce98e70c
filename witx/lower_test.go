package witx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/witx-bindgen/witx"
)

func strPtr(s string) *string { return &s }

func lowerDef(t *testing.T, l *witx.Lowerer, typ wit.Type) *witx.TypeDef {
	t.Helper()
	ref, err := l.Lower(typ)
	require.NoError(t, err)
	id, ok := ref.TypeID()
	require.True(t, ok, "expected type id, got %s", ref)
	def, _ := l.Interface().TypeDef(id)
	return def
}

func TestLowerPrimitives(t *testing.T) {
	l := witx.NewLowerer(witx.NewInterface("p"))
	tests := []struct {
		in   wit.Type
		want witx.Type
	}{
		{wit.U8{}, witx.U8},
		{wit.U16{}, witx.U16},
		{wit.U32{}, witx.U32},
		{wit.U64{}, witx.U64},
		{wit.S8{}, witx.S8},
		{wit.S16{}, witx.S16},
		{wit.S32{}, witx.S32},
		{wit.S64{}, witx.S64},
		{wit.F32{}, witx.F32},
		{wit.F64{}, witx.F64},
		{wit.Char{}, witx.Char},
	}
	for _, tt := range tests {
		got, err := l.Lower(tt.in)
		require.NoError(t, err, "%T", tt.in)
		assert.Equal(t, tt.want, got, "%T", tt.in)
	}
}

func TestLowerStringAndBoolMemoized(t *testing.T) {
	iface := witx.NewInterface("m")
	l := witx.NewLowerer(iface)

	s1, _ := l.Lower(wit.String{})
	s2, _ := l.Lower(wit.String{})
	assert.Equal(t, s1, s2, "string lowered twice")
	def := lowerDef(t, l, wit.String{})
	assert.Equal(t, witx.List{Elem: witx.Char}, def.Kind)

	b := lowerDef(t, l, wit.Bool{})
	v, ok := b.Kind.(*witx.Variant)
	require.True(t, ok, "bool: %#v", b.Kind)
	assert.Equal(t, witx.ShapeBool, v.Shape())
	assert.Len(t, iface.Types, 2)
}

func TestLowerShapes(t *testing.T) {
	l := witx.NewLowerer(witx.NewInterface("s"))

	opt := lowerDef(t, l, &wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}})
	assert.Equal(t, witx.ShapeOption, opt.Kind.(*witx.Variant).Shape())

	res := lowerDef(t, l, &wit.TypeDef{Kind: &wit.Result{Err: wit.String{}}})
	v := res.Kind.(*witx.Variant)
	assert.Equal(t, witx.ShapeExpected, v.Shape())
	assert.Nil(t, v.Cases[0].Type)
	assert.NotNil(t, v.Cases[1].Type)

	tup := lowerDef(t, l, &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.F32{}}}})
	rec := tup.Kind.(*witx.Record)
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, "0", rec.Fields[0].Name)
	assert.Equal(t, witx.F32, rec.Fields[1].Type)

	enum := lowerDef(t, l, &wit.TypeDef{Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "a"}, {Name: "b"}, {Name: "c"}}}})
	ev := enum.Kind.(*witx.Variant)
	assert.Len(t, ev.Cases, 3)
	assert.Equal(t, witx.ShapeUnknown, ev.Shape())

	flags := lowerDef(t, l, &wit.TypeDef{Kind: &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}}}})
	fr := flags.Kind.(*witx.Record)
	require.Len(t, fr.Fields, 2)
	assert.Equal(t, "write", fr.Fields[1].Name)

	list := lowerDef(t, l, &wit.TypeDef{Kind: &wit.List{Type: wit.U16{}}})
	assert.Equal(t, witx.List{Elem: witx.U16}, list.Kind)

	vari := lowerDef(t, l, &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{{Name: "a", Type: wit.U8{}}, {Name: "b"}, {Name: "c"}}}})
	vk := vari.Kind.(*witx.Variant)
	require.Len(t, vk.Cases, 3)
	assert.NotNil(t, vk.Cases[0].Type)
	assert.Nil(t, vk.Cases[1].Type)
}

func TestLowerNamedRecordMemoized(t *testing.T) {
	iface := witx.NewInterface("geo")
	l := witx.NewLowerer(iface)
	point := &wit.TypeDef{
		Name: strPtr("point"),
		Kind: &wit.Record{Fields: []wit.Field{{Name: "x", Type: wit.S32{}}, {Name: "y", Type: wit.S32{}}}},
	}
	a, err := l.Lower(point)
	require.NoError(t, err)
	b, _ := l.Lower(point)
	assert.Equal(t, a, b, "named type lowered twice")

	def := lowerDef(t, l, point)
	assert.Equal(t, "point", def.Name)
	assert.NoError(t, iface.Validate())
}

func TestLowerAlias(t *testing.T) {
	l := witx.NewLowerer(witx.NewInterface("a"))
	def := lowerDef(t, l, &wit.TypeDef{Name: strPtr("size"), Kind: wit.U64{}})
	assert.Equal(t, witx.Alias{Type: witx.U64}, def.Kind)
}

func TestLowerHandles(t *testing.T) {
	iface := witx.NewInterface("fs")
	l := witx.NewLowerer(iface)
	file := &wit.TypeDef{Name: strPtr("file"), Kind: &wit.Resource{}}

	own, err := l.Lower(&wit.TypeDef{Kind: &wit.Own{Type: file}})
	require.NoError(t, err)
	borrow, err := l.Lower(&wit.TypeDef{Kind: &wit.Borrow{Type: file}})
	require.NoError(t, err)
	assert.Equal(t, own, borrow, "own and borrow of one resource differ")

	id, ok := own.ResourceID()
	require.True(t, ok, "expected handle, got %s", own)
	r, _ := iface.Resource(id)
	assert.Equal(t, "file", r.Name)
	assert.Len(t, iface.Resources, 1)
}

func TestLowerNil(t *testing.T) {
	l := witx.NewLowerer(witx.NewInterface("n"))
	_, err := l.Lower(nil)
	assert.Error(t, err)
}
