// Package componenttest assembles small component binaries for tests.
//
// Every helper returns raw encoded bytes that can be nested:
//
//	world := componenttest.ComponentType(
//	    componenttest.TypeDecl(componenttest.InstanceType(...)),
//	    componenttest.ExportDecl("calculator", componenttest.Instance(0)),
//	)
//	bin := componenttest.Component(world)
package componenttest

import (
	"bytes"

	"github.com/wippyai/witx-bindgen/wasm"
)

// Primitive value types.
var (
	Bool   = []byte{0x7f}
	S8     = []byte{0x7e}
	U8     = []byte{0x7d}
	S16    = []byte{0x7c}
	U16    = []byte{0x7b}
	S32    = []byte{0x7a}
	U32    = []byte{0x79}
	S64    = []byte{0x78}
	U64    = []byte{0x77}
	F32    = []byte{0x76}
	F64    = []byte{0x75}
	Char   = []byte{0x74}
	String = []byte{0x73}
)

// Field is a named record field or function parameter.
type Field struct {
	Name string
	Type []byte
}

// Case is a variant case; Type may be nil.
type Case struct {
	Name string
	Type []byte
}

// Component wraps type definitions into a component binary with a single
// type section.
func Component(types ...[]byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x0d, 0x00, 0x01, 0x00}
	return append(out, wasm.EncodeSection(0x07, vec(types))...)
}

// ComponentType encodes a component type (0x41).
func ComponentType(decls ...[]byte) []byte {
	return append([]byte{0x41}, vec(decls)...)
}

// InstanceType encodes an instance type (0x42).
func InstanceType(decls ...[]byte) []byte {
	return append([]byte{0x42}, vec(decls)...)
}

// TypeDecl declares a type inside a component or instance type.
func TypeDecl(t []byte) []byte {
	return append([]byte{0x01}, t...)
}

// ImportDecl declares an import.
func ImportDecl(name string, desc []byte) []byte {
	return cat([]byte{0x03, 0x00}, str(name), desc)
}

// ExportDecl declares an export.
func ExportDecl(name string, desc []byte) []byte {
	return cat([]byte{0x04, 0x00}, str(name), desc)
}

// OuterTypeAlias aliases type idx of the scope count levels up.
func OuterTypeAlias(count, idx uint32) []byte {
	return cat([]byte{0x02, 0x03, 0x02}, u32(count), u32(idx))
}

// Func is an extern descriptor of a function type.
func Func(idx uint32) []byte { return cat([]byte{0x01}, u32(idx)) }

// Instance is an extern descriptor of an instance type.
func Instance(idx uint32) []byte { return cat([]byte{0x05}, u32(idx)) }

// ComponentRef is an extern descriptor of a component type.
func ComponentRef(idx uint32) []byte { return cat([]byte{0x04}, u32(idx)) }

// TypeEq is a type extern descriptor with an eq bound.
func TypeEq(idx uint32) []byte { return cat([]byte{0x03, 0x00}, u32(idx)) }

// SubResource is a type extern descriptor with a sub resource bound.
func SubResource() []byte { return []byte{0x03, 0x01} }

// FuncType encodes a function type; a nil result means no result.
func FuncType(params []Field, result []byte) []byte {
	items := make([][]byte, len(params))
	for i, p := range params {
		items[i] = cat(str(p.Name), p.Type)
	}
	out := cat([]byte{0x40}, vec(items))
	if result == nil {
		return append(out, 0x01, 0x00)
	}
	return cat(out, []byte{0x00}, result)
}

// Index references a type by index.
func Index(idx uint32) []byte {
	var buf bytes.Buffer
	wasm.WriteLEB128s(&buf, int32(idx))
	return buf.Bytes()
}

// Record encodes a record type.
func Record(fields ...Field) []byte {
	items := make([][]byte, len(fields))
	for i, f := range fields {
		items[i] = cat(str(f.Name), f.Type)
	}
	return cat([]byte{0x72}, vec(items))
}

// Variant encodes a variant type.
func Variant(cases ...Case) []byte {
	items := make([][]byte, len(cases))
	for i, c := range cases {
		items[i] = cat(str(c.Name), opt(c.Type), []byte{0x00})
	}
	return cat([]byte{0x71}, vec(items))
}

// List encodes list<t>.
func List(t []byte) []byte { return cat([]byte{0x70}, t) }

// Tuple encodes tuple<ts...>.
func Tuple(ts ...[]byte) []byte { return cat([]byte{0x6f}, vec(ts)) }

// Flags encodes a flags type.
func Flags(names ...string) []byte { return cat([]byte{0x6e}, strs(names)) }

// Enum encodes an enum type.
func Enum(names ...string) []byte { return cat([]byte{0x6d}, strs(names)) }

// Option encodes option<t>.
func Option(t []byte) []byte { return cat([]byte{0x6b}, t) }

// Result encodes result<ok, err>; nil sides are absent.
func Result(ok, err []byte) []byte { return cat([]byte{0x6a}, opt(ok), opt(err)) }

// Own encodes own<idx>.
func Own(idx uint32) []byte { return cat([]byte{0x69}, u32(idx)) }

// Borrow encodes borrow<idx>.
func Borrow(idx uint32) []byte { return cat([]byte{0x68}, u32(idx)) }

// Calculator returns a component exporting interface "calculator" with a
// single function add(a: u32, b: u32) -> u32.
func Calculator() []byte {
	iface := InstanceType(
		TypeDecl(FuncType([]Field{{"a", U32}, {"b", U32}}, U32)),
		ExportDecl("add", Func(0)),
	)
	world := ComponentType(
		TypeDecl(iface),
		ExportDecl("calculator", Instance(0)),
	)
	return Component(world)
}

// DefaultFunc returns a component whose world exports a bare function,
// which lands in the default interface.
func DefaultFunc(name string) []byte {
	world := ComponentType(
		TypeDecl(FuncType(nil, nil)),
		ExportDecl(name, Func(0)),
	)
	return Component(world)
}

func vec(items [][]byte) []byte {
	out := wasm.EncodeLEB128u(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func str(s string) []byte {
	return append(wasm.EncodeLEB128u(uint32(len(s))), s...)
}

func strs(names []string) []byte {
	items := make([][]byte, len(names))
	for i, n := range names {
		items[i] = str(n)
	}
	return vec(items)
}

func opt(t []byte) []byte {
	if t == nil {
		return []byte{0x00}
	}
	return cat([]byte{0x01}, t)
}

func u32(v uint32) []byte { return wasm.EncodeLEB128u(v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
