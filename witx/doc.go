// Package witx holds the in-memory interface IR consumed by the type mapper
// and the binding generator.
//
// An Interface owns two append-only arenas: a Type arena of optionally named
// TypeDefs and a Resource arena of named opaque handles. Every reference
// elsewhere in the IR is either a primitive Type or an index into one of the
// arenas:
//
//	iface := witx.NewInterface("calculator")
//	point := iface.AddNamedType("point", &witx.Record{Fields: []witx.Field{
//	    {Name: "x", Type: witx.S32},
//	    {Name: "y", Type: witx.S32},
//	}})
//	iface.AddFunction(witx.Function{
//	    Name:    "dist",
//	    Params:  []witx.Param{{Name: "a", Type: point}, {Name: "b", Type: point}},
//	    Results: []witx.Param{{Type: witx.F64}},
//	})
//
// Forward references are allowed while an interface is being built:
// ReserveType hands out an index that DefineType fills in later. Validate
// reports dangling indices and undefined slots.
//
// Variants have no explicit discriminant for booleans, options or results.
// Those shapes are recognized structurally by IsBool, AsOption and
// AsExpected, and summarized by Variant.Shape.
//
// A ComponentInterfaces value aggregates the interfaces of one module: an
// optional default interface plus name-keyed imports and exports. Fragments
// decoded from individual custom sections are folded into it by the extract
// package.
package witx
