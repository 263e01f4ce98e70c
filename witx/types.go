package witx

import "fmt"

// TypeKind identifies a primitive scalar or one of the two indexed forms.
type TypeKind uint8

const (
	KindU8 TypeKind = iota
	KindU16
	KindU32
	KindU64
	KindS8
	KindS16
	KindS32
	KindS64
	KindF32
	KindF64
	KindChar
	KindCChar
	KindUsize
	KindHandle // Index is a ResourceID
	KindID     // Index is a TypeID
)

var kindNames = [...]string{
	KindU8:     "u8",
	KindU16:    "u16",
	KindU32:    "u32",
	KindU64:    "u64",
	KindS8:     "s8",
	KindS16:    "s16",
	KindS32:    "s32",
	KindS64:    "s64",
	KindF32:    "f32",
	KindF64:    "f64",
	KindChar:   "char",
	KindCChar:  "cchar",
	KindUsize:  "usize",
	KindHandle: "handle",
	KindID:     "id",
}

func (k TypeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// TypeID indexes the Type arena of an Interface.
type TypeID uint32

// ResourceID indexes the Resource arena of an Interface.
type ResourceID uint32

// Type is a reference to a primitive scalar, a resource handle, or a TypeDef.
// Index is only meaningful for KindHandle and KindID.
type Type struct {
	Kind  TypeKind `msgpack:"k"`
	Index uint32   `msgpack:"i,omitempty"`
}

// Primitive types.
var (
	U8    = Type{Kind: KindU8}
	U16   = Type{Kind: KindU16}
	U32   = Type{Kind: KindU32}
	U64   = Type{Kind: KindU64}
	S8    = Type{Kind: KindS8}
	S16   = Type{Kind: KindS16}
	S32   = Type{Kind: KindS32}
	S64   = Type{Kind: KindS64}
	F32   = Type{Kind: KindF32}
	F64   = Type{Kind: KindF64}
	Char  = Type{Kind: KindChar}
	CChar = Type{Kind: KindCChar}
	Usize = Type{Kind: KindUsize}
)

// Handle returns a reference to a resource.
func Handle(id ResourceID) Type {
	return Type{Kind: KindHandle, Index: uint32(id)}
}

// ID returns a reference to a type definition.
func ID(id TypeID) Type {
	return Type{Kind: KindID, Index: uint32(id)}
}

// IsPrimitive reports whether t is a scalar.
func (t Type) IsPrimitive() bool {
	return t.Kind < KindHandle
}

// TypeID returns the arena index of an ID reference.
func (t Type) TypeID() (TypeID, bool) {
	if t.Kind != KindID {
		return 0, false
	}
	return TypeID(t.Index), true
}

// ResourceID returns the arena index of a handle reference.
func (t Type) ResourceID() (ResourceID, bool) {
	if t.Kind != KindHandle {
		return 0, false
	}
	return ResourceID(t.Index), true
}

func (t Type) String() string {
	switch t.Kind {
	case KindHandle:
		return fmt.Sprintf("handle(%d)", t.Index)
	case KindID:
		return fmt.Sprintf("id(%d)", t.Index)
	default:
		return t.Kind.String()
	}
}

// PrimitiveByName looks up a scalar by its lowercase name.
func PrimitiveByName(name string) (Type, bool) {
	for k := KindU8; k < KindHandle; k++ {
		if kindNames[k] == name {
			return Type{Kind: k}, true
		}
	}
	return Type{}, false
}
