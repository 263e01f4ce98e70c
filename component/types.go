package component

// Type is a top-level entry of a type index space.
type Type interface {
	isType()
}

// ValType is a component value type.
type ValType interface {
	Type
	isValType()
}

// PrimType represents primitive types
type PrimType byte

const (
	PrimBool   PrimType = 0x7f
	PrimS8     PrimType = 0x7e
	PrimU8     PrimType = 0x7d
	PrimS16    PrimType = 0x7c
	PrimU16    PrimType = 0x7b
	PrimS32    PrimType = 0x7a
	PrimU32    PrimType = 0x79
	PrimS64    PrimType = 0x78
	PrimU64    PrimType = 0x77
	PrimF32    PrimType = 0x76
	PrimF64    PrimType = 0x75
	PrimChar   PrimType = 0x74
	PrimString PrimType = 0x73
)

// Type constructor opcodes.
const (
	opRecord    byte = 0x72
	opVariant   byte = 0x71
	opList      byte = 0x70
	opTuple     byte = 0x6f
	opFlags     byte = 0x6e
	opEnum      byte = 0x6d
	opOption    byte = 0x6b
	opResult    byte = 0x6a
	opOwn       byte = 0x69
	opBorrow    byte = 0x68
	opFunc      byte = 0x40
	opComponent byte = 0x41
	opInstance  byte = 0x42
	opResource  byte = 0x3f
)

// Extern kinds of import and export declarations.
const (
	ExternCoreModule byte = 0x00
	ExternFunc       byte = 0x01
	ExternValue      byte = 0x02
	ExternType       byte = 0x03
	ExternComponent  byte = 0x04
	ExternInstance   byte = 0x05
)

// Type bounds of type imports and exports.
const (
	BoundEq          byte = 0x00
	BoundSubResource byte = 0x01
)

// DeclKind identifies a declaration inside a component or instance type.
type DeclKind byte

const (
	DeclCoreType DeclKind = 0x00
	DeclType     DeclKind = 0x01
	DeclAlias    DeclKind = 0x02
	DeclImport   DeclKind = 0x03
	DeclExport   DeclKind = 0x04
)

// PrimValType represents primitive value types
type PrimValType struct {
	Type PrimType
}

// TypeIndexRef represents a reference to a type by index
type TypeIndexRef struct {
	Index uint32
}

// RecordType represents a record (struct)
type RecordType struct {
	Fields []FieldType
}

// FieldType is a named record field.
type FieldType struct {
	Type ValType
	Name string
}

// VariantType represents a tagged union
type VariantType struct {
	Cases []CaseType
}

// CaseType is a variant case with an optional payload.
type CaseType struct {
	Type    *ValType
	Refines *uint32
	Name    string
}

// ListType represents list<T>
type ListType struct {
	ElemType ValType
}

// TupleType represents tuple<...>
type TupleType struct {
	Types []ValType
}

// FlagsType represents flags
type FlagsType struct {
	Names []string
}

// EnumType represents enum
type EnumType struct {
	Cases []string
}

// OptionType represents option<T>
type OptionType struct {
	Type ValType
}

// ResultType represents result<T, E>; either side may be absent.
type ResultType struct {
	OK  *ValType
	Err *ValType
}

// OwnType represents own<T>
type OwnType struct {
	TypeIndex uint32
}

// BorrowType represents borrow<T>
type BorrowType struct {
	TypeIndex uint32
}

// FuncType represents a function type. Result is nil for functions without
// a result.
type FuncType struct {
	Result *ValType
	Params []ParamType
}

// ParamType is a named function parameter.
type ParamType struct {
	Type ValType
	Name string
}

// ResourceType is a concrete resource definition. Only its identity matters
// for interface extraction.
type ResourceType struct {
	Rep  byte
	Dtor *uint32
}

// ComponentType represents a component type (0x41).
type ComponentType struct {
	Decls []Decl
}

// InstanceType represents an instance type (0x42).
type InstanceType struct {
	Decls []Decl
}

// Decl is one declaration of a component or instance type.
type Decl struct {
	Type   Type
	Alias  *Alias
	Name   string
	Extern ExternDesc
	Kind   DeclKind
}

// ExternDesc describes what an import or export declares.
type ExternDesc struct {
	Index uint32
	Kind  byte
	Bound byte
}

// Alias is an alias declaration. Only outer aliases carry Count and Index.
type Alias struct {
	Name     string
	Sort     byte
	Target   byte
	Count    uint32
	Index    uint32
	Instance uint32
}

func (PrimValType) isType()    {}
func (TypeIndexRef) isType()   {}
func (RecordType) isType()     {}
func (VariantType) isType()    {}
func (ListType) isType()       {}
func (TupleType) isType()      {}
func (FlagsType) isType()      {}
func (EnumType) isType()       {}
func (OptionType) isType()     {}
func (ResultType) isType()     {}
func (OwnType) isType()        {}
func (BorrowType) isType()     {}
func (*FuncType) isType()      {}
func (*ResourceType) isType()  {}
func (*ComponentType) isType() {}
func (*InstanceType) isType()  {}

func (PrimValType) isValType()  {}
func (TypeIndexRef) isValType() {}
func (RecordType) isValType()   {}
func (VariantType) isValType()  {}
func (ListType) isValType()     {}
func (TupleType) isValType()    {}
func (FlagsType) isValType()    {}
func (EnumType) isValType()     {}
func (OptionType) isValType()   {}
func (ResultType) isValType()   {}
func (OwnType) isValType()      {}
func (BorrowType) isValType()   {}
