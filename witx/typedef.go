package witx

// TypeDefKind is the body of a type definition. The set of kinds is closed.
type TypeDefKind interface {
	isTypeDefKind()
}

// Alias refers to another type.
type Alias struct{ Type Type }

// Pointer is a mutable raw pointer.
type Pointer struct{ Elem Type }

// ConstPointer is a read-only raw pointer.
type ConstPointer struct{ Elem Type }

// List is an owned dynamic sequence.
type List struct{ Elem Type }

// PushBuffer is a caller-provided buffer the callee writes into.
type PushBuffer struct{ Elem Type }

// PullBuffer is a caller-provided buffer the callee reads from.
type PullBuffer struct{ Elem Type }

// Record is an ordered product of named fields.
type Record struct {
	Fields []Field
}

// Field is a named record member.
type Field struct {
	Name string `msgpack:"name"`
	Type Type   `msgpack:"type"`
}

// Variant is a tagged union of named cases.
type Variant struct {
	Cases []Case
}

// Case is a variant case with an optional payload.
type Case struct {
	Type *Type  `msgpack:"type,omitempty"`
	Name string `msgpack:"name"`
}

func (Alias) isTypeDefKind()        {}
func (Pointer) isTypeDefKind()      {}
func (ConstPointer) isTypeDefKind() {}
func (List) isTypeDefKind()         {}
func (PushBuffer) isTypeDefKind()   {}
func (PullBuffer) isTypeDefKind()   {}
func (*Record) isTypeDefKind()      {}
func (*Variant) isTypeDefKind()     {}

// TypeDef is one slot of the Type arena. Name is empty for anonymous types.
// A nil Kind marks a slot reserved by ReserveType but not yet defined.
type TypeDef struct {
	Kind TypeDefKind
	Name string
}

// Named reports whether the definition carries a name.
func (d *TypeDef) Named() bool {
	return d.Name != ""
}

// Refs returns the types directly referenced by a definition kind, in order.
func Refs(kind TypeDefKind) []Type {
	switch k := kind.(type) {
	case Alias:
		return []Type{k.Type}
	case Pointer:
		return []Type{k.Elem}
	case ConstPointer:
		return []Type{k.Elem}
	case List:
		return []Type{k.Elem}
	case PushBuffer:
		return []Type{k.Elem}
	case PullBuffer:
		return []Type{k.Elem}
	case *Record:
		refs := make([]Type, len(k.Fields))
		for i, f := range k.Fields {
			refs[i] = f.Type
		}
		return refs
	case *Variant:
		var refs []Type
		for _, c := range k.Cases {
			if c.Type != nil {
				refs = append(refs, *c.Type)
			}
		}
		return refs
	default:
		return nil
	}
}

// KindName returns the lowercase name of a definition kind.
func KindName(kind TypeDefKind) string {
	switch kind.(type) {
	case Alias:
		return "alias"
	case Pointer:
		return "pointer"
	case ConstPointer:
		return "const-pointer"
	case List:
		return "list"
	case PushBuffer:
		return "push-buffer"
	case PullBuffer:
		return "pull-buffer"
	case *Record:
		return "record"
	case *Variant:
		return "variant"
	case nil:
		return "reserved"
	default:
		return "unknown"
	}
}
