package component

import (
	"fmt"

	"go.bytecodealliance.org/wit"
)

// scope is the type index space of one component or instance type. Entries
// are appended in declaration order; outer aliases reach into parent scopes.
type scope struct {
	parent  *scope
	entries []*entry
}

type entryKind uint8

const (
	entryDef      entryKind = iota // a type declaration
	entryOuter                     // outer alias
	entryEq                        // import/export with an eq bound
	entryResource                  // import/export with a sub resource bound
)

type entry struct {
	def      Type
	resolved wit.Type
	name     string
	target   uint32
	count    uint32
	kind     entryKind
	busy     bool // set while resolve is working on the entry
	walking  bool // set while raw is following the entry
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent}
}

// declare appends the index space entry a declaration introduces, if any.
func (s *scope) declare(d Decl) error {
	switch d.Kind {
	case DeclType:
		s.entries = append(s.entries, &entry{kind: entryDef, def: d.Type})
	case DeclAlias:
		if d.Alias.Sort != ExternType {
			return nil
		}
		if d.Alias.Target != 0x02 {
			return fmt.Errorf("type alias of instance export %q is not supported", d.Alias.Name)
		}
		outer, err := s.outer(d.Alias.Count)
		if err != nil {
			return err
		}
		if int(d.Alias.Index) >= len(outer.entries) {
			return fmt.Errorf("outer alias of type index %d, only %d types declared", d.Alias.Index, len(outer.entries))
		}
		s.entries = append(s.entries, &entry{kind: entryOuter, count: d.Alias.Count, target: d.Alias.Index})
	case DeclImport, DeclExport:
		if d.Extern.Kind != ExternType {
			return nil
		}
		if d.Extern.Bound == BoundSubResource {
			s.entries = append(s.entries, &entry{kind: entryResource, name: d.Name})
		} else {
			if int(d.Extern.Index) >= len(s.entries) {
				return fmt.Errorf("type %q is bound to index %d, only %d types declared", d.Name, d.Extern.Index, len(s.entries))
			}
			s.entries = append(s.entries, &entry{kind: entryEq, name: d.Name, target: d.Extern.Index})
		}
	}
	return nil
}

func (s *scope) lookup(idx uint32) (*entry, error) {
	if int(idx) >= len(s.entries) {
		return nil, fmt.Errorf("type index out of range: %d >= %d", idx, len(s.entries))
	}
	return s.entries[idx], nil
}

// raw follows aliases and eq bounds to the declared type behind idx.
func (s *scope) raw(idx uint32) (Type, *scope, error) {
	e, err := s.lookup(idx)
	if err != nil {
		return nil, nil, err
	}
	if e.walking {
		return nil, nil, fmt.Errorf("type index %d refers to itself", idx)
	}
	e.walking = true
	defer func() { e.walking = false }()

	switch e.kind {
	case entryDef:
		return e.def, s, nil
	case entryOuter:
		outer, err := s.outer(e.count)
		if err != nil {
			return nil, nil, err
		}
		return outer.raw(e.target)
	case entryEq:
		return s.raw(e.target)
	default:
		return &ResourceType{}, s, nil
	}
}

func (s *scope) outer(count uint32) (*scope, error) {
	cur := s
	for i := uint32(0); i < count; i++ {
		if cur.parent == nil {
			return nil, fmt.Errorf("outer alias count %d exceeds nesting depth", count)
		}
		cur = cur.parent
	}
	return cur, nil
}

// funcType returns the function type at idx.
func (s *scope) funcType(idx uint32) (*FuncType, *scope, error) {
	t, owner, err := s.raw(idx)
	if err != nil {
		return nil, nil, err
	}
	ft, ok := t.(*FuncType)
	if !ok {
		return nil, nil, fmt.Errorf("type at index %d is not a function type: %T", idx, t)
	}
	return ft, owner, nil
}

// Resolve converts the type at idx to a wit.Type. Results are cached per
// entry so repeated references share one *wit.TypeDef.
func (s *scope) resolve(idx uint32) (wit.Type, error) {
	e, err := s.lookup(idx)
	if err != nil {
		return nil, err
	}
	if e.resolved != nil {
		return e.resolved, nil
	}
	if e.busy {
		return nil, fmt.Errorf("type index %d refers to itself", idx)
	}
	e.busy = true
	defer func() { e.busy = false }()

	var t wit.Type
	switch e.kind {
	case entryDef:
		if _, ok := e.def.(*ResourceType); ok {
			t = &wit.TypeDef{Kind: &wit.Resource{}}
			break
		}
		vt, ok := e.def.(ValType)
		if !ok {
			return nil, fmt.Errorf("type at index %d is not a value type: %T", idx, e.def)
		}
		t, err = s.resolveVal(vt)
	case entryOuter:
		var outer *scope
		if outer, err = s.outer(e.count); err == nil {
			t, err = outer.resolve(e.target)
		}
	case entryEq:
		var under wit.Type
		if under, err = s.resolve(e.target); err == nil {
			t = named(e.name, under)
		}
	case entryResource:
		name := e.name
		t = &wit.TypeDef{Name: &name, Kind: &wit.Resource{}}
	}
	if err != nil {
		return nil, err
	}
	e.resolved = t
	return t, nil
}

// named gives a name to a resolved type. Resources keep their identity and
// are named in place; other anonymous definitions are copied under the new
// name; anything else becomes an alias.
func named(name string, under wit.Type) wit.Type {
	if def, ok := under.(*wit.TypeDef); ok {
		_, isRes := def.Kind.(*wit.Resource)
		switch {
		case isRes && def.Name == nil:
			def.Name = &name
			return def
		case isRes:
			return def
		case def.Name == nil:
			return &wit.TypeDef{Name: &name, Kind: def.Kind}
		}
	}
	kind, ok := under.(wit.TypeDefKind)
	if !ok {
		return under
	}
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func (s *scope) resolveVal(vt ValType) (wit.Type, error) {
	switch t := vt.(type) {
	case PrimValType:
		return resolvePrimitive(t.Type)
	case TypeIndexRef:
		return s.resolve(t.Index)
	case RecordType:
		fields := make([]wit.Field, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := s.resolveVal(f.Type)
			if err != nil {
				return nil, fmt.Errorf("record field %q: %w", f.Name, err)
			}
			fields[i] = wit.Field{Name: f.Name, Type: ft}
		}
		return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}, nil
	case ListType:
		elem, err := s.resolveVal(t.ElemType)
		if err != nil {
			return nil, fmt.Errorf("list element: %w", err)
		}
		return &wit.TypeDef{Kind: &wit.List{Type: elem}}, nil
	case TupleType:
		types := make([]wit.Type, len(t.Types))
		for i, elem := range t.Types {
			et, err := s.resolveVal(elem)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
			types[i] = et
		}
		return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}, nil
	case FlagsType:
		flags := make([]wit.Flag, len(t.Names))
		for i, name := range t.Names {
			flags[i] = wit.Flag{Name: name}
		}
		return &wit.TypeDef{Kind: &wit.Flags{Flags: flags}}, nil
	case EnumType:
		cases := make([]wit.EnumCase, len(t.Cases))
		for i, name := range t.Cases {
			cases[i] = wit.EnumCase{Name: name}
		}
		return &wit.TypeDef{Kind: &wit.Enum{Cases: cases}}, nil
	case OptionType:
		inner, err := s.resolveVal(t.Type)
		if err != nil {
			return nil, fmt.Errorf("option type: %w", err)
		}
		return &wit.TypeDef{Kind: &wit.Option{Type: inner}}, nil
	case ResultType:
		ok, err := s.resolveOptional(t.OK)
		if err != nil {
			return nil, fmt.Errorf("result ok: %w", err)
		}
		fail, err := s.resolveOptional(t.Err)
		if err != nil {
			return nil, fmt.Errorf("result err: %w", err)
		}
		return &wit.TypeDef{Kind: &wit.Result{OK: ok, Err: fail}}, nil
	case VariantType:
		cases := make([]wit.Case, len(t.Cases))
		for i, c := range t.Cases {
			payload, err := s.resolveOptional(c.Type)
			if err != nil {
				return nil, fmt.Errorf("variant case %q: %w", c.Name, err)
			}
			cases[i] = wit.Case{Name: c.Name, Type: payload}
		}
		return &wit.TypeDef{Kind: &wit.Variant{Cases: cases}}, nil
	case OwnType:
		res, err := s.resource(t.TypeIndex)
		if err != nil {
			return nil, fmt.Errorf("own: %w", err)
		}
		return &wit.TypeDef{Kind: &wit.Own{Type: res}}, nil
	case BorrowType:
		res, err := s.resource(t.TypeIndex)
		if err != nil {
			return nil, fmt.Errorf("borrow: %w", err)
		}
		return &wit.TypeDef{Kind: &wit.Borrow{Type: res}}, nil
	default:
		return nil, fmt.Errorf("unsupported component val type: %T", vt)
	}
}

func (s *scope) resolveOptional(vt *ValType) (wit.Type, error) {
	if vt == nil {
		return nil, nil
	}
	return s.resolveVal(*vt)
}

func (s *scope) resource(idx uint32) (*wit.TypeDef, error) {
	t, err := s.resolve(idx)
	if err != nil {
		return nil, err
	}
	def, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, fmt.Errorf("type index %d is not a resource", idx)
	}
	if _, ok := def.Kind.(*wit.Resource); !ok {
		return nil, fmt.Errorf("type index %d is not a resource: %T", idx, def.Kind)
	}
	return def, nil
}

func resolvePrimitive(p PrimType) (wit.Type, error) {
	switch p {
	case PrimBool:
		return wit.Bool{}, nil
	case PrimS8:
		return wit.S8{}, nil
	case PrimU8:
		return wit.U8{}, nil
	case PrimS16:
		return wit.S16{}, nil
	case PrimU16:
		return wit.U16{}, nil
	case PrimS32:
		return wit.S32{}, nil
	case PrimU32:
		return wit.U32{}, nil
	case PrimS64:
		return wit.S64{}, nil
	case PrimU64:
		return wit.U64{}, nil
	case PrimF32:
		return wit.F32{}, nil
	case PrimF64:
		return wit.F64{}, nil
	case PrimChar:
		return wit.Char{}, nil
	case PrimString:
		return wit.String{}, nil
	default:
		return nil, fmt.Errorf("unknown primitive type: 0x%02x", byte(p))
	}
}
