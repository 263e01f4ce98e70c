package witx

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/witx-bindgen/errors"
)

// Lowerer translates component-model types into the arenas of one Interface.
//
// Types with no direct witx counterpart are lowered onto the structural
// shapes the mapper recognizes: bool becomes a two-case variant without
// payloads, option<T> a none/some variant, result<T, E> an ok/err variant,
// string a list of char, tuples records with numbered fields, enums
// payload-free variants and flags records of bools. Resources and handles
// become entries of the Resource arena.
type Lowerer struct {
	iface     *Interface
	defs      map[*wit.TypeDef]Type
	resources map[*wit.TypeDef]ResourceID
	boolType  *Type
	strType   *Type
}

// NewLowerer returns a Lowerer that appends to iface.
func NewLowerer(iface *Interface) *Lowerer {
	return &Lowerer{
		iface:     iface,
		defs:      make(map[*wit.TypeDef]Type),
		resources: make(map[*wit.TypeDef]ResourceID),
	}
}

// Interface returns the interface being populated.
func (l *Lowerer) Interface() *Interface {
	return l.iface
}

// Lower returns the witx reference for t, defining arena entries as needed.
// Repeated calls with the same *wit.TypeDef return the same reference.
func (l *Lowerer) Lower(t wit.Type) (Type, error) {
	switch t := t.(type) {
	case wit.U8:
		return U8, nil
	case wit.U16:
		return U16, nil
	case wit.U32:
		return U32, nil
	case wit.U64:
		return U64, nil
	case wit.S8:
		return S8, nil
	case wit.S16:
		return S16, nil
	case wit.S32:
		return S32, nil
	case wit.S64:
		return S64, nil
	case wit.F32:
		return F32, nil
	case wit.F64:
		return F64, nil
	case wit.Char:
		return Char, nil
	case wit.Bool:
		return l.boolRef(), nil
	case wit.String:
		return l.stringRef(), nil
	case *wit.TypeDef:
		return l.lowerTypeDef(t)
	case nil:
		return Type{}, errors.InvalidData(errors.PhaseDecode, []string{l.iface.Name}, "nil type")
	default:
		return Type{}, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(l.iface.Name).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

// Resource registers a resource definition and returns its handle.
func (l *Lowerer) Resource(def *wit.TypeDef, name string) Type {
	if id, ok := l.resources[def]; ok {
		return Handle(id)
	}
	h := l.iface.AddResource(name)
	id, _ := h.ResourceID()
	l.resources[def] = id
	return h
}

func (l *Lowerer) boolRef() Type {
	if l.boolType == nil {
		t := l.iface.AddType(&Variant{Cases: []Case{{Name: "false"}, {Name: "true"}}})
		l.boolType = &t
	}
	return *l.boolType
}

func (l *Lowerer) stringRef() Type {
	if l.strType == nil {
		t := l.iface.AddType(List{Elem: Char})
		l.strType = &t
	}
	return *l.strType
}

func (l *Lowerer) lowerTypeDef(def *wit.TypeDef) (Type, error) {
	if t, ok := l.defs[def]; ok {
		return t, nil
	}
	name := ""
	if def.Name != nil {
		name = *def.Name
	}

	switch k := def.Kind.(type) {
	case *wit.Resource:
		return l.Resource(def, name), nil
	case *wit.Own:
		return l.lowerHandle(k.Type, name)
	case *wit.Borrow:
		return l.lowerHandle(k.Type, name)
	}

	// Reserve before descending so self references resolve to this slot.
	id := l.iface.ReserveType()
	ref := ID(id)
	l.defs[def] = ref

	kind, err := l.lowerKind(def.Kind, name)
	if err != nil {
		return Type{}, err
	}
	if err := l.iface.DefineType(id, TypeDef{Name: name, Kind: kind}); err != nil {
		return Type{}, err
	}
	return ref, nil
}

func (l *Lowerer) lowerHandle(res *wit.TypeDef, fallback string) (Type, error) {
	if res == nil {
		return l.iface.AddResource(fallback), nil
	}
	name := fallback
	if res.Name != nil {
		name = *res.Name
	}
	return l.Resource(res, name), nil
}

func (l *Lowerer) lowerKind(kind wit.TypeDefKind, name string) (TypeDefKind, error) {
	path := func(elem string) []string { return []string{l.iface.Name, name, elem} }

	switch k := kind.(type) {
	case *wit.Record:
		fields := make([]Field, len(k.Fields))
		for i, f := range k.Fields {
			t, err := l.Lower(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Type: t}
		}
		return &Record{Fields: fields}, nil

	case *wit.Tuple:
		fields := make([]Field, len(k.Types))
		for i, elem := range k.Types {
			t, err := l.Lower(elem)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: strconv.Itoa(i), Type: t}
		}
		return &Record{Fields: fields}, nil

	case *wit.Flags:
		fields := make([]Field, len(k.Flags))
		for i, f := range k.Flags {
			fields[i] = Field{Name: f.Name, Type: l.boolRef()}
		}
		return &Record{Fields: fields}, nil

	case *wit.List:
		t, err := l.Lower(k.Type)
		if err != nil {
			return nil, err
		}
		return List{Elem: t}, nil

	case *wit.Option:
		t, err := l.Lower(k.Type)
		if err != nil {
			return nil, err
		}
		return &Variant{Cases: []Case{{Name: "none"}, {Name: "some", Type: &t}}}, nil

	case *wit.Result:
		ok, err := l.lowerOptional(k.OK)
		if err != nil {
			return nil, err
		}
		fail, err := l.lowerOptional(k.Err)
		if err != nil {
			return nil, err
		}
		return &Variant{Cases: []Case{{Name: "ok", Type: ok}, {Name: "err", Type: fail}}}, nil

	case *wit.Enum:
		cases := make([]Case, len(k.Cases))
		for i, c := range k.Cases {
			cases[i] = Case{Name: c.Name}
		}
		return &Variant{Cases: cases}, nil

	case *wit.Variant:
		cases := make([]Case, len(k.Cases))
		for i, c := range k.Cases {
			payload, err := l.lowerOptional(c.Type)
			if err != nil {
				return nil, err
			}
			cases[i] = Case{Name: c.Name, Type: payload}
		}
		return &Variant{Cases: cases}, nil

	case wit.Type:
		t, err := l.Lower(k)
		if err != nil {
			return nil, err
		}
		return Alias{Type: t}, nil

	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path("kind")...).
			Detail("unsupported TypeDef kind: %T", kind).
			Build()
	}
}

func (l *Lowerer) lowerOptional(t wit.Type) (*Type, error) {
	if t == nil {
		return nil, nil
	}
	lowered, err := l.Lower(t)
	if err != nil {
		return nil, err
	}
	return &lowered, nil
}
