package witx

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/wippyai/witx-bindgen/errors"
)

// Resource is a named opaque handle type.
type Resource struct {
	Name string `msgpack:"name"`
}

// Param is a named function parameter or result. Result names may be empty.
type Param struct {
	Name string `msgpack:"name,omitempty"`
	Type Type   `msgpack:"type"`
}

// Function is a callable member of an interface.
type Function struct {
	Name    string  `msgpack:"name"`
	Params  []Param `msgpack:"params"`
	Results []Param `msgpack:"results"`
}

// Interface is a named collection of functions backed by a type arena and a
// resource arena.
type Interface struct {
	Name      string     `msgpack:"name"`
	Types     []TypeDef  `msgpack:"types"`
	Resources []Resource `msgpack:"resources"`
	Functions []Function `msgpack:"functions"`
}

// NewInterface creates an empty interface.
func NewInterface(name string) *Interface {
	return &Interface{Name: name}
}

// AddType appends an anonymous definition and returns a reference to it.
func (i *Interface) AddType(kind TypeDefKind) Type {
	return i.AddNamedType("", kind)
}

// AddNamedType appends a named definition and returns a reference to it.
func (i *Interface) AddNamedType(name string, kind TypeDefKind) Type {
	id := i.ReserveType()
	i.Types[id] = TypeDef{Name: name, Kind: kind}
	return ID(id)
}

// ReserveType appends an undefined slot so that definitions can refer to it
// before it is filled in by DefineType.
func (i *Interface) ReserveType() TypeID {
	id := TypeID(safecast.MustConv[uint32](len(i.Types)))
	i.Types = append(i.Types, TypeDef{})
	return id
}

// DefineType fills a slot returned by ReserveType.
func (i *Interface) DefineType(id TypeID, def TypeDef) error {
	if int(id) >= len(i.Types) {
		return errors.OutOfBounds(errors.PhaseDecode, []string{i.Name, "types"}, int(id), len(i.Types))
	}
	if i.Types[id].Kind != nil {
		return errors.InvalidData(errors.PhaseDecode, []string{i.Name, "types", strconv.Itoa(int(id))},
			"type slot already defined")
	}
	i.Types[id] = def
	return nil
}

// AddResource appends a resource and returns a handle to it.
func (i *Interface) AddResource(name string) Type {
	id := ResourceID(safecast.MustConv[uint32](len(i.Resources)))
	i.Resources = append(i.Resources, Resource{Name: name})
	return Handle(id)
}

// AddFunction appends a function.
func (i *Interface) AddFunction(f Function) {
	i.Functions = append(i.Functions, f)
}

// TypeDef returns the definition an ID refers to.
func (i *Interface) TypeDef(id TypeID) (*TypeDef, bool) {
	if int(id) >= len(i.Types) {
		return nil, false
	}
	return &i.Types[id], true
}

// Resource returns the resource a handle refers to.
func (i *Interface) Resource(id ResourceID) (*Resource, bool) {
	if int(id) >= len(i.Resources) {
		return nil, false
	}
	return &i.Resources[id], true
}

// Function looks up a function by name.
func (i *Interface) Function(name string) (*Function, bool) {
	for idx := range i.Functions {
		if i.Functions[idx].Name == name {
			return &i.Functions[idx], true
		}
	}
	return nil, false
}

// NamedTypes returns the IDs of every named definition in arena order.
func (i *Interface) NamedTypes() []TypeID {
	var ids []TypeID
	for idx := range i.Types {
		if i.Types[idx].Named() {
			ids = append(ids, TypeID(safecast.MustConv[uint32](idx)))
		}
	}
	return ids
}

// Validate checks that every reference is in range and every reserved slot
// was defined. Cycles are not detected here; the mapper guards against them.
func (i *Interface) Validate() error {
	for idx, def := range i.Types {
		path := []string{i.Name, "types", strconv.Itoa(idx)}
		if def.Kind == nil {
			return errors.InvalidData(errors.PhaseDecode, path, "type slot reserved but never defined")
		}
		for _, ref := range Refs(def.Kind) {
			if err := i.checkRef(ref, path); err != nil {
				return err
			}
		}
	}
	for _, f := range i.Functions {
		for _, p := range f.Params {
			if err := i.checkRef(p.Type, []string{i.Name, f.Name, p.Name}); err != nil {
				return err
			}
		}
		for n, r := range f.Results {
			if err := i.checkRef(r.Type, []string{i.Name, f.Name, fmt.Sprintf("result%d", n)}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i *Interface) checkRef(t Type, path []string) error {
	switch t.Kind {
	case KindID:
		if int(t.Index) >= len(i.Types) {
			return errors.OutOfBounds(errors.PhaseDecode, path, int(t.Index), len(i.Types))
		}
	case KindHandle:
		if int(t.Index) >= len(i.Resources) {
			return errors.OutOfBounds(errors.PhaseDecode, path, int(t.Index), len(i.Resources))
		}
	default:
		if !t.IsPrimitive() {
			return errors.InvalidData(errors.PhaseDecode, path, "unknown type kind "+t.Kind.String())
		}
	}
	return nil
}
