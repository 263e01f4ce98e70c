package witx

import "sort"

// DefaultInterfaceName names the default interface of a component.
const DefaultInterfaceName = "default"

// NamedInterface pairs an interface with the name it is imported or
// exported under.
type NamedInterface struct {
	Interface *Interface `msgpack:"interface"`
	Name      string     `msgpack:"name"`
}

// Fragment is the decode result of one custom section. Imports and exports
// keep their document order.
type Fragment struct {
	Default *Interface       `msgpack:"default,omitempty"`
	Imports []NamedInterface `msgpack:"imports"`
	Exports []NamedInterface `msgpack:"exports"`
}

// Empty reports whether the fragment carries no interfaces.
func (f *Fragment) Empty() bool {
	return f.Default == nil && len(f.Imports) == 0 && len(f.Exports) == 0
}

// Role says how an interface is attached to a component.
type Role uint8

const (
	RoleDefault Role = iota
	RoleImport
	RoleExport
)

func (r Role) String() string {
	switch r {
	case RoleDefault:
		return "default"
	case RoleImport:
		return "import"
	case RoleExport:
		return "export"
	default:
		return "unknown"
	}
}

// Entry is one interface of a ComponentInterfaces together with its role.
type Entry struct {
	Interface *Interface
	Name      string
	Role      Role
}

// ComponentInterfaces aggregates every interface described by a module:
// at most one default interface, plus name-keyed imports and exports.
type ComponentInterfaces struct {
	Default *Interface            `msgpack:"default,omitempty"`
	Imports map[string]*Interface `msgpack:"imports"`
	Exports map[string]*Interface `msgpack:"exports"`
}

// NewComponentInterfaces returns an empty aggregate.
func NewComponentInterfaces() *ComponentInterfaces {
	return &ComponentInterfaces{
		Imports: make(map[string]*Interface),
		Exports: make(map[string]*Interface),
	}
}

// ImportNames returns the import names in sorted order.
func (c *ComponentInterfaces) ImportNames() []string {
	return sortedKeys(c.Imports)
}

// ExportNames returns the export names in sorted order.
func (c *ComponentInterfaces) ExportNames() []string {
	return sortedKeys(c.Exports)
}

// All returns every interface once: the default interface first, then
// imports and exports sorted by name.
func (c *ComponentInterfaces) All() []Entry {
	var out []Entry
	if c.Default != nil {
		out = append(out, Entry{Interface: c.Default, Name: DefaultInterfaceName, Role: RoleDefault})
	}
	for _, name := range c.ImportNames() {
		out = append(out, Entry{Interface: c.Imports[name], Name: name, Role: RoleImport})
	}
	for _, name := range c.ExportNames() {
		out = append(out, Entry{Interface: c.Exports[name], Name: name, Role: RoleExport})
	}
	return out
}

// Fragment converts the aggregate back into a single fragment with imports
// and exports in name order. Folding it into an empty aggregate yields an
// equal aggregate.
func (c *ComponentInterfaces) Fragment() *Fragment {
	f := &Fragment{Default: c.Default}
	for _, name := range c.ImportNames() {
		f.Imports = append(f.Imports, NamedInterface{Interface: c.Imports[name], Name: name})
	}
	for _, name := range c.ExportNames() {
		f.Exports = append(f.Exports, NamedInterface{Interface: c.Exports[name], Name: name})
	}
	return f
}

// Len returns the number of interfaces in the aggregate.
func (c *ComponentInterfaces) Len() int {
	n := len(c.Imports) + len(c.Exports)
	if c.Default != nil {
		n++
	}
	return n
}

func sortedKeys(m map[string]*Interface) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
