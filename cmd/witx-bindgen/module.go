package main

import (
	"os"
	"strings"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/extract"
	"github.com/wippyai/witx-bindgen/witx"
)

func loadModule(path string) (*extract.ModuleInterfaces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("reading "+path, err)
	}
	return extract.Extract(data, extract.WithSectionPrefix(cfg.SectionPrefix))
}

// typeName renders t the way interface definitions spell it. Anonymous
// definitions that lead back to themselves render as "<cycle>".
func typeName(iface *witx.Interface, t witx.Type) string {
	return typeNameSeen(iface, t, make(map[witx.TypeID]bool))
}

func typeNameSeen(iface *witx.Interface, t witx.Type, seen map[witx.TypeID]bool) string {
	switch t.Kind {
	case witx.KindHandle:
		if res, ok := iface.Resource(witx.ResourceID(t.Index)); ok {
			return "handle<" + res.Name + ">"
		}
	case witx.KindID:
		id := witx.TypeID(t.Index)
		def, ok := iface.TypeDef(id)
		if !ok {
			break
		}
		if def.Named() {
			return def.Name
		}
		if seen[id] {
			return "<cycle>"
		}
		seen[id] = true
		defer delete(seen, id)

		switch k := def.Kind.(type) {
		case witx.Alias:
			return typeNameSeen(iface, k.Type, seen)
		case witx.List:
			if k.Elem.Kind == witx.KindChar {
				return "string"
			}
			return "list<" + typeNameSeen(iface, k.Elem, seen) + ">"
		case witx.Pointer:
			return "pointer<" + typeNameSeen(iface, k.Elem, seen) + ">"
		case witx.ConstPointer:
			return "const-pointer<" + typeNameSeen(iface, k.Elem, seen) + ">"
		case *witx.Variant:
			return k.Shape().String()
		}
		return witx.KindName(def.Kind)
	}
	return t.String()
}

// witSignature renders f as "add(a: u32, b: u32) -> u32".
func witSignature(iface *witx.Interface, f *witx.Function) string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(typeName(iface, p.Type))
	}
	b.WriteByte(')')
	switch len(f.Results) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(typeName(iface, f.Results[0].Type))
	default:
		b.WriteString(" -> (")
		for i, r := range f.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(typeName(iface, r.Type))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// goSignature renders f as a Go method, or the reason it cannot be mapped.
func goSignature(m *bindgen.Mapper, f *witx.Function) string {
	sig, err := m.TryMethod(f)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return sig
}
