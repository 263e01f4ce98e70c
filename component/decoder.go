package component

import (
	stderrors "errors"
	"fmt"
	"io"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/wasm"
	"github.com/wippyai/witx-bindgen/witx"
)

// SectionType is the component type section id.
const SectionType byte = 7

// maxNesting bounds how deep wrapper component types are followed.
const maxNesting = 16

// Decode reads a component binary and returns the interfaces its type
// section describes.
func Decode(data []byte) (*witx.Fragment, error) {
	types, err := ReadTypes(data)
	if err != nil {
		return nil, err
	}
	d := &decoder{frag: &witx.Fragment{}}
	root := newScope(nil)
	for i, t := range types {
		if err := root.declare(Decl{Kind: DeclType, Type: t}); err != nil {
			return nil, d.fail(err, fmt.Sprintf("type %d", i))
		}
		ct, ok := t.(*ComponentType)
		if !ok {
			continue
		}
		if err := d.component(ct, root, 0); err != nil {
			return nil, err
		}
	}
	return d.frag, nil
}

// ReadTypes returns the concatenated entries of every type section of a
// component binary. Other sections are skipped.
func ReadTypes(data []byte) ([]Type, error) {
	sr, err := wasm.NewComponentSectionReader(data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "reading component header")
	}
	var types []Type
	for {
		sec, err := sr.Next()
		if stderrors.Is(err, io.EOF) {
			return types, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "reading component section")
		}
		if sec.ID != SectionType {
			continue
		}
		ts, err := ParseTypeSection(sec.Data)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "parsing type section")
		}
		types = append(types, ts.Types...)
	}
}

type decoder struct {
	frag      *witx.Fragment
	defaults  *witx.Lowerer
	rootFuncs *witx.Lowerer
}

func (d *decoder) fail(err error, path ...string) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(path...).
		Cause(err).
		Detail("decoding component type").
		Build()
}

// component walks a component type. A component type that only wraps
// others through component exports is descended into.
func (d *decoder) component(ct *ComponentType, parent *scope, depth int) error {
	if depth > maxNesting {
		return errors.New(errors.PhaseDecode, errors.KindRecursion).
			Detail("component types nested deeper than %d", maxNesting).
			Build()
	}
	s := newScope(parent)
	for _, decl := range ct.Decls {
		if err := s.declare(decl); err != nil {
			return d.fail(err, decl.Name)
		}
		if decl.Kind != DeclImport && decl.Kind != DeclExport {
			continue
		}
		var err error
		switch decl.Extern.Kind {
		case ExternComponent:
			err = d.nested(decl, s, depth)
		case ExternInstance:
			err = d.instance(decl, s)
		case ExternFunc:
			err = d.rootFunc(decl, s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) nested(decl Decl, s *scope, depth int) error {
	t, owner, err := s.raw(decl.Extern.Index)
	if err != nil {
		return d.fail(err, decl.Name)
	}
	inner, ok := t.(*ComponentType)
	if !ok {
		return d.fail(fmt.Errorf("type at index %d is not a component type: %T", decl.Extern.Index, t), decl.Name)
	}
	return d.component(inner, owner, depth+1)
}

func (d *decoder) instance(decl Decl, s *scope) error {
	t, owner, err := s.raw(decl.Extern.Index)
	if err != nil {
		return d.fail(err, decl.Name)
	}
	it, ok := t.(*InstanceType)
	if !ok {
		return d.fail(fmt.Errorf("type at index %d is not an instance type: %T", decl.Extern.Index, t), decl.Name)
	}

	iface := witx.NewInterface(decl.Name)
	l := witx.NewLowerer(iface)
	inner := newScope(owner)
	for _, id := range it.Decls {
		if err := inner.declare(id); err != nil {
			return d.fail(err, decl.Name, id.Name)
		}
		if id.Kind != DeclExport {
			continue
		}
		switch id.Extern.Kind {
		case ExternType:
			if err := lowerTypeExport(l, inner, uint32(len(inner.entries)-1)); err != nil {
				return d.fail(err, decl.Name, id.Name)
			}
		case ExternFunc:
			f, err := lowerFunc(l, inner, id)
			if err != nil {
				return d.fail(err, decl.Name, id.Name)
			}
			iface.AddFunction(f)
		}
	}

	named := witx.NamedInterface{Name: decl.Name, Interface: iface}
	if decl.Kind == DeclImport {
		d.frag.Imports = append(d.frag.Imports, named)
	} else {
		d.frag.Exports = append(d.frag.Exports, named)
	}
	return nil
}

// rootFunc adds a world-level function: exports to the default interface,
// imports to an import interface named like the default one.
func (d *decoder) rootFunc(decl Decl, s *scope) error {
	var l *witx.Lowerer
	if decl.Kind == DeclExport {
		if d.defaults == nil {
			iface := witx.NewInterface(witx.DefaultInterfaceName)
			d.defaults = witx.NewLowerer(iface)
			d.frag.Default = iface
		}
		l = d.defaults
	} else {
		if d.rootFuncs == nil {
			iface := witx.NewInterface(witx.DefaultInterfaceName)
			d.rootFuncs = witx.NewLowerer(iface)
			d.frag.Imports = append(d.frag.Imports, witx.NamedInterface{Name: witx.DefaultInterfaceName, Interface: iface})
		}
		l = d.rootFuncs
	}
	f, err := lowerFunc(l, s, decl)
	if err != nil {
		return d.fail(err, decl.Name)
	}
	l.Interface().AddFunction(f)
	return nil
}

// lowerTypeExport makes sure a named type export is present in the arena
// even when no function refers to it.
func lowerTypeExport(l *witx.Lowerer, s *scope, idx uint32) error {
	t, err := s.resolve(idx)
	if err != nil {
		return err
	}
	if def, ok := t.(*wit.TypeDef); ok {
		if _, isRes := def.Kind.(*wit.Resource); isRes {
			name := ""
			if def.Name != nil {
				name = *def.Name
			}
			l.Resource(def, name)
			return nil
		}
	}
	_, err = l.Lower(t)
	return err
}

func lowerFunc(l *witx.Lowerer, s *scope, decl Decl) (witx.Function, error) {
	ft, owner, err := s.funcType(decl.Extern.Index)
	if err != nil {
		return witx.Function{}, err
	}
	f := witx.Function{Name: decl.Name}
	for _, p := range ft.Params {
		wt, err := owner.resolveVal(p.Type)
		if err != nil {
			return witx.Function{}, fmt.Errorf("param %q: %w", p.Name, err)
		}
		t, err := l.Lower(wt)
		if err != nil {
			return witx.Function{}, fmt.Errorf("param %q: %w", p.Name, err)
		}
		f.Params = append(f.Params, witx.Param{Name: p.Name, Type: t})
	}
	if ft.Result != nil {
		wt, err := owner.resolveVal(*ft.Result)
		if err != nil {
			return witx.Function{}, fmt.Errorf("result: %w", err)
		}
		t, err := l.Lower(wt)
		if err != nil {
			return witx.Function{}, fmt.Errorf("result: %w", err)
		}
		f.Results = append(f.Results, witx.Param{Type: t})
	}
	return f, nil
}
