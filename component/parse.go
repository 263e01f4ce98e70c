package component

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wippyai/witx-bindgen/wasm"
)

// Bounds on counts read from the binary, so that corrupt input fails
// early instead of allocating.
const (
	maxTypes  = 10000
	maxDecls  = 10000
	maxItems  = 1000
	maxString = 10000
)

// TypeSection represents a parsed Type section (Section 7)
type TypeSection struct {
	Types []Type
}

// ParseTypeSection parses a Type section (section 7) from binary data
func ParseTypeSection(data []byte) (*TypeSection, error) {
	r := bytes.NewReader(data)

	count, err := readLEB128(r)
	if err != nil {
		return nil, fmt.Errorf("read type count: %w", err)
	}
	if count > maxTypes {
		return nil, fmt.Errorf("type count %d exceeds maximum", count)
	}

	section := &TypeSection{Types: make([]Type, 0, count)}
	for i := uint32(0); i < count; i++ {
		typ, err := parseType(r)
		if err != nil {
			return nil, fmt.Errorf("type %d: %w", i, err)
		}
		section.Types = append(section.Types, typ)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes in type section", r.Len())
	}
	return section, nil
}

func parseType(r *bytes.Reader) (Type, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read type byte: %w", err)
	}

	switch b {
	case opFunc:
		return parseFuncType(r)
	case opComponent:
		decls, err := parseDecls(r, true)
		if err != nil {
			return nil, err
		}
		return &ComponentType{Decls: decls}, nil
	case opInstance:
		decls, err := parseDecls(r, false)
		if err != nil {
			return nil, err
		}
		return &InstanceType{Decls: decls}, nil
	case opResource:
		return parseResourceType(r)
	default:
		if err := r.UnreadByte(); err != nil {
			return nil, err
		}
		return parseValType(r)
	}
}

// parseFuncType parses a component function type.
//
// The result list is not a vector: 0x00 t is a single result,
// 0x01 0x00 is no result.
func parseFuncType(r *bytes.Reader) (*FuncType, error) {
	count, err := readLEB128(r)
	if err != nil {
		return nil, fmt.Errorf("read param count: %w", err)
	}
	if count > maxItems {
		return nil, fmt.Errorf("param count %d exceeds maximum", count)
	}

	params := make([]ParamType, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("param %d name: %w", i, err)
		}
		vt, err := parseValType(r)
		if err != nil {
			return nil, fmt.Errorf("param %d type: %w", i, err)
		}
		params = append(params, ParamType{Name: name, Type: vt})
	}

	disc, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read result discriminant: %w", err)
	}

	ft := &FuncType{Params: params}
	switch disc {
	case 0x00:
		vt, err := parseValType(r)
		if err != nil {
			return nil, fmt.Errorf("read result type: %w", err)
		}
		ft.Result = &vt
	case 0x01:
		end, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read result end marker: %w", err)
		}
		if end != 0x00 {
			return nil, fmt.Errorf("expected 0x00 after 0x01 in resultlist, got 0x%02x", end)
		}
	default:
		return nil, fmt.Errorf("unknown resultlist discriminant: 0x%02x", disc)
	}
	return ft, nil
}

func parseResourceType(r *bytes.Reader) (*ResourceType, error) {
	rep, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read resource rep: %w", err)
	}
	if rep != 0x7f {
		return nil, fmt.Errorf("resource rep must be i32, got 0x%02x", rep)
	}
	dtor, err := readOptional(r, func() (uint32, error) { return readLEB128(r) })
	if err != nil {
		return nil, fmt.Errorf("resource dtor: %w", err)
	}
	return &ResourceType{Rep: rep, Dtor: dtor}, nil
}

func parseDecls(r *bytes.Reader, component bool) ([]Decl, error) {
	count, err := readLEB128(r)
	if err != nil {
		return nil, fmt.Errorf("read decl count: %w", err)
	}
	if count > maxDecls {
		return nil, fmt.Errorf("decl count %d exceeds maximum", count)
	}

	decls := make([]Decl, 0, count)
	for i := uint32(0); i < count; i++ {
		decl, err := parseDecl(r, component)
		if err != nil {
			return nil, fmt.Errorf("decl %d: %w", i, err)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func parseDecl(r *bytes.Reader, component bool) (Decl, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return Decl{}, fmt.Errorf("read kind: %w", err)
	}

	decl := Decl{Kind: DeclKind(kind)}
	switch decl.Kind {
	case DeclCoreType:
		return Decl{}, fmt.Errorf("core type declarations are not supported")
	case DeclType:
		decl.Type, err = parseType(r)
		if err != nil {
			return Decl{}, fmt.Errorf("read type: %w", err)
		}
	case DeclAlias:
		decl.Alias, err = parseAlias(r)
		if err != nil {
			return Decl{}, fmt.Errorf("read alias: %w", err)
		}
	case DeclImport:
		if !component {
			return Decl{}, fmt.Errorf("import declaration inside instance type")
		}
		fallthrough
	case DeclExport:
		decl.Name, err = readExternName(r)
		if err != nil {
			return Decl{}, err
		}
		decl.Extern, err = parseExternDesc(r)
		if err != nil {
			return Decl{}, fmt.Errorf("%s: %w", decl.Name, err)
		}
	default:
		return Decl{}, fmt.Errorf("unknown decl kind: 0x%02x", kind)
	}
	return decl, nil
}

func readExternName(r *bytes.Reader) (string, error) {
	nameKind, err := r.ReadByte()
	if err != nil {
		return "", fmt.Errorf("read name kind: %w", err)
	}
	if nameKind > 0x01 {
		return "", fmt.Errorf("unknown extern name kind: 0x%02x", nameKind)
	}
	name, err := readString(r)
	if err != nil {
		return "", fmt.Errorf("read name: %w", err)
	}
	return name, nil
}

func parseExternDesc(r *bytes.Reader) (ExternDesc, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return ExternDesc{}, fmt.Errorf("read extern kind: %w", err)
	}
	desc := ExternDesc{Kind: kind}

	switch kind {
	case ExternCoreModule:
		if _, err := r.ReadByte(); err != nil {
			return ExternDesc{}, fmt.Errorf("read core module extra byte: %w", err)
		}
		desc.Index, err = readLEB128(r)
	case ExternFunc, ExternComponent, ExternInstance:
		desc.Index, err = readLEB128(r)
	case ExternValue:
		desc.Bound, err = r.ReadByte()
		if err != nil {
			return ExternDesc{}, fmt.Errorf("read value bound: %w", err)
		}
		switch desc.Bound {
		case BoundEq:
			desc.Index, err = readLEB128(r)
		case 0x01:
			_, err = parseValType(r)
		default:
			return ExternDesc{}, fmt.Errorf("unknown value bound kind: 0x%02x", desc.Bound)
		}
	case ExternType:
		desc.Bound, err = r.ReadByte()
		if err != nil {
			return ExternDesc{}, fmt.Errorf("read type bound: %w", err)
		}
		switch desc.Bound {
		case BoundEq:
			desc.Index, err = readLEB128(r)
		case BoundSubResource:
		default:
			return ExternDesc{}, fmt.Errorf("unknown type bound kind: 0x%02x", desc.Bound)
		}
	default:
		return ExternDesc{}, fmt.Errorf("unknown extern kind: 0x%02x", kind)
	}
	if err != nil {
		return ExternDesc{}, fmt.Errorf("read extern index: %w", err)
	}
	return desc, nil
}

func parseAlias(r *bytes.Reader) (*Alias, error) {
	sort, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read sort: %w", err)
	}
	if sort == 0x00 {
		// core sort
		if _, err := r.ReadByte(); err != nil {
			return nil, fmt.Errorf("read core sort: %w", err)
		}
	}
	target, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read target kind: %w", err)
	}

	a := &Alias{Sort: sort, Target: target}
	switch target {
	case 0x00, 0x01:
		if a.Instance, err = readLEB128(r); err != nil {
			return nil, fmt.Errorf("read instance idx: %w", err)
		}
		if a.Name, err = readString(r); err != nil {
			return nil, fmt.Errorf("read export name: %w", err)
		}
	case 0x02:
		if a.Count, err = readLEB128(r); err != nil {
			return nil, fmt.Errorf("read outer count: %w", err)
		}
		if a.Index, err = readLEB128(r); err != nil {
			return nil, fmt.Errorf("read outer idx: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown alias target kind: 0x%02x", target)
	}
	return a, nil
}

// parseValType checks primitives first, then defined type opcodes, and
// reads everything else as a signed LEB128 type index.
func parseValType(r *bytes.Reader) (ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read val type byte: %w", err)
	}

	if b >= byte(PrimString) && b <= byte(PrimBool) {
		return PrimValType{Type: PrimType(b)}, nil
	}

	switch b {
	case opRecord:
		return parseRecordType(r)
	case opVariant:
		return parseVariantType(r)
	case opList:
		elem, err := parseValType(r)
		if err != nil {
			return nil, fmt.Errorf("list element: %w", err)
		}
		return ListType{ElemType: elem}, nil
	case opTuple:
		return parseTupleType(r)
	case opFlags:
		names, err := readNames(r)
		if err != nil {
			return nil, fmt.Errorf("flags: %w", err)
		}
		return FlagsType{Names: names}, nil
	case opEnum:
		names, err := readNames(r)
		if err != nil {
			return nil, fmt.Errorf("enum: %w", err)
		}
		return EnumType{Cases: names}, nil
	case opOption:
		elem, err := parseValType(r)
		if err != nil {
			return nil, fmt.Errorf("option: %w", err)
		}
		return OptionType{Type: elem}, nil
	case opResult:
		return parseResultType(r)
	case opOwn:
		idx, err := readLEB128(r)
		if err != nil {
			return nil, fmt.Errorf("own: %w", err)
		}
		return OwnType{TypeIndex: idx}, nil
	case opBorrow:
		idx, err := readLEB128(r)
		if err != nil {
			return nil, fmt.Errorf("borrow: %w", err)
		}
		return BorrowType{TypeIndex: idx}, nil
	}

	if err := r.UnreadByte(); err != nil {
		return nil, err
	}
	idx, err := wasm.ReadLEB128s64(r)
	if err != nil {
		return nil, fmt.Errorf("read type index: %w", err)
	}
	if idx < 0 || idx > int64(^uint32(0)) {
		return nil, fmt.Errorf("invalid type index: %d", idx)
	}
	return TypeIndexRef{Index: uint32(idx)}, nil
}

func parseRecordType(r *bytes.Reader) (RecordType, error) {
	count, err := readCount(r)
	if err != nil {
		return RecordType{}, fmt.Errorf("record: %w", err)
	}
	fields := make([]FieldType, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return RecordType{}, fmt.Errorf("field %d name: %w", i, err)
		}
		vt, err := parseValType(r)
		if err != nil {
			return RecordType{}, fmt.Errorf("field %d type: %w", i, err)
		}
		fields = append(fields, FieldType{Name: name, Type: vt})
	}
	return RecordType{Fields: fields}, nil
}

// parseVariantType reads vec(case) where case ::= label' type? refines?.
// The refines slot must be consumed even though it is unused.
func parseVariantType(r *bytes.Reader) (VariantType, error) {
	count, err := readCount(r)
	if err != nil {
		return VariantType{}, fmt.Errorf("variant: %w", err)
	}
	cases := make([]CaseType, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return VariantType{}, fmt.Errorf("case %d name: %w", i, err)
		}
		payload, err := readOptional(r, func() (ValType, error) { return parseValType(r) })
		if err != nil {
			return VariantType{}, fmt.Errorf("case %d type: %w", i, err)
		}
		refines, err := readOptional(r, func() (uint32, error) { return readLEB128(r) })
		if err != nil {
			return VariantType{}, fmt.Errorf("case %d refines: %w", i, err)
		}
		if refines != nil && *refines >= i {
			return VariantType{}, fmt.Errorf("case %d: refines index %d out of bounds", i, *refines)
		}
		cases = append(cases, CaseType{Name: name, Type: payload, Refines: refines})
	}
	return VariantType{Cases: cases}, nil
}

func parseTupleType(r *bytes.Reader) (TupleType, error) {
	count, err := readCount(r)
	if err != nil {
		return TupleType{}, fmt.Errorf("tuple: %w", err)
	}
	types := make([]ValType, 0, count)
	for i := uint32(0); i < count; i++ {
		vt, err := parseValType(r)
		if err != nil {
			return TupleType{}, fmt.Errorf("tuple element %d: %w", i, err)
		}
		types = append(types, vt)
	}
	return TupleType{Types: types}, nil
}

func parseResultType(r *bytes.Reader) (ResultType, error) {
	ok, err := readOptional(r, func() (ValType, error) { return parseValType(r) })
	if err != nil {
		return ResultType{}, fmt.Errorf("result ok: %w", err)
	}
	fail, err := readOptional(r, func() (ValType, error) { return parseValType(r) })
	if err != nil {
		return ResultType{}, fmt.Errorf("result err: %w", err)
	}
	return ResultType{OK: ok, Err: fail}, nil
}

// readOptional reads the <T>? encoding: 0x00 | 0x01 t.
func readOptional[T any](r *bytes.Reader, read func() (T, error)) (*T, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch flag {
	case 0x00:
		return nil, nil
	case 0x01:
		v, err := read()
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("invalid option discriminant 0x%02x", flag)
	}
}

func readNames(r *bytes.Reader) ([]string, error) {
	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func readCount(r *bytes.Reader) (uint32, error) {
	count, err := readLEB128(r)
	if err != nil {
		return 0, err
	}
	if count > maxItems {
		return 0, fmt.Errorf("count %d exceeds maximum", count)
	}
	return count, nil
}

func readLEB128(r io.ByteReader) (uint32, error) {
	return wasm.ReadLEB128u(r)
}

func readString(r *bytes.Reader) (string, error) {
	length, err := readLEB128(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if length > maxString {
		return "", fmt.Errorf("string length %d exceeds maximum", length)
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string bytes: %w", err)
	}
	return string(buf), nil
}
