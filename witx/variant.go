package witx

// Shape is the structural interpretation of a variant.
type Shape uint8

const (
	ShapeUnknown Shape = iota
	ShapeBool
	ShapeOption
	ShapeExpected
)

func (s Shape) String() string {
	switch s {
	case ShapeBool:
		return "bool"
	case ShapeOption:
		return "option"
	case ShapeExpected:
		return "expected"
	default:
		return "unknown"
	}
}

// IsBool reports whether cases form a two-case variant without payloads.
// Case names are not consulted.
func IsBool(cases []Case) bool {
	return len(cases) == 2 && cases[0].Type == nil && cases[1].Type == nil
}

// AsOption returns the payload of a two-case variant where exactly one case
// carries a payload. Variants labelled ok/err are results, not options.
func AsOption(cases []Case) (Type, bool) {
	if len(cases) != 2 || isResultLabelled(cases) {
		return Type{}, false
	}
	switch {
	case cases[0].Type == nil && cases[1].Type != nil:
		return *cases[1].Type, true
	case cases[0].Type != nil && cases[1].Type == nil:
		return *cases[0].Type, true
	default:
		return Type{}, false
	}
}

// AsExpected returns the ok and err payloads of a two-case result variant.
// Either payload may be nil. A variant is a result when its cases are
// labelled ok and err, or when both cases carry payloads.
func AsExpected(cases []Case) (ok, err *Type, matched bool) {
	if len(cases) != 2 || IsBool(cases) {
		return nil, nil, false
	}
	if isResultLabelled(cases) || (cases[0].Type != nil && cases[1].Type != nil) {
		return cases[0].Type, cases[1].Type, true
	}
	return nil, nil, false
}

func isResultLabelled(cases []Case) bool {
	return cases[0].Name == "ok" && cases[1].Name == "err"
}

// Shape classifies the variant. Recognition order is bool, then option,
// then expected.
func (v *Variant) Shape() Shape {
	switch {
	case IsBool(v.Cases):
		return ShapeBool
	case isOption(v.Cases):
		return ShapeOption
	case isExpected(v.Cases):
		return ShapeExpected
	default:
		return ShapeUnknown
	}
}

func isOption(cases []Case) bool {
	_, ok := AsOption(cases)
	return ok
}

func isExpected(cases []Case) bool {
	_, _, ok := AsExpected(cases)
	return ok
}
