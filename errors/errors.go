package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseExtract  Phase = "extract"  // custom section selection
	PhaseDecode   Phase = "decode"   // payload to fragment
	PhaseMerge    Phase = "merge"    // fragment folding
	PhaseMap      Phase = "map"      // type mapping
	PhaseGenerate Phase = "generate" // stub/binding emission
	PhaseLoad     Phase = "load"     // module loading
	PhaseConfig   Phase = "config"   // configuration
	PhaseHarness  Phase = "harness"  // fixture processing
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData      Kind = "invalid_data"
	KindDuplicateDefault Kind = "duplicate_default"
	KindDuplicateImport  Kind = "duplicate_import"
	KindDuplicateExport  Kind = "duplicate_export"
	KindUnsupported      Kind = "unsupported"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindRecursion        Kind = "recursion"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout witx-bindgen
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Section != "" {
		b.WriteString(" in section ")
		b.WriteString(e.Section)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the name path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Section sets the custom section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// DecodeSection reports a custom section whose payload could not be decoded.
func DecodeSection(section string, cause error) *Error {
	return &Error{
		Phase:   PhaseExtract,
		Kind:    KindInvalidData,
		Section: section,
		Detail:  "decoding custom section " + section,
		Cause:   cause,
	}
}

// FoldSection attaches the section name to an error raised while merging
// the section's fragment. Kind and Value are carried over from cause so the
// outermost error still says what collided.
func FoldSection(section string, cause error) *Error {
	e := DecodeSection(section, cause)
	if c, ok := cause.(*Error); ok {
		e.Kind = c.Kind
		e.Value = c.Value
	}
	return e
}

// DuplicateDefault reports a second default interface.
func DuplicateDefault() *Error {
	return &Error{
		Phase:  PhaseMerge,
		Kind:   KindDuplicateDefault,
		Detail: "default interface specified a second time",
	}
}

// DuplicateName reports a name collision in the import or export collection.
func DuplicateName(kind Kind, collection, name string) *Error {
	return &Error{
		Phase:  PhaseMerge,
		Kind:   kind,
		Path:   []string{name},
		Detail: fmt.Sprintf("%s interface `%s` specified twice", collection, name),
		Value:  name,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
