// Package errors provides structured error types for witx-bindgen.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending custom section, a name path and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMerge, errors.KindDuplicateExport).
//		Path("calculator").
//		Detail("export interface %q specified twice", "calculator").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateName(errors.KindDuplicateImport, "import", "wasi-logging")
//	err := errors.DecodeSection("component-type:calc", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
