// Package witgo holds the small generic types that generated bindings refer
// to for shapes Go has no built-in spelling for.
package witgo

// Unit is the empty payload of a result side that carries no value.
type Unit struct{}

// Option is a value that may be absent.
type Option[T any] struct {
	Value T
	Some  bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Some: true}
}

// None returns an absent value.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Some
}

// Or returns the value, or def when absent.
func (o Option[T]) Or(def T) T {
	if o.Some {
		return o.Value
	}
	return def
}

// Result holds either a success value or a failure value.
type Result[T, E any] struct {
	OK    T
	Err   E
	IsErr bool
}

// OK builds a successful result.
func OK[T, E any](v T) Result[T, E] {
	return Result[T, E]{OK: v}
}

// Err builds a failed result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{Err: e, IsErr: true}
}

// Get returns the success value and true, or the zero value and false.
func (r Result[T, E]) Get() (T, bool) {
	if r.IsErr {
		var zero T
		return zero, false
	}
	return r.OK, true
}

// Error returns the failure value and true, or the zero value and false.
func (r Result[T, E]) Error() (E, bool) {
	if !r.IsErr {
		var zero E
		return zero, false
	}
	return r.Err, true
}

// ConstPointer is a pointer whose target is only read through it.
type ConstPointer[T any] struct {
	p *T
}

// NewConstPointer wraps p.
func NewConstPointer[T any](p *T) ConstPointer[T] {
	return ConstPointer[T]{p: p}
}

// IsNil reports whether the pointer is nil.
func (c ConstPointer[T]) IsNil() bool {
	return c.p == nil
}

// Load returns a copy of the target. It panics on a nil pointer.
func (c ConstPointer[T]) Load() T {
	return *c.p
}
