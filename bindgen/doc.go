// Package bindgen maps interface types to Go and generates bindings.
//
// A Mapper turns a witx.Type into a Go type expression (a go/ast node):
//
//	u8..u64, s8..s64     uint8..uint64, int8..int64
//	f32, f64             float32, float64
//	char, cchar, usize   rune, byte, uintptr
//	handle<r>            *pkg.R
//	pointer<T>           *T
//	const-pointer<T>     witgo.ConstPointer[T]
//	list<char>           string
//	list<T>              []T
//	record               struct{F0 T0; F1 T1}
//	bool-shaped variant  bool
//	option variant       witgo.Option[T]
//	result variant       witgo.Result[T, E], witgo.Unit for a missing side
//	named definition     pkg.Name
//
// Buffers and variants of any other shape cannot be mapped; the mapper
// panics with a map-phase *errors.Error for them.
//
// A Generator renders per-interface binding packages and placeholder
// implementations for test harnesses.
package bindgen
