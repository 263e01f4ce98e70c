package harness

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var diagnostics atomic.Bool

// InstallDiagnostics enables logging of the stack of a panic raised while
// generating a fixture. The panic itself is not recovered. Only the first
// call has an effect; it reports whether it was that call.
func InstallDiagnostics() bool {
	return diagnostics.CompareAndSwap(false, true)
}

// guard is deferred around fixture processing.
func guard(fixture string) {
	r := recover()
	if r == nil {
		return
	}
	if diagnostics.Load() {
		Logger().Error("fixture generation panicked",
			zap.String("fixture", fixture),
			zap.Any("panic", r),
			zap.Stack("stack"))
	}
	panic(r)
}
