package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseMerge,
				Kind:    KindDuplicateImport,
				Path:    []string{"wasi", "logging"},
				Section: "component-type:app",
				Detail:  "import interface `logging` specified twice",
			},
			contains: []string{"[merge]", "duplicate_import", "wasi.logging", "in section component-type:app", "specified twice"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseExtract,
				Kind:   KindInvalidData,
				Detail: "decoding custom section component-type",
				Cause:  errors.New("unexpected EOF"),
			},
			contains: []string{"[extract]", "invalid_data", "component-type", "caused by", "unexpected EOF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	assert.ErrorIs(t, err.Unwrap(), cause)
	assert.ErrorIs(t, errors.Unwrap(err), cause)
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseMerge,
		Kind:  KindDuplicateExport,
		Path:  []string{"calculator"},
	}

	assert.True(t, err.Is(&Error{Phase: PhaseMerge, Kind: KindDuplicateExport}), "same phase and kind")
	assert.False(t, err.Is(&Error{Phase: PhaseDecode, Kind: KindDuplicateExport}), "different phase")
	assert.False(t, err.Is(&Error{Phase: PhaseMerge, Kind: KindDuplicateImport}), "different kind")
	assert.ErrorIs(t, err, &Error{Phase: PhaseMerge, Kind: KindDuplicateExport})
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseMap, KindUnsupported).
		Path("point", "x").
		Section("component-type").
		Value(42).
		Cause(cause).
		Detail("unimplemented %s", "push-buffer").
		Build()

	assert.Equal(t, PhaseMap, err.Phase)
	assert.Equal(t, KindUnsupported, err.Kind)
	assert.Equal(t, []string{"point", "x"}, err.Path)
	assert.Equal(t, "component-type", err.Section)
	assert.Equal(t, 42, err.Value)
	assert.ErrorIs(t, err.Cause, cause)
	assert.Equal(t, "unimplemented push-buffer", err.Detail)
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("DecodeSection", func(t *testing.T) {
		cause := errors.New("bad magic")
		err := DecodeSection("component-type:x", cause)
		assert.Equal(t, PhaseExtract, err.Phase)
		assert.Equal(t, KindInvalidData, err.Kind)
		assert.Contains(t, err.Error(), "decoding custom section component-type:x")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("FoldSection", func(t *testing.T) {
		cause := DuplicateName(KindDuplicateImport, "import", "env")
		err := FoldSection("component-type:b", cause)
		assert.Equal(t, PhaseExtract, err.Phase)
		assert.Equal(t, KindDuplicateImport, err.Kind)
		assert.Equal(t, "env", err.Value)
		assert.Equal(t, "component-type:b", err.Section)
		assert.ErrorIs(t, err, &Error{Phase: PhaseMerge, Kind: KindDuplicateImport})

		plain := FoldSection("component-type:c", errors.New("boom"))
		assert.Equal(t, KindInvalidData, plain.Kind)
		assert.Nil(t, plain.Value)
	})

	t.Run("DuplicateDefault", func(t *testing.T) {
		assert.Equal(t, KindDuplicateDefault, DuplicateDefault().Kind)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		err := DuplicateName(KindDuplicateExport, "export", "calculator")
		assert.Equal(t, KindDuplicateExport, err.Kind)
		assert.Equal(t, "calculator", err.Value)
		assert.Contains(t, err.Error(), "export interface `calculator` specified twice")
	})

	t.Run("Unsupported", func(t *testing.T) {
		assert.Equal(t, KindUnsupported, Unsupported(PhaseMap, "pull-buffer").Kind)
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMap, []string{"types"}, 10, 5)
		assert.Equal(t, KindOutOfBounds, err.Kind)
		assert.Equal(t, 10, err.Value)
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseHarness, "fixture", "calc.wasm")
		assert.Contains(t, err.Detail, `"calc.wasm"`)
	})

	t.Run("Load", func(t *testing.T) {
		cause := errors.New("eof")
		err := Load("read module", cause)
		require.NotNil(t, err)
		assert.Equal(t, PhaseLoad, err.Phase)
		assert.ErrorIs(t, err, cause)
	})
}
