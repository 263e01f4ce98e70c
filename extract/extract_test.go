package extract_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/extract"
	ct "github.com/wippyai/witx-bindgen/internal/componenttest"
	"github.com/wippyai/witx-bindgen/wasm"
	"github.com/wippyai/witx-bindgen/witx"
)

func module(sections ...[2]any) []byte {
	mod := wasm.Header()
	mod = append(mod, wasm.EncodeSection(wasm.SectionType, []byte{0x00})...)
	for _, s := range sections {
		mod = wasm.AppendCustomSection(mod, s[0].(string), s[1].([]byte))
	}
	return mod
}

func section(name string, payload []byte) [2]any {
	return [2]any{name, payload}
}

func msgpackFragment(t *testing.T, f *witx.Fragment) []byte {
	t.Helper()
	data, err := extract.EncodeFragment(f)
	require.NoError(t, err)
	return data
}

func TestExtractCalculator(t *testing.T) {
	mod := module(
		section("name", []byte{0x00}),
		section("component-type:calculator", ct.Calculator()),
	)

	got, err := extract.Extract(mod)
	require.NoError(t, err)

	ifaces := got.Interfaces
	assert.Nil(t, ifaces.Default)
	assert.Empty(t, ifaces.Imports)
	require.Equal(t, []string{"calculator"}, ifaces.ExportNames())

	add, ok := ifaces.Exports["calculator"].Function("add")
	require.True(t, ok)
	assert.Len(t, add.Params, 2)
	assert.Equal(t, []witx.Param{{Type: witx.U32}}, add.Results)

	assert.Equal(t, mod, got.Wasm, "module bytes are returned unstripped")
	got.Wasm[0] = 0xff
	assert.Equal(t, byte(0x00), mod[0], "returned bytes must not alias the input")
}

func TestExtractIgnoresOtherSections(t *testing.T) {
	mod := module(
		section("producers", []byte("garbage")),
		section("wit-component-encoding", []byte{0x04, 0x00}),
	)
	got, err := extract.Extract(mod)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Interfaces.Len())
}

func TestExtractDuplicateDefault(t *testing.T) {
	mod := module(
		section("component-type:a", ct.DefaultFunc("run")),
		section("component-type:b", ct.DefaultFunc("stop")),
	)
	got, err := extract.Extract(mod)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseMerge, Kind: errors.KindDuplicateDefault}))
	assert.Contains(t, err.Error(), "default interface specified a second time")

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, "component-type:b", e.Section)
	assert.Equal(t, errors.KindDuplicateDefault, e.Kind)
}

func TestExtractDuplicateExport(t *testing.T) {
	mod := module(
		section("component-type:one", ct.Calculator()),
		section("component-type:two", ct.Calculator()),
	)
	_, err := extract.Extract(mod)
	require.Error(t, err)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindDuplicateExport, e.Kind)
	assert.Equal(t, "calculator", e.Value)
	assert.Equal(t, "component-type:two", e.Section)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseMerge, Kind: errors.KindDuplicateExport}))
	assert.Contains(t, err.Error(), "in section component-type:two")
	assert.Contains(t, err.Error(), "export interface `calculator` specified twice")
}

func TestExtractSelfBoundTypeFails(t *testing.T) {
	world := ct.ComponentType(
		ct.ImportDecl("t", ct.TypeEq(0)),
		ct.ExportDecl("calculator", ct.Instance(0)),
	)
	_, err := extract.Extract(module(section("component-type:x", ct.Component(world))))
	require.Error(t, err)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.PhaseExtract, e.Phase)
	assert.Equal(t, "component-type:x", e.Section)
}

func TestExtractUnionOfNames(t *testing.T) {
	a := &witx.Fragment{
		Imports: []witx.NamedInterface{{Name: "env", Interface: witx.NewInterface("env")}},
		Exports: []witx.NamedInterface{{Name: "run", Interface: witx.NewInterface("run")}},
	}
	b := &witx.Fragment{
		Default: witx.NewInterface(witx.DefaultInterfaceName),
		Imports: []witx.NamedInterface{{Name: "wasi:io", Interface: witx.NewInterface("io")}},
		// same name as an import of a: collections are checked independently
		Exports: []witx.NamedInterface{{Name: "env", Interface: witx.NewInterface("env")}},
	}
	mod := module(
		section("component-type:a", msgpackFragment(t, a)),
		section("component-type:b", msgpackFragment(t, b)),
		section("component-type:c", ct.Calculator()),
	)

	got, err := extract.Extract(mod)
	require.NoError(t, err)
	assert.NotNil(t, got.Interfaces.Default)
	assert.Equal(t, []string{"env", "wasi:io"}, got.Interfaces.ImportNames())
	assert.Equal(t, []string{"calculator", "env", "run"}, got.Interfaces.ExportNames())
}

func TestExtractDecodeFailureNamesSection(t *testing.T) {
	mod := module(
		section("component-type:good", ct.Calculator()),
		section("component-type:bad", []byte{0x00, 0x61, 0x73, 0x6d, 0x0d, 0x00, 0x01, 0x00, 0x07}),
	)
	_, err := extract.Extract(mod)
	require.Error(t, err)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.PhaseExtract, e.Phase)
	assert.Equal(t, "component-type:bad", e.Section)
	assert.Contains(t, err.Error(), "decoding custom section component-type:bad")
	assert.NotNil(t, stderrors.Unwrap(err))
}

func TestExtractInvalidModule(t *testing.T) {
	_, err := extract.Extract([]byte("nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding item in module")

	truncated := append(wasm.Header(), 0x00, 0x20)
	_, err = extract.Extract(truncated)
	require.Error(t, err)
}

func TestExtractOptions(t *testing.T) {
	var seen []string
	dec := extract.DecoderFunc(func(name string, payload []byte) (*witx.Fragment, error) {
		seen = append(seen, name)
		return &witx.Fragment{}, nil
	})
	mod := module(
		section("component-type:x", nil),
		section("my-types:a", nil),
		section("my-types:b", nil),
	)

	core, logs := observer.New(zap.DebugLevel)
	_, err := extract.Extract(mod,
		extract.WithDecoder(dec),
		extract.WithSectionPrefix("my-types"),
		extract.WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, []string{"my-types:a", "my-types:b"}, seen)
	assert.Equal(t, 2, logs.FilterMessage("folded section").Len())
	assert.Equal(t, 1, logs.FilterMessage("extraction complete").Len())
}

func TestEmbed(t *testing.T) {
	frag := &witx.Fragment{Exports: []witx.NamedInterface{{Name: "calc", Interface: witx.NewInterface("calc")}}}
	out, err := extract.Embed(module(), "component-type:embedded", frag)
	require.NoError(t, err)

	got, err := extract.Extract(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"calc"}, got.Interfaces.ExportNames())

	_, err = extract.Embed([]byte("bad"), "component-type:x", frag)
	assert.Error(t, err)
}
