package extract

import (
	stderrors "errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/wasm"
	"github.com/wippyai/witx-bindgen/witx"
)

// DefaultSectionPrefix selects the custom sections that carry interface
// descriptions.
const DefaultSectionPrefix = "component-type"

// ModuleInterfaces is the result of an extraction: the merged interfaces
// and the module bytes. Wasm is a copy of the input; the interface custom
// sections are still present in it.
type ModuleInterfaces struct {
	Interfaces *witx.ComponentInterfaces
	Wasm       []byte
}

// Option configures an extraction.
type Option func(*options)

type options struct {
	decoder Decoder
	logger  *zap.Logger
	prefix  string
}

// WithDecoder replaces the payload decoder. The default is AutoDecoder.
func WithDecoder(d Decoder) Option {
	return func(o *options) { o.decoder = d }
}

// WithSectionPrefix changes the custom section name prefix.
func WithSectionPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithLogger sets the logger for one extraction.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Extract scans the custom sections of a core module in document order,
// decodes those whose name starts with the section prefix and folds the
// fragments into one aggregate. The first failure aborts the extraction
// and no partial result is returned.
func Extract(module []byte, opts ...Option) (*ModuleInterfaces, error) {
	o := options{decoder: AutoDecoder, prefix: DefaultSectionPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	sr, err := wasm.NewSectionReader(module)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "decoding item in module")
	}

	agg := witx.NewComponentInterfaces()
	candidates := 0
	for {
		sec, err := sr.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err, "decoding item in module")
		}
		if !sec.IsCustom() || !strings.HasPrefix(sec.Name, o.prefix) {
			continue
		}
		candidates++

		frag, err := o.decoder.Decode(sec.Name, sec.Data)
		if err != nil {
			return nil, errors.DecodeSection(sec.Name, err)
		}
		if err := Fold(agg, frag); err != nil {
			log.Debug("fold failed", zap.String("section", sec.Name), zap.Error(err))
			return nil, errors.FoldSection(sec.Name, err)
		}
		log.Debug("folded section",
			zap.String("section", sec.Name),
			zap.Bool("default", frag.Default != nil),
			zap.Int("imports", len(frag.Imports)),
			zap.Int("exports", len(frag.Exports)))
	}

	log.Debug("extraction complete",
		zap.Int("candidates", candidates),
		zap.Int("interfaces", agg.Len()))

	wasmCopy := make([]byte, len(module))
	copy(wasmCopy, module)
	return &ModuleInterfaces{Interfaces: agg, Wasm: wasmCopy}, nil
}

// EncodeFragment serializes a fragment in the format MsgpackDecoder reads.
func EncodeFragment(f *witx.Fragment) ([]byte, error) {
	return witx.EncodeFragment(f)
}

// Embed appends a fragment to a module as a custom section. The name must
// carry the section prefix for Extract to pick it up.
func Embed(module []byte, name string, f *witx.Fragment) ([]byte, error) {
	if _, err := wasm.NewSectionReader(module); err != nil {
		return nil, errors.Wrap(errors.PhaseExtract, errors.KindInvalidInput, err, "embedding into module")
	}
	payload, err := EncodeFragment(f)
	if err != nil {
		return nil, err
	}
	return wasm.AppendCustomSection(module, name, payload), nil
}
