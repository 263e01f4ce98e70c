package extract

import (
	"github.com/wippyai/witx-bindgen/component"
	"github.com/wippyai/witx-bindgen/wasm"
	"github.com/wippyai/witx-bindgen/witx"
)

// Decoder turns the payload of one candidate custom section into a fragment.
type Decoder interface {
	Decode(section string, payload []byte) (*witx.Fragment, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(section string, payload []byte) (*witx.Fragment, error)

// Decode calls f.
func (f DecoderFunc) Decode(section string, payload []byte) (*witx.Fragment, error) {
	return f(section, payload)
}

// ComponentDecoder reads payloads encoded as component binaries.
var ComponentDecoder Decoder = DecoderFunc(func(_ string, payload []byte) (*witx.Fragment, error) {
	return component.Decode(payload)
})

// MsgpackDecoder reads payloads written by EncodeFragment.
var MsgpackDecoder Decoder = DecoderFunc(func(_ string, payload []byte) (*witx.Fragment, error) {
	return witx.DecodeFragment(payload)
})

// AutoDecoder picks the component decoder for payloads starting with the
// wasm magic number and the msgpack decoder otherwise.
var AutoDecoder Decoder = DecoderFunc(func(section string, payload []byte) (*witx.Fragment, error) {
	if wasm.HasMagic(payload) {
		return ComponentDecoder.Decode(section, payload)
	}
	return MsgpackDecoder.Decode(section, payload)
})
