package wasm

import (
	"github.com/wippyai/witx-bindgen/wasm/internal/binary"
)

// Header returns the 8 byte core module preamble.
func Header() []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)
	return w.Bytes()
}

// EncodeSection encodes a section with its ID and size prefix.
func EncodeSection(id byte, body []byte) []byte {
	w := binary.NewWriter()
	w.Byte(id)
	w.WriteU32(uint32(len(body)))
	w.WriteBytes(body)
	return w.Bytes()
}

// EncodeCustomSection encodes a named custom section.
func EncodeCustomSection(name string, data []byte) []byte {
	w := binary.NewWriter()
	w.WriteName(name)
	w.WriteBytes(data)
	return EncodeSection(SectionCustom, w.Bytes())
}

// AppendCustomSection returns a copy of module with a custom section
// appended after its last section. The input slice is not modified.
func AppendCustomSection(module []byte, name string, data []byte) []byte {
	sec := EncodeCustomSection(name, data)
	out := make([]byte, 0, len(module)+len(sec))
	out = append(out, module...)
	return append(out, sec...)
}
