package wasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/witx-bindgen/wasm/internal/binary"
)

var (
	// ErrInvalidMagic is returned when the input does not start with "\0asm".
	ErrInvalidMagic = errors.New("invalid wasm magic number")
	// ErrInvalidVersion is returned for binaries that are not core modules.
	ErrInvalidVersion = errors.New("unsupported wasm version")
)

// Section is one payload of a module. For custom sections Name holds the
// section name and Data the bytes following it.
type Section struct {
	Name   string
	Data   []byte
	Offset int
	ID     byte
}

// IsCustom reports whether the section is a custom section.
func (s Section) IsCustom() bool {
	return s.ID == SectionCustom
}

// SectionReader iterates the sections of a core module in document order.
type SectionReader struct {
	r *binary.Reader
}

// NewSectionReader validates the module header and returns a reader
// positioned at the first section.
func NewSectionReader(data []byte) (*SectionReader, error) {
	return newSectionReader(data, Version)
}

// NewComponentSectionReader is NewSectionReader for component binaries.
// Component sections share the id/size framing of core modules.
func NewComponentSectionReader(data []byte) (*SectionReader, error) {
	return newSectionReader(data, ComponentVersion)
}

func newSectionReader(data []byte, want uint32) (*SectionReader, error) {
	r := binary.NewReader(data)
	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, r.WrapError("header", ErrInvalidMagic)
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != want {
		return nil, r.WrapError("header", fmt.Errorf("%w: 0x%x", ErrInvalidVersion, version))
	}
	return &SectionReader{r: r}, nil
}

// HasMagic reports whether data starts with the wasm magic number.
func HasMagic(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x00 && data[1] == 'a' && data[2] == 's' && data[3] == 'm'
}

// IsComponent reports whether data carries a component binary header.
func IsComponent(data []byte) bool {
	if !HasMagic(data) || len(data) < 8 {
		return false
	}
	v := uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24
	return v == ComponentVersion
}

// Next returns the next section, or io.EOF once the module is exhausted.
func (sr *SectionReader) Next() (Section, error) {
	if sr.r.Len() == 0 {
		return Section{}, io.EOF
	}
	offset := sr.r.Position()
	id, err := sr.r.ReadByte()
	if err != nil {
		return Section{}, sr.r.WrapError("section id", err)
	}
	size, err := sr.r.ReadU32()
	if err != nil {
		return Section{}, sr.r.WrapError(SectionName(id), err)
	}
	body, err := sr.r.ReadBytes(int(size))
	if err != nil {
		return Section{}, sr.r.WrapError(SectionName(id), err)
	}

	sec := Section{ID: id, Offset: offset, Data: body}
	if id != SectionCustom {
		return sec, nil
	}

	br := binary.NewReader(body)
	name, err := br.ReadName()
	if err != nil {
		return Section{}, sr.r.WrapError("custom section name", err)
	}
	sec.Name = name
	sec.Data = body[br.Position():]
	return sec, nil
}

// Sections reads every section of a module.
func Sections(data []byte) ([]Section, error) {
	sr, err := NewSectionReader(data)
	if err != nil {
		return nil, err
	}
	var out []Section
	for {
		sec, err := sr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
}

// CustomSections returns the custom sections of a module in document order.
func CustomSections(data []byte) ([]Section, error) {
	all, err := Sections(data)
	if err != nil {
		return nil, err
	}
	var out []Section
	for _, s := range all {
		if s.IsCustom() {
			out = append(out, s)
		}
	}
	return out, nil
}
