package witx

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/witx-bindgen/errors"
)

// FragmentSchema is bumped whenever the encoded fragment layout changes.
const FragmentSchema uint16 = 1

const (
	tagReserved uint8 = iota
	tagAlias
	tagPointer
	tagConstPointer
	tagList
	tagPushBuffer
	tagPullBuffer
	tagRecord
	tagVariant
)

// EncodeMsgpack writes a definition as [name, tag, body].
func (d TypeDef) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := enc.EncodeString(d.Name); err != nil {
		return err
	}
	var tag uint8
	var body any
	switch k := d.Kind.(type) {
	case nil:
		tag = tagReserved
	case Alias:
		tag, body = tagAlias, k.Type
	case Pointer:
		tag, body = tagPointer, k.Elem
	case ConstPointer:
		tag, body = tagConstPointer, k.Elem
	case List:
		tag, body = tagList, k.Elem
	case PushBuffer:
		tag, body = tagPushBuffer, k.Elem
	case PullBuffer:
		tag, body = tagPullBuffer, k.Elem
	case *Record:
		tag, body = tagRecord, k.Fields
	case *Variant:
		tag, body = tagVariant, k.Cases
	default:
		return fmt.Errorf("witx: cannot encode type kind %T", d.Kind)
	}
	if err := enc.EncodeUint8(tag); err != nil {
		return err
	}
	return enc.Encode(body)
}

// DecodeMsgpack reads a definition written by EncodeMsgpack.
func (d *TypeDef) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 3 {
		return fmt.Errorf("witx: type definition has %d elements, want 3", n)
	}
	if d.Name, err = dec.DecodeString(); err != nil {
		return err
	}
	tag, err := dec.DecodeUint8()
	if err != nil {
		return err
	}

	var elem Type
	switch tag {
	case tagReserved:
		d.Kind = nil
		return dec.Skip()
	case tagRecord:
		var fields []Field
		if err := dec.Decode(&fields); err != nil {
			return err
		}
		d.Kind = &Record{Fields: fields}
		return nil
	case tagVariant:
		var cases []Case
		if err := dec.Decode(&cases); err != nil {
			return err
		}
		d.Kind = &Variant{Cases: cases}
		return nil
	case tagAlias, tagPointer, tagConstPointer, tagList, tagPushBuffer, tagPullBuffer:
		if err := dec.Decode(&elem); err != nil {
			return err
		}
	default:
		return fmt.Errorf("witx: unknown type kind tag %d", tag)
	}

	switch tag {
	case tagAlias:
		d.Kind = Alias{Type: elem}
	case tagPointer:
		d.Kind = Pointer{Elem: elem}
	case tagConstPointer:
		d.Kind = ConstPointer{Elem: elem}
	case tagList:
		d.Kind = List{Elem: elem}
	case tagPushBuffer:
		d.Kind = PushBuffer{Elem: elem}
	case tagPullBuffer:
		d.Kind = PullBuffer{Elem: elem}
	}
	return nil
}

type fragmentEnvelope struct {
	Fragment *Fragment `msgpack:"fragment"`
	Schema   uint16    `msgpack:"schema"`
}

// EncodeFragment serializes a fragment. Every interface is validated first.
func EncodeFragment(f *Fragment) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&fragmentEnvelope{Schema: FragmentSchema, Fragment: f}); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "encoding fragment")
	}
	return buf.Bytes(), nil
}

// DecodeFragment parses a fragment written by EncodeFragment.
func DecodeFragment(data []byte) (*Fragment, error) {
	var env fragmentEnvelope
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&env); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "decoding msgpack fragment")
	}
	if env.Schema != FragmentSchema {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Detail("fragment schema %d, want %d", env.Schema, FragmentSchema).
			Value(env.Schema).
			Build()
	}
	if env.Fragment == nil {
		return &Fragment{}, nil
	}
	if err := env.Fragment.Validate(); err != nil {
		return nil, err
	}
	return env.Fragment, nil
}

// Validate checks every interface of the fragment.
func (f *Fragment) Validate() error {
	if f.Default != nil {
		if err := f.Default.Validate(); err != nil {
			return err
		}
	}
	for _, list := range [][]NamedInterface{f.Imports, f.Exports} {
		for _, ni := range list {
			if ni.Interface == nil {
				return errors.InvalidData(errors.PhaseDecode, []string{ni.Name}, "missing interface body")
			}
			if err := ni.Interface.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
