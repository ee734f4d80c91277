// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"bytes"
	"io"
	"os"

	canonicaljson "github.com/gibson042/canonicaljson-go"
)

// FeatureType is one node of a schema tree. Every variant's Type returns
// the "_type" discriminator used in manifest JSON, so schemas round-trip
// without an open class hierarchy: a closed sum dispatched by string tag,
// not inheritance.
type FeatureType interface {
	Type() string
}

// LeafCodec is implemented by the FeatureType variants that directly
// encode/decode a value to/from bytes: Tensor, Scalar, Text, Json, Audio.
// Mapping, OrderedList and Sequence are composite — they are handled
// structurally by encodeNested/decodeNested instead.
type LeafCodec interface {
	FeatureType
	// EncodeLeaf turns a live value into storable bytes. value is never
	// nil; nil short-circuits before reaching EncodeLeaf (see nested.go).
	EncodeLeaf(value any) ([]byte, error)
	// DecodeLeaf turns bytes (or a *Handle, fully read and closed inside
	// this call) back into a live value.
	DecodeLeaf(value any) (any, error)
}

// ---- Tensor ----

// Tensor is a raw N-D array of a numeric dtype.
type Tensor struct {
	ShapeVal Shape
	DType    string

	// Validator and Reshape override the package-level defaults
	// (DefaultDTypeValidator / DefaultReshaper) when non-nil.
	Validator DTypeValidator
	Reshape   Reshaper
}

// NewTensor builds a Tensor, validating dtype against the active
// DTypeValidator.
func NewTensor(shape Shape, dtype string) (Tensor, error) {
	t := Tensor{ShapeVal: shape, DType: dtype}
	if !t.validator()(dtype) {
		return Tensor{}, &InvalidValueTypeError{Msg: "dtype must be a valid dtype: " + dtype}
	}
	return t, nil
}

func (t Tensor) Type() string { return "Tensor" }

func (t Tensor) validator() DTypeValidator {
	if t.Validator != nil {
		return t.Validator
	}
	return DefaultDTypeValidator
}

func (t Tensor) reshaper() Reshaper {
	if t.Reshape != nil {
		return t.Reshape
	}
	return DefaultReshaper
}

// EncodeLeaf coerces value (an Array or a flat Go numeric slice/scalar) to
// the declared dtype, validates the realized shape against the declared
// one (unknown dims match anything; ranks must agree), and returns the
// contiguous little-endian row-major bytes.
func (t Tensor) EncodeLeaf(value any) ([]byte, error) {
	arr, err := arrayFromGoValue(value, t.DType)
	if err != nil {
		return nil, err
	}
	actual := NewShape(arr.Shape...)
	declared := t.ShapeVal
	if err := declared.AssertSameRank(actual); err != nil {
		return nil, &ShapeMismatchError{Declared: declared, Actual: actual}
	}
	if !declared.IsCompatibleWith(actual) {
		return nil, &ShapeMismatchError{Declared: declared, Actual: actual}
	}
	return arr.Data, nil
}

// DecodeLeaf reinterprets bytes as the declared dtype and reshapes them,
// substituting -1 for unknown dims so the reshaper can infer them.
func (t Tensor) DecodeLeaf(value any) (any, error) {
	data, err := leafBytes(value)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	shape := t.ShapeVal.AsInts()
	return t.reshaper()(data, t.DType, shape)
}

// Scalar is a Tensor of rank 0.
type Scalar struct {
	Tensor
}

// NewScalar builds a Scalar of the given dtype.
func NewScalar(dtype string) (Scalar, error) {
	t, err := NewTensor(Shape{Dims: []Dimension{}, HasRank: true}, dtype)
	if err != nil {
		return Scalar{}, err
	}
	return Scalar{Tensor: t}, nil
}

func (s Scalar) Type() string { return "Scalar" }

// ---- Text ----

// Text is a UTF-8 string leaf.
type Text struct{}

func (Text) Type() string { return "Text" }

func (Text) EncodeLeaf(value any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, &InvalidValueTypeError{Msg: "Text.EncodeLeaf expects a string"}
	}
	return []byte(s), nil
}

func (Text) DecodeLeaf(value any) (any, error) {
	data, err := leafBytes(value)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return string(data), nil
}

// ---- Json ----

// Json is an arbitrary JSON value, stored as UTF-8 text canonicalized by
// canonicaljson-go so the on-disk bytes are stable regardless of Go map
// iteration order.
type Json struct{}

func (Json) Type() string { return "Json" }

func (Json) EncodeLeaf(value any) ([]byte, error) {
	return canonicaljson.Marshal(value)
}

func (Json) DecodeLeaf(value any) (any, error) {
	data, err := leafBytes(value)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var out any
	if err := canonicaljson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Audio ----

// Audio is a Tensor whose payload is the raw bytes of an encoded audio
// file; decoding is deferred to an AudioDecoder built on demand.
type Audio struct {
	Tensor
	SampleRate int // 0 means unset
	LazyDecode bool

	DecoderFactory AudioDecoderFactory
}

// NewAudio builds an Audio feature. shape defaults to {unknown} (one
// unknown-length axis) and dtype to "float32" when left zero-valued, per
// the original's `shape=(None,), dtype="float32"` default.
func NewAudio(shape Shape, dtype string, sampleRate int, lazyDecode bool) (Audio, error) {
	if !shape.HasRank {
		shape = UnknownShape(1)
	}
	if dtype == "" {
		dtype = "float32"
	}
	t, err := NewTensor(shape, dtype)
	if err != nil {
		return Audio{}, err
	}
	return Audio{Tensor: t, SampleRate: sampleRate, LazyDecode: lazyDecode}, nil
}

func (a Audio) Type() string { return "Audio" }

func (a Audio) factory() AudioDecoderFactory {
	if a.DecoderFactory != nil {
		return a.DecoderFactory
	}
	return DefaultAudioDecoderFactory
}

// EncodeLeaf accepts a filesystem path, an io.Reader, or already-read
// bytes, and returns the encoded audio file's bytes verbatim. Raw numeric
// arrays are rejected.
func (a Audio) EncodeLeaf(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return readFileBytes(v)
	case []byte:
		return v, nil
	case io.Reader:
		return io.ReadAll(v)
	case Array:
		return nil, &InvalidValueTypeError{Msg: "Audio must be a path or file-like object, not a raw array"}
	default:
		return nil, &InvalidValueTypeError{Msg: "Audio.EncodeLeaf expects a path, []byte, or io.Reader"}
	}
}

// DecodeLeaf returns an AudioDecoder bound to the payload bytes and this
// feature's declared dtype/shape/sample rate.
func (a Audio) DecodeLeaf(value any) (any, error) {
	data, err := leafBytes(value)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	shape := a.ShapeVal.AsInts()
	return a.factory()(bytes.NewReader(data), a.DType, shape, a.SampleRate), nil
}

// ---- Mapping ----

// Mapping is a composite feature: a name-ordered set of child schemas.
type Mapping struct {
	names  []string
	fields map[string]FeatureType
}

// NewMapping builds a Mapping preserving the given field order.
func NewMapping(order []string, fields map[string]FeatureType) Mapping {
	names := make([]string, len(order))
	copy(names, order)
	f := make(map[string]FeatureType, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	return Mapping{names: names, fields: f}
}

func (m Mapping) Type() string { return "Mapping" }

// Names returns the field names in declared order.
func (m Mapping) Names() []string { return append([]string(nil), m.names...) }

// Get returns the schema for name and whether it is present.
func (m Mapping) Get(name string) (FeatureType, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Len returns the number of fields.
func (m Mapping) Len() int { return len(m.names) }

// ---- OrderedList / Tuple ----

// OrderedList is a fixed-element-shape ordered list: every element shares
// Element's schema. Encoding mirrors Sequence but without the
// struct-of-lists transform.
type OrderedList struct {
	Element FeatureType
}

func (OrderedList) Type() string { return "OrderedList" }

// ---- Sequence ----

// Sequence is a variable-length list whose element schema is either
// homogeneous (Feature is a leaf/composite) or a struct (Feature is a
// Mapping), in which case the on-disk encoding is struct-of-lists.
type Sequence struct {
	Feature FeatureType
	Length  int // -1 means unbounded
}

func (Sequence) Type() string { return "Sequence" }

// ---- shared helpers ----

func readFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// leafBytes normalizes a leaf-decode input (either a raw []byte or a
// *Handle) to a byte slice, or nil if the stream yielded no bytes.
func leafBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case *Handle:
		return ReadAllAndClose(v)
	default:
		return nil, &InvalidValueTypeError{Msg: "leaf decode expects []byte or *Handle"}
	}
}
