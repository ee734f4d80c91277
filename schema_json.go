// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToDict serializes the schema to its "_type"-discriminated JSON tree, the
// same representation a dataset_info.json manifest embeds under the
// "features" key.
func (f Features) ToDict() (json.RawMessage, error) {
	return marshalFeature(f.Mapping)
}

// FeaturesFromDict is Features' inverse of ToDict: it regenerates the
// schema tree from a deserialized dataset_info.json "features" value,
// using the "_type" field to pick the concrete FeatureType.
func FeaturesFromDict(raw json.RawMessage) (Features, error) {
	ft, err := featureFromJSON(raw)
	if err != nil {
		return Features{}, err
	}
	m, ok := ft.(Mapping)
	if !ok {
		return Features{}, &InvalidValueTypeError{Msg: "top-level features must be a mapping"}
	}
	return Features{Mapping: m}, nil
}

func marshalFeature(f FeatureType) (json.RawMessage, error) {
	switch v := f.(type) {
	case Features:
		return marshalFeature(v.Mapping)
	case Mapping:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, name := range v.Names() {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(name)
			if err != nil {
				return nil, err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			sub, _ := v.Get(name)
			subJSON, err := marshalFeature(sub)
			if err != nil {
				return nil, err
			}
			buf.Write(subJSON)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case OrderedList:
		elemJSON, err := marshalFeature(v.Element)
		if err != nil {
			return nil, err
		}
		return append(append([]byte("["), elemJSON...), ']'), nil

	case Sequence:
		featJSON, err := marshalFeature(v.Feature)
		if err != nil {
			return nil, err
		}
		return fmt.Appendf(nil, `{"_type":"Sequence","feature":%s,"length":%d}`, featJSON, v.Length), nil

	case Scalar:
		shapeJSON, err := marshalShape(v.ShapeVal)
		if err != nil {
			return nil, err
		}
		dtypeJSON, _ := json.Marshal(v.DType)
		return fmt.Appendf(nil, `{"_type":"Scalar","dtype":%s,"shape":%s}`, dtypeJSON, shapeJSON), nil

	case Tensor:
		shapeJSON, err := marshalShape(v.ShapeVal)
		if err != nil {
			return nil, err
		}
		dtypeJSON, _ := json.Marshal(v.DType)
		return fmt.Appendf(nil, `{"_type":"Tensor","dtype":%s,"shape":%s}`, dtypeJSON, shapeJSON), nil

	case Text:
		return []byte(`{"_type":"Text"}`), nil

	case Json:
		return []byte(`{"_type":"Json"}`), nil

	case Audio:
		shapeJSON, err := marshalShape(v.ShapeVal)
		if err != nil {
			return nil, err
		}
		dtypeJSON, _ := json.Marshal(v.DType)
		return fmt.Appendf(nil, `{"_type":"Audio","dtype":%s,"shape":%s,"sample_rate":%d,"lazy_decode":%t}`,
			dtypeJSON, shapeJSON, v.SampleRate, v.LazyDecode), nil

	default:
		return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("cannot serialize unknown FeatureType %T", f)}
	}
}

func marshalShape(s Shape) (json.RawMessage, error) {
	if !s.HasRank {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range s.Dims {
		if i > 0 {
			buf.WriteByte(',')
		}
		if d.Known() {
			fmt.Fprintf(&buf, "%d", int64(d))
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func unmarshalShape(raw json.RawMessage) (Shape, error) {
	trimmed := bytes.TrimSpace(raw)
	if string(trimmed) == "null" {
		return Shape{}, nil
	}
	var dims []*int64
	if err := json.Unmarshal(raw, &dims); err != nil {
		return Shape{}, err
	}
	out := make([]Dimension, len(dims))
	for i, d := range dims {
		if d == nil {
			out[i] = UnknownDim
		} else {
			out[i] = Dimension(*d)
		}
	}
	return Shape{Dims: out, HasRank: true}, nil
}

// rawPair is one key/raw-value pair of a JSON object, kept in source
// order since map[string]any decoding would otherwise lose it.
type rawPair struct {
	key   string
	value json.RawMessage
}

func decodeOrderedObject(raw json.RawMessage) ([]rawPair, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &InvalidValueTypeError{Msg: "expected a JSON object"}
	}
	var pairs []rawPair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: "expected a JSON object key"}
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		pairs = append(pairs, rawPair{key: key, value: value})
	}
	return pairs, nil
}

func featureFromJSON(raw json.RawMessage) (FeatureType, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		if len(arr) != 1 {
			return nil, &InvalidValueTypeError{Msg: "an OrderedList schema must hold exactly one element schema"}
		}
		elem, err := featureFromJSON(arr[0])
		if err != nil {
			return nil, err
		}
		return OrderedList{Element: elem}, nil
	}

	pairs, err := decodeOrderedObject(raw)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage, len(pairs))
	var names []string
	for _, p := range pairs {
		fields[p.key] = p.value
		names = append(names, p.key)
	}

	typeRaw, hasType := fields["_type"]
	if !hasType {
		subFields := make(map[string]FeatureType, len(pairs))
		for _, p := range pairs {
			sub, err := featureFromJSON(p.value)
			if err != nil {
				return nil, &ExtractError{Member: p.key, Err: err}
			}
			subFields[p.key] = sub
		}
		return NewMapping(names, subFields), nil
	}

	var typ string
	if err := json.Unmarshal(typeRaw, &typ); err != nil {
		return nil, err
	}

	switch typ {
	case "Tensor", "Scalar":
		var dtype string
		if raw, ok := fields["dtype"]; ok {
			if err := json.Unmarshal(raw, &dtype); err != nil {
				return nil, err
			}
		}
		shape, err := unmarshalShape(fields["shape"])
		if err != nil {
			return nil, err
		}
		t, err := NewTensor(shape, dtype)
		if err != nil {
			return nil, err
		}
		if typ == "Scalar" {
			return Scalar{Tensor: t}, nil
		}
		return t, nil

	case "Text":
		return Text{}, nil

	case "Json":
		return Json{}, nil

	case "Audio":
		var dtype string
		if raw, ok := fields["dtype"]; ok {
			if err := json.Unmarshal(raw, &dtype); err != nil {
				return nil, err
			}
		}
		shape, err := unmarshalShape(fields["shape"])
		if err != nil {
			return nil, err
		}
		var sampleRate int
		if raw, ok := fields["sample_rate"]; ok {
			if err := json.Unmarshal(raw, &sampleRate); err != nil {
				return nil, err
			}
		}
		var lazyDecode bool
		if raw, ok := fields["lazy_decode"]; ok {
			if err := json.Unmarshal(raw, &lazyDecode); err != nil {
				return nil, err
			}
		}
		return NewAudio(shape, dtype, sampleRate, lazyDecode)

	case "Sequence":
		feat, err := featureFromJSON(fields["feature"])
		if err != nil {
			return nil, err
		}
		length := -1
		if raw, ok := fields["length"]; ok {
			if err := json.Unmarshal(raw, &length); err != nil {
				return nil, err
			}
		}
		return Sequence{Feature: feat, Length: length}, nil

	default:
		return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("unknown feature _type %q", typ)}
	}
}
