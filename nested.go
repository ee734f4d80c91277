// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import "fmt"

// encodeNested walks schema and value together, encoding leaves in place
// and recursing into Mapping/OrderedList/Sequence nodes. level is 0 only
// at the record root; a nil record at the root is an error, but a nil
// sub-value anywhere else simply encodes to nil (a "missing field").
func encodeNested(schema FeatureType, value any, level int) (any, error) {
	switch s := schema.(type) {
	case Mapping:
		if level == 0 && value == nil {
			return nil, &InvalidValueError{Msg: "got nil but expected a mapping instead"}
		}
		if value == nil {
			return nil, nil
		}
		m, ok := value.(map[string]any)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a map[string]any for Mapping, got %T", value)}
		}
		out := make(map[string]any, s.Len())
		for _, name := range s.Names() {
			sub, _ := s.Get(name)
			encoded, err := encodeNested(sub, m[name], level+1)
			if err != nil {
				return nil, &ExtractError{Member: name, Err: err}
			}
			out[name] = encoded
		}
		return out, nil

	case OrderedList:
		if value == nil {
			return nil, nil
		}
		list, ok := value.([]any)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a []any for OrderedList, got %T", value)}
		}
		if len(list) == 0 {
			return list, nil
		}
		out := make([]any, len(list))
		for i, o := range list {
			enc, err := encodeNested(s.Element, o, level+1)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil

	case Sequence:
		if value == nil {
			return nil, nil
		}
		if mapping, ok := s.Feature.(Mapping); ok {
			return encodeSequenceOfMapping(mapping, value, level)
		}
		if _, ok := value.(string); ok {
			return nil, &InvalidValueTypeError{Msg: "got a string but expected a list instead"}
		}
		list, ok := value.([]any)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a []any for Sequence, got %T", value)}
		}
		if len(list) == 0 {
			return list, nil
		}
		out := make([]any, len(list))
		for i, o := range list {
			enc, err := encodeNested(s.Feature, o, level+1)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil

	default:
		if value == nil {
			return nil, nil
		}
		leaf, ok := schema.(LeafCodec)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("schema %T is neither composite nor a LeafCodec", schema)}
		}
		return leaf.EncodeLeaf(value)
	}
}

// encodeSequenceOfMapping implements the "reverse list of dict into dict
// of list" compatibility path: a Sequence whose Feature is a Mapping may
// be fed either a []any of per-record maps, or a single
// map[string][]any already in struct-of-lists form.
func encodeSequenceOfMapping(mapping Mapping, value any, level int) (any, error) {
	out := make(map[string]any, mapping.Len())
	switch v := value.(type) {
	case []any:
		for _, name := range mapping.Names() {
			sub, _ := mapping.Get(name)
			col := make([]any, len(v))
			for i, rec := range v {
				m, ok := rec.(map[string]any)
				if !ok {
					return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a map[string]any element, got %T", rec)}
				}
				enc, err := encodeNested(sub, m[name], level+1)
				if err != nil {
					return nil, &ExtractError{Member: name, Err: err}
				}
				col[i] = enc
			}
			out[name] = col
		}
		return out, nil
	case map[string]any:
		for _, name := range mapping.Names() {
			sub, _ := mapping.Get(name)
			subObjs, _ := v[name].([]any)
			col := make([]any, len(subObjs))
			for i, o := range subObjs {
				enc, err := encodeNested(sub, o, level+1)
				if err != nil {
					return nil, &ExtractError{Member: name, Err: err}
				}
				col[i] = enc
			}
			out[name] = col
		}
		return out, nil
	default:
		return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected []any or map[string]any for a Sequence of Mapping, got %T", value)}
	}
}

// decodeNested is encodeNested's inverse: it rebuilds a live value from
// stored bytes/*Handle leaves, following the same schema-driven recursion.
func decodeNested(schema FeatureType, value any) (any, error) {
	switch s := schema.(type) {
	case Mapping:
		if value == nil {
			return nil, nil
		}
		m, ok := value.(map[string]any)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a map[string]any for Mapping, got %T", value)}
		}
		out := make(map[string]any, s.Len())
		for _, name := range s.Names() {
			sub, _ := s.Get(name)
			dec, err := decodeNested(sub, m[name])
			if err != nil {
				return nil, &ExtractError{Member: name, Err: err}
			}
			out[name] = dec
		}
		return out, nil

	case OrderedList:
		return decodeOrderedList(s.Element, value)

	case Sequence:
		if mapping, ok := s.Feature.(Mapping); ok {
			m, ok := value.(map[string]any)
			if !ok {
				return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a map[string]any for Sequence of Mapping, got %T", value)}
			}
			out := make(map[string]any, mapping.Len())
			for _, name := range mapping.Names() {
				sub, _ := mapping.Get(name)
				dec, err := decodeOrderedList(sub, m[name])
				if err != nil {
					return nil, &ExtractError{Member: name, Err: err}
				}
				out[name] = dec
			}
			return out, nil
		}
		return decodeOrderedList(s.Feature, value)

	default:
		if value == nil {
			return nil, nil
		}
		leaf, ok := schema.(LeafCodec)
		if !ok {
			return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("schema %T is neither composite nor a LeafCodec", schema)}
		}
		return leaf.DecodeLeaf(value)
	}
}

// decodeOrderedList decodes every element of value (a []any, or nil) with
// element, matching the Python implementation's single-element-schema-list
// branch of decode_nested_example.
func decodeOrderedList(element FeatureType, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a []any, got %T", value)}
	}
	if len(list) == 0 {
		return list, nil
	}
	out := make([]any, len(list))
	for i, o := range list {
		dec, err := decodeNested(element, o)
		if err != nil {
			return nil, err
		}
		out[i] = dec
	}
	return out, nil
}
