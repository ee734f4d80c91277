// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

// Features is the name-ordered schema of a dataset's records: the root
// Mapping a TarWriter/TarReader encode and decode against.
type Features struct {
	Mapping
}

// NewFeatures builds a Features schema preserving the given field order.
func NewFeatures(order []string, fields map[string]FeatureType) Features {
	return Features{Mapping: NewMapping(order, fields)}
}

// EncodeExample encodes one record (a field-name-keyed map) for storage.
func (f Features) EncodeExample(example map[string]any) (map[string]any, error) {
	out, err := encodeNested(f.Mapping, anyMap(example), 0)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	return m, nil
}

// DecodeExample decodes one stored record back into a live value,
// skipping any field present in the schema but absent from example.
func (f Features) DecodeExample(example map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(example))
	for _, name := range f.Names() {
		value, present := example[name]
		if !present {
			continue
		}
		sub, _ := f.Get(name)
		dec, err := decodeNested(sub, value)
		if err != nil {
			return nil, &ExtractError{Member: name, Err: err}
		}
		out[name] = dec
	}
	return out, nil
}

// EncodeColumn encodes every value of column against columnName's schema.
func (f Features) EncodeColumn(column []any, columnName string) ([]any, error) {
	sub, ok := f.Get(columnName)
	if !ok {
		return nil, &SchemaMismatchError{Expected: f.Names(), Actual: []string{columnName}}
	}
	out := make([]any, len(column))
	for i, obj := range column {
		enc, err := encodeNested(sub, obj, 1)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

// EncodeBatch encodes batch (a field-name-keyed map of columns), requiring
// batch's key set to exactly match the schema's.
func (f Features) EncodeBatch(batch map[string][]any) (map[string][]any, error) {
	if err := f.assertColumnSet(keysOf(batch)); err != nil {
		return nil, err
	}
	out := make(map[string][]any, len(batch))
	for name, column := range batch {
		sub, _ := f.Get(name)
		encoded := make([]any, len(column))
		for i, obj := range column {
			enc, err := encodeNested(sub, obj, 1)
			if err != nil {
				return nil, &ExtractError{Member: name, Err: err}
			}
			encoded[i] = enc
		}
		out[name] = encoded
	}
	return out, nil
}

// DecodeColumn decodes every value of column against columnName's schema;
// a nil entry decodes to nil without invoking the schema.
func (f Features) DecodeColumn(column []any, columnName string) ([]any, error) {
	sub, ok := f.Get(columnName)
	if !ok {
		return nil, &SchemaMismatchError{Expected: f.Names(), Actual: []string{columnName}}
	}
	out := make([]any, len(column))
	for i, value := range column {
		if value == nil {
			continue
		}
		dec, err := decodeNested(sub, value)
		if err != nil {
			return nil, err
		}
		out[i] = dec
	}
	return out, nil
}

// DecodeBatch decodes every column of batch against its matching schema.
func (f Features) DecodeBatch(batch map[string][]any) (map[string][]any, error) {
	out := make(map[string][]any, len(batch))
	for name, column := range batch {
		decoded, err := f.DecodeColumn(column, name)
		if err != nil {
			return nil, &ExtractError{Member: name, Err: err}
		}
		out[name] = decoded
	}
	return out, nil
}

// Copy returns an independent Features with the same field order and
// schemas (schemas themselves are immutable value types, so this is a
// shallow copy of the ordering/lookup structures only).
func (f Features) Copy() Features {
	return NewFeatures(f.Names(), f.cloneFields())
}

func (f Features) cloneFields() map[string]FeatureType {
	out := make(map[string]FeatureType, f.Len())
	for _, name := range f.Names() {
		sub, _ := f.Get(name)
		out[name] = sub
	}
	return out
}

func (f Features) assertColumnSet(names []string) error {
	want := f.Names()
	if len(want) != len(names) {
		return &SchemaMismatchError{Expected: want, Actual: names}
	}
	seen := make(map[string]bool, len(want))
	for _, n := range want {
		seen[n] = true
	}
	for _, n := range names {
		if !seen[n] {
			return &SchemaMismatchError{Expected: want, Actual: names}
		}
		delete(seen, n)
	}
	if len(seen) != 0 {
		return &SchemaMismatchError{Expected: want, Actual: names}
	}
	return nil
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func anyMap(m map[string]any) any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
