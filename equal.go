// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// Equal reports whether f and other describe the same schema: same field
// names with the same leaf/composite structure. Field order is not
// compared, since the trees are decoded into unordered maps. It
// compares the two schemas' ToDict trees with go-cmp rather than
// reflect.DeepEqual, since FeatureType implementations carry unexported
// fields (Mapping's name/field index) that are not part of their logical
// identity.
func (f Features) Equal(other Features) bool {
	a, err := treeOf(f)
	if err != nil {
		return false
	}
	b, err := treeOf(other)
	if err != nil {
		return false
	}
	return cmp.Equal(a, b)
}

func treeOf(f Features) (any, error) {
	raw, err := f.ToDict()
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Equal reports whether m and other serialize to the same manifest JSON:
// same description, file list, schema, size, and metadata.
func (m Manifest) Equal(other Manifest) bool {
	a, err := json.Marshal(m)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return cmp.Equal(av, bv)
}
