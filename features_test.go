// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeatures(t *testing.T) Features {
	t.Helper()
	return NewFeatures([]string{"name", "age"}, map[string]FeatureType{
		"name": Text{},
		"age":  Text{},
	})
}

func TestFeaturesEncodeDecodeExample(t *testing.T) {
	f := testFeatures(t)
	encoded, err := f.EncodeExample(map[string]any{"name": "ada", "age": "36"})
	require.NoError(t, err)

	decoded, err := f.DecodeExample(encoded)
	require.NoError(t, err)
	assert.Equal(t, "ada", decoded["name"])
	assert.Equal(t, "36", decoded["age"])
}

func TestFeaturesEncodeColumn(t *testing.T) {
	f := testFeatures(t)
	out, err := f.EncodeColumn([]any{"ada", "alan"}, "name")
	require.NoError(t, err)
	assert.Equal(t, []byte("ada"), out[0])
	assert.Equal(t, []byte("alan"), out[1])
}

func TestFeaturesEncodeBatchRejectsColumnMismatch(t *testing.T) {
	f := testFeatures(t)
	_, err := f.EncodeBatch(map[string][]any{"name": {"ada"}})
	assert.Error(t, err)
}

func TestFeaturesEncodeDecodeBatch(t *testing.T) {
	f := testFeatures(t)
	encoded, err := f.EncodeBatch(map[string][]any{
		"name": {"ada", "alan"},
		"age":  {"36", "41"},
	})
	require.NoError(t, err)

	decoded, err := f.DecodeBatch(encoded)
	require.NoError(t, err)
	assert.Equal(t, []any{"ada", "alan"}, decoded["name"])
}

func TestFeaturesCopyEqualsOriginal(t *testing.T) {
	f := testFeatures(t)
	cp := f.Copy()
	assert.True(t, f.Equal(cp))
	assert.Equal(t, f.Names(), cp.Names())
}

func TestFeaturesEqual(t *testing.T) {
	a := testFeatures(t)
	b := testFeatures(t)
	assert.True(t, a.Equal(b))

	c := NewFeatures([]string{"name"}, map[string]FeatureType{"name": Text{}})
	assert.False(t, a.Equal(c))
}
