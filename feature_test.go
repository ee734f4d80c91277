// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensorEncodeLeaf(t *testing.T) {
	tensor, err := NewTensor(NewShape(3), "float32")
	require.NoError(t, err)

	data, err := tensor.EncodeLeaf([]float32{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, data, 12)
}

func TestTensorEncodeLeafRejectsShapeMismatch(t *testing.T) {
	tensor, err := NewTensor(NewShape(3), "float32")
	require.NoError(t, err)

	_, err = tensor.EncodeLeaf([]float32{1, 2})
	assert.Error(t, err)
	var shapeErr *ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestTensorDecodeLeafUsesInjectedReshaper(t *testing.T) {
	var gotDType string
	var gotShape []int
	tensor, err := NewTensor(NewShape(-1), "int32")
	require.NoError(t, err)
	tensor.Reshape = func(data []byte, dtype string, shape []int) (any, error) {
		gotDType = dtype
		gotShape = shape
		return len(data), nil
	}

	out, err := tensor.DecodeLeaf([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, 8, out)
	assert.Equal(t, "int32", gotDType)
	assert.Equal(t, []int{-1}, gotShape)
}

func TestTensorDecodeLeafNilOnEmptyBytes(t *testing.T) {
	tensor, err := NewTensor(NewShape(3), "float32")
	require.NoError(t, err)
	out, err := tensor.DecodeLeaf([]byte(nil))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestScalarHasRankZero(t *testing.T) {
	s, err := NewScalar("int64")
	require.NoError(t, err)
	assert.Equal(t, 0, s.ShapeVal.Rank())
}

func TestTextRoundTrip(t *testing.T) {
	var txt Text
	data, err := txt.EncodeLeaf("hello, world")
	require.NoError(t, err)

	out, err := txt.DecodeLeaf(data)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", out)
}

func TestTextRejectsNonString(t *testing.T) {
	var txt Text
	_, err := txt.EncodeLeaf(42)
	assert.Error(t, err)
}

func TestJsonRoundTripIsCanonical(t *testing.T) {
	var j Json
	data1, err := j.EncodeLeaf(map[string]any{"b": 1, "a": 2})
	require.NoError(t, err)
	data2, err := j.EncodeLeaf(map[string]any{"a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, data1, data2, "canonical encoding must not depend on map iteration order")

	out, err := j.DecodeLeaf(data1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(2), "b": float64(1)}, out)
}

func TestAudioEncodeLeafRejectsRawArray(t *testing.T) {
	a, err := NewAudio(Shape{}, "", 0, false)
	require.NoError(t, err)
	_, err = a.EncodeLeaf(Array{DType: "float32"})
	assert.Error(t, err)
}

func TestAudioDefaults(t *testing.T) {
	a, err := NewAudio(Shape{}, "", 0, false)
	require.NoError(t, err)
	assert.Equal(t, "float32", a.DType)
	assert.Equal(t, 1, a.ShapeVal.Rank())
}

func TestMappingPreservesOrder(t *testing.T) {
	text := Text{}
	m := NewMapping([]string{"b", "a", "c"}, map[string]FeatureType{
		"a": text, "b": text, "c": text,
	})
	assert.Equal(t, []string{"b", "a", "c"}, m.Names())
	assert.Equal(t, 3, m.Len())

	_, ok := m.Get("missing")
	assert.False(t, ok)
}
