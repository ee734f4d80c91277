// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensorcodec

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/pdevine/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	for _, dt := range []string{"bool", "uint8", "int8", "uint16", "int16", "float16",
		"uint32", "int32", "uint64", "int64", "float32", "float64"} {
		assert.True(t, Valid(dt), dt)
	}
	assert.False(t, Valid("complex128"))
	assert.False(t, Valid(""))
}

func TestReshapeFloat32(t *testing.T) {
	data := make([]byte, 0, 8)
	for _, v := range []float32{1.5, -2.25} {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}

	out, err := Reshape(data, "float32", []int{2})
	require.NoError(t, err)
	dense, ok := out.(*tensor.Dense)
	require.True(t, ok)
	assert.Equal(t, []int{2}, dense.Shape())
}

func TestReshapeInfersUnknownAxis(t *testing.T) {
	data := make([]byte, 4*6)
	out, err := Reshape(data, "int32", []int{2, -1})
	require.NoError(t, err)
	dense := out.(*tensor.Dense)
	assert.Equal(t, []int{2, 3}, dense.Shape())
}

func TestReshapeRejectsBadLength(t *testing.T) {
	_, err := Reshape([]byte{1, 2, 3}, "int32", []int{1})
	assert.Error(t, err)
}

func TestReshapeFloat16ReturnsRawBits(t *testing.T) {
	data := []byte{0x00, 0x3c, 0x00, 0x40} // two arbitrary float16 words
	out, err := Reshape(data, "float16", []int{2})
	require.NoError(t, err)
	arr, ok := out.(Float16Array)
	require.True(t, ok)
	assert.Equal(t, []int{2}, arr.Shape)
	assert.Equal(t, []uint16{0x3c00, 0x4000}, arr.Bits)
}
