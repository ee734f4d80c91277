// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionCompatibility(t *testing.T) {
	t.Run("unknown is compatible with anything", func(t *testing.T) {
		assert.True(t, UnknownDim.IsCompatibleWith(Dimension(3)))
		assert.True(t, Dimension(3).IsCompatibleWith(UnknownDim))
	})
	t.Run("known values must agree", func(t *testing.T) {
		assert.True(t, Dimension(3).IsCompatibleWith(Dimension(3)))
		assert.False(t, Dimension(3).IsCompatibleWith(Dimension(4)))
	})
	t.Run("merge prefers the known side", func(t *testing.T) {
		merged, err := UnknownDim.MergeWith(Dimension(5))
		require.NoError(t, err)
		assert.Equal(t, Dimension(5), merged)

		_, err = Dimension(3).MergeWith(Dimension(4))
		assert.Error(t, err)
	})
}

func TestShapeCompatibilityAndMerge(t *testing.T) {
	unknownRank := Shape{}
	known := NewShape(2, 3)

	t.Run("unknown rank is compatible with anything", func(t *testing.T) {
		assert.True(t, unknownRank.IsCompatibleWith(known))
		assert.True(t, known.IsCompatibleWith(unknownRank))
	})

	t.Run("rank mismatch is incompatible", func(t *testing.T) {
		assert.False(t, known.IsCompatibleWith(NewShape(2, 3, 4)))
	})

	t.Run("AssertSameRank", func(t *testing.T) {
		require.NoError(t, known.AssertSameRank(NewShape(9, 9)))
		assert.Error(t, known.AssertSameRank(NewShape(2, 3, 4)))
	})

	t.Run("MergeWith fills in unknown axes", func(t *testing.T) {
		partial := NewShape(-1, 3)
		merged, err := partial.MergeWith(NewShape(2, 3))
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, merged.AsInts())
	})

	t.Run("MergeWith rejects disagreeing axes", func(t *testing.T) {
		_, err := known.MergeWith(NewShape(9, 3))
		assert.Error(t, err)
	})
}

func TestShapeNumElements(t *testing.T) {
	n, ok := NewShape(2, 3, 4).NumElements()
	require.True(t, ok)
	assert.Equal(t, int64(24), n)

	_, ok = UnknownShape(2).NumElements()
	assert.False(t, ok)
}

func TestShapeConcatenate(t *testing.T) {
	got := NewShape(2).Concatenate(NewShape(3, 4))
	assert.Equal(t, []int{2, 3, 4}, got.AsInts())
}

func TestShapeUint64sRoundTrip(t *testing.T) {
	s := NewShape(2, -1, 4)
	back := ShapeFromUint64s(s.Uint64s())
	assert.True(t, s.IsCompatibleWith(back))
	assert.Equal(t, []int{2, -1, 4}, back.AsInts())
}
