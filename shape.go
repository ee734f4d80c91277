// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"fmt"
	"strings"
)

// Dimension is one axis of a Shape. A negative value means the dimension
// is unknown.
type Dimension int64

// UnknownDim is the sentinel Dimension value meaning "unknown".
const UnknownDim Dimension = -1

// Known reports whether d carries a concrete, non-negative size.
func (d Dimension) Known() bool { return d >= 0 }

func (d Dimension) String() string {
	if !d.Known() {
		return "?"
	}
	return fmt.Sprintf("%d", int64(d))
}

// IsCompatibleWith reports whether d and other could describe the same
// axis: true unless both are known and disagree.
func (d Dimension) IsCompatibleWith(other Dimension) bool {
	return !d.Known() || !other.Known() || d == other
}

// MergeWith combines d and other, letting a known value win over an
// unknown one. It fails if both are known and disagree.
func (d Dimension) MergeWith(other Dimension) (Dimension, error) {
	if !d.IsCompatibleWith(other) {
		return 0, fmt.Errorf("dimensions %s and %s are not compatible", d, other)
	}
	if !d.Known() {
		return other, nil
	}
	return d, nil
}

// Shape is a partially or fully known tensor shape. A nil Dims with
// HasRank false means "unknown rank"; otherwise Dims holds one Dimension
// per axis (any of which may itself be UnknownDim).
type Shape struct {
	Dims    []Dimension
	HasRank bool
}

// UnknownShape returns a Shape of unknown rank, or of the given rank with
// every dimension unknown if rank >= 0.
func UnknownShape(rank int) Shape {
	if rank < 0 {
		return Shape{}
	}
	dims := make([]Dimension, rank)
	for i := range dims {
		dims[i] = UnknownDim
	}
	return Shape{Dims: dims, HasRank: true}
}

// NewShape builds a Shape from concrete sizes; a negative entry marks that
// axis unknown.
func NewShape(sizes ...int64) Shape {
	dims := make([]Dimension, len(sizes))
	for i, s := range sizes {
		if s < 0 {
			dims[i] = UnknownDim
		} else {
			dims[i] = Dimension(s)
		}
	}
	return Shape{Dims: dims, HasRank: true}
}

// Rank returns the number of axes, or -1 if the rank itself is unknown.
func (s Shape) Rank() int {
	if !s.HasRank {
		return -1
	}
	return len(s.Dims)
}

func (s Shape) String() string {
	if !s.HasRank {
		return "<unknown>"
	}
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		parts[i] = d.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// IsFullyDefined reports whether every axis has a known size.
func (s Shape) IsFullyDefined() bool {
	if !s.HasRank {
		return false
	}
	for _, d := range s.Dims {
		if !d.Known() {
			return false
		}
	}
	return true
}

// NumElements returns the product of all dimensions, or (-1, false) if the
// shape is not fully defined.
func (s Shape) NumElements() (int64, bool) {
	if !s.IsFullyDefined() {
		return -1, false
	}
	n := int64(1)
	for _, d := range s.Dims {
		n *= int64(d)
	}
	return n, true
}

// IsCompatibleWith reports pointwise compatibility: an unknown rank is
// compatible with anything, and an unknown dimension is compatible with
// any dimension at the same position.
func (s Shape) IsCompatibleWith(other Shape) bool {
	if !s.HasRank || !other.HasRank {
		return true
	}
	if len(s.Dims) != len(other.Dims) {
		return false
	}
	for i, d := range s.Dims {
		if !d.IsCompatibleWith(other.Dims[i]) {
			return false
		}
	}
	return true
}

// AssertSameRank fails if both shapes have a known rank and those ranks
// disagree.
func (s Shape) AssertSameRank(other Shape) error {
	if s.HasRank && other.HasRank && len(s.Dims) != len(other.Dims) {
		return fmt.Errorf("shapes %s and %s must have the same rank", s, other)
	}
	return nil
}

// MergeWith combines s and other pointwise, letting known dimensions win
// over unknown ones. It fails if the ranks or any dimension disagree.
func (s Shape) MergeWith(other Shape) (Shape, error) {
	if !s.HasRank {
		return other, nil
	}
	if !other.HasRank {
		return s, nil
	}
	if err := s.AssertSameRank(other); err != nil {
		return Shape{}, err
	}
	dims := make([]Dimension, len(s.Dims))
	for i, d := range s.Dims {
		merged, err := d.MergeWith(other.Dims[i])
		if err != nil {
			return Shape{}, fmt.Errorf("shapes %s and %s are not compatible: %w", s, other, err)
		}
		dims[i] = merged
	}
	return Shape{Dims: dims, HasRank: true}, nil
}

// Concatenate appends other's axes after s's. The result has unknown rank
// if either operand does.
func (s Shape) Concatenate(other Shape) Shape {
	if !s.HasRank || !other.HasRank {
		return Shape{}
	}
	dims := make([]Dimension, 0, len(s.Dims)+len(other.Dims))
	dims = append(dims, s.Dims...)
	dims = append(dims, other.Dims...)
	return Shape{Dims: dims, HasRank: true}
}

// AsInts returns the shape as a slice of ints, substituting -1 for any
// unknown dimension. Panics if the rank itself is unknown.
func (s Shape) AsInts() []int {
	if !s.HasRank {
		panic("tarpack: AsInts called on a shape of unknown rank")
	}
	out := make([]int, len(s.Dims))
	for i, d := range s.Dims {
		if d.Known() {
			out[i] = int(d)
		} else {
			out[i] = -1
		}
	}
	return out
}

// Uint64s returns the shape as a slice of uint64, or nil if the rank is
// unknown. An unknown dimension is encoded as the sentinel ^uint64(0).
func (s Shape) Uint64s() []uint64 {
	if !s.HasRank {
		return nil
	}
	out := make([]uint64, len(s.Dims))
	for i, d := range s.Dims {
		if d.Known() {
			out[i] = uint64(d)
		} else {
			out[i] = ^uint64(0) // sentinel, decoded back to UnknownDim
		}
	}
	return out
}

// ShapeFromUint64s is the inverse of Shape.Uint64s for shapes of known
// rank; a nil slice yields a rank-0 Shape.
func ShapeFromUint64s(sizes []uint64) Shape {
	dims := make([]Dimension, len(sizes))
	for i, s := range sizes {
		if s == ^uint64(0) {
			dims[i] = UnknownDim
		} else {
			dims[i] = Dimension(s)
		}
	}
	return Shape{Dims: dims, HasRank: true}
}
