// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tensorcodec is the default implementation of the tarpack
// external "dtype validator" and "reshaper" collaborators, backed by
// github.com/pdevine/tensor's N-dimensional array type.
package tensorcodec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pdevine/tensor"
)

var dtypes = map[string]tensor.Dtype{
	"bool":    tensor.Bool,
	"uint8":   tensor.Uint8,
	"int8":    tensor.Int8,
	"uint16":  tensor.Uint16,
	"int16":   tensor.Int16,
	"uint32":  tensor.Uint32,
	"int32":   tensor.Int32,
	"uint64":  tensor.Uint64,
	"int64":   tensor.Int64,
	"float32": tensor.Float32,
	"float64": tensor.Float64,
}

var elemSizes = map[string]int{
	"bool":    1,
	"uint8":   1,
	"int8":    1,
	"uint16":  2,
	"int16":   2,
	"uint32":  4,
	"int32":   4,
	"uint64":  8,
	"int64":   8,
	"float32": 4,
	"float64": 8,
	"float16": 2,
}

// Float16Array is the decoded form of a "float16" Tensor. gorgonia/tensor
// (and this module) has no native IEEE 754 half-precision type, so a
// float16 leaf decodes to its raw 16-bit words rather than a *tensor.Dense;
// callers that need actual half-precision arithmetic convert these
// themselves.
type Float16Array struct {
	Shape []int
	Bits  []uint16
}

// Valid reports whether dtype is a recognized dtype token. It is the
// default tarpack.DTypeValidator.
func Valid(dtype string) bool {
	if dtype == "float16" {
		return true
	}
	_, ok := dtypes[dtype]
	return ok
}

// Reshape reinterprets data as a contiguous little-endian row-major array
// of dtype and reshapes it to shape (a -1 entry means "infer this axis"),
// returning a *tensor.Dense for every dtype gorgonia/tensor natively
// supports, or a Float16Array for "float16". It is the default
// tarpack.Reshaper.
func Reshape(data []byte, dtype string, shape []int) (any, error) {
	if dtype == "float16" {
		return reshapeFloat16(data, shape)
	}
	dt, ok := dtypes[dtype]
	if !ok {
		return nil, fmt.Errorf("tensorcodec: unknown dtype %q", dtype)
	}
	size := elemSizes[dtype]
	if size == 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("tensorcodec: data length %d is not a multiple of element size %d for dtype %q", len(data), size, dtype)
	}
	total := len(data) / size

	resolved, err := resolveShape(shape, total)
	if err != nil {
		return nil, err
	}

	backing, err := decodeBacking(data, dtype)
	if err != nil {
		return nil, err
	}

	opts := []tensor.ConsOpt{tensor.Of(dt), tensor.WithBacking(backing)}
	if len(resolved) > 0 {
		opts = append(opts, tensor.WithShape(resolved...))
	} else {
		opts = append(opts, tensor.WithShape())
	}
	return tensor.New(opts...), nil
}

func reshapeFloat16(data []byte, shape []int) (any, error) {
	size := elemSizes["float16"]
	if len(data)%size != 0 {
		return nil, fmt.Errorf("tensorcodec: data length %d is not a multiple of element size %d for dtype \"float16\"", len(data), size)
	}
	total := len(data) / size
	resolved, err := resolveShape(shape, total)
	if err != nil {
		return nil, err
	}
	bits := make([]uint16, total)
	for i := range bits {
		bits[i] = binary.LittleEndian.Uint16(data[i*size:])
	}
	return Float16Array{Shape: resolved, Bits: bits}, nil
}

// resolveShape fills in at most one -1 axis given the total element
// count.
func resolveShape(shape []int, total int) ([]int, error) {
	resolved := make([]int, len(shape))
	unknownAt := -1
	product := 1
	for i, d := range shape {
		if d < 0 {
			if unknownAt >= 0 {
				return nil, fmt.Errorf("tensorcodec: shape %v has more than one unknown axis", shape)
			}
			unknownAt = i
			continue
		}
		resolved[i] = d
		product *= d
	}
	if unknownAt >= 0 {
		if product == 0 || total%product != 0 {
			return nil, fmt.Errorf("tensorcodec: cannot infer axis %d of shape %v from %d elements", unknownAt, shape, total)
		}
		resolved[unknownAt] = total / product
	} else if product != total && len(shape) > 0 {
		return nil, fmt.Errorf("tensorcodec: shape %v does not match %d elements", shape, total)
	}
	return resolved, nil
}

func decodeBacking(data []byte, dtype string) (any, error) {
	le := binary.LittleEndian
	switch dtype {
	case "bool":
		out := make([]bool, len(data))
		for i, b := range data {
			out[i] = b != 0
		}
		return out, nil
	case "uint8":
		out := make([]uint8, len(data))
		copy(out, data)
		return out, nil
	case "int8":
		out := make([]int8, len(data))
		for i, b := range data {
			out[i] = int8(b)
		}
		return out, nil
	case "uint16":
		n := len(data) / 2
		out := make([]uint16, n)
		for i := 0; i < n; i++ {
			out[i] = le.Uint16(data[i*2:])
		}
		return out, nil
	case "int16":
		n := len(data) / 2
		out := make([]int16, n)
		for i := 0; i < n; i++ {
			out[i] = int16(le.Uint16(data[i*2:]))
		}
		return out, nil
	case "uint32":
		n := len(data) / 4
		out := make([]uint32, n)
		for i := 0; i < n; i++ {
			out[i] = le.Uint32(data[i*4:])
		}
		return out, nil
	case "int32":
		n := len(data) / 4
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			out[i] = int32(le.Uint32(data[i*4:]))
		}
		return out, nil
	case "uint64":
		n := len(data) / 8
		out := make([]uint64, n)
		for i := 0; i < n; i++ {
			out[i] = le.Uint64(data[i*8:])
		}
		return out, nil
	case "int64":
		n := len(data) / 8
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			out[i] = int64(le.Uint64(data[i*8:]))
		}
		return out, nil
	case "float32":
		n := len(data) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float32frombits(le.Uint32(data[i*4:]))
		}
		return out, nil
	case "float64":
		n := len(data) / 8
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(le.Uint64(data[i*8:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensorcodec: unknown dtype %q", dtype)
	}
}
