// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// Array is the core's own minimal live-value representation for a numeric
// tensor: a dtype tag, a shape, and its contiguous little-endian
// row-major bytes. It is what callers pass to Tensor.EncodeLeaf when they
// already know dtype/shape, and it is what Tensor.EncodeLeaf builds
// internally from a plain Go numeric slice before validating it.
type Array struct {
	DType string
	Shape []int64
	Data  []byte
}

// NumElements is the product of Shape.
func (a Array) NumElements() int64 {
	n := int64(1)
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// arrayFromGoValue coerces a plain Go numeric value or slice into an Array
// of the given declared dtype, matching Tensor.encode's "if the input is
// not already an N-D array, coerce using the declared dtype" rule. Only
// scalars and flat (1-D) slices are supported directly; multi-dimensional
// data should be passed in pre-flattened as an Array.
func arrayFromGoValue(value any, dtype string) (Array, error) {
	switch dtype {
	case "bool":
		return encodeBoolSlice(value)
	case "uint8":
		return encodeNumericSlice[uint8](value, "uint8", 1, putUint8)
	case "int8":
		return encodeNumericSlice[int8](value, "int8", 1, putInt8)
	case "uint16":
		return encodeNumericSlice[uint16](value, "uint16", 2, putUint16)
	case "int16":
		return encodeNumericSlice[int16](value, "int16", 2, putInt16)
	case "uint32":
		return encodeNumericSlice[uint32](value, "uint32", 4, putUint32)
	case "int32":
		return encodeNumericSlice[int32](value, "int32", 4, putInt32)
	case "uint64":
		return encodeNumericSlice[uint64](value, "uint64", 8, putUint64)
	case "int64":
		return encodeNumericSlice[int64](value, "int64", 8, putInt64)
	case "float32":
		return encodeNumericSlice[float32](value, "float32", 4, putFloat32)
	case "float64":
		return encodeNumericSlice[float64](value, "float64", 8, putFloat64)
	case "float16":
		// Go has no native half-precision type, so unlike the other numeric
		// dtypes a float16 value cannot be coerced from a plain Go slice: the
		// caller must already have encoded the bits and pass them as an
		// Array.
		arr, ok := value.(Array)
		if !ok || arr.DType != "float16" {
			return Array{}, &InvalidValueTypeError{Msg: "float16 values must be passed as a pre-built Array with raw bit data, not a native Go slice"}
		}
		return arr, nil
	default:
		return Array{}, &InvalidValueTypeError{Msg: fmt.Sprintf("unsupported dtype %q for plain Go value coercion", dtype)}
	}
}

func putUint8(b []byte, v uint8)     { b[0] = v }
func putInt8(b []byte, v int8)       { b[0] = byte(v) }
func putUint16(b []byte, v uint16)   { binary.LittleEndian.PutUint16(b, v) }
func putInt16(b []byte, v int16)     { binary.LittleEndian.PutUint16(b, uint16(v)) }
func putUint32(b []byte, v uint32)   { binary.LittleEndian.PutUint32(b, v) }
func putInt32(b []byte, v int32)     { binary.LittleEndian.PutUint32(b, uint32(v)) }
func putUint64(b []byte, v uint64)   { binary.LittleEndian.PutUint64(b, v) }
func putInt64(b []byte, v int64)     { binary.LittleEndian.PutUint64(b, uint64(v)) }
func putFloat32(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) }
func putFloat64(b []byte, v float64) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) }

// encodeNumericSlice flattens value (a scalar T, a []T, or an Array
// already in T's dtype) into an Array, using put to serialize one element.
func encodeNumericSlice[T any](value any, dtype string, size int, put func([]byte, T)) (Array, error) {
	if arr, ok := value.(Array); ok {
		if arr.DType != dtype {
			return Array{}, &DTypeMismatchError{Declared: dtype, Realized: arr.DType}
		}
		return arr, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		data := make([]byte, n*size)
		for i := 0; i < n; i++ {
			elem, ok := rv.Index(i).Interface().(T)
			if !ok {
				return Array{}, &DTypeMismatchError{Declared: dtype, Realized: fmt.Sprintf("%T", rv.Index(i).Interface())}
			}
			put(data[i*size:(i+1)*size], elem)
		}
		return Array{DType: dtype, Shape: []int64{int64(n)}, Data: data}, nil
	default:
		elem, ok := value.(T)
		if !ok {
			return Array{}, &DTypeMismatchError{Declared: dtype, Realized: fmt.Sprintf("%T", value)}
		}
		data := make([]byte, size)
		put(data, elem)
		return Array{DType: dtype, Shape: nil, Data: data}, nil
	}
}

func encodeBoolSlice(value any) (Array, error) {
	if arr, ok := value.(Array); ok {
		if arr.DType != "bool" {
			return Array{}, &DTypeMismatchError{Declared: "bool", Realized: arr.DType}
		}
		return arr, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		data := make([]byte, n)
		for i := 0; i < n; i++ {
			b, ok := rv.Index(i).Interface().(bool)
			if !ok {
				return Array{}, &DTypeMismatchError{Declared: "bool", Realized: fmt.Sprintf("%T", rv.Index(i).Interface())}
			}
			if b {
				data[i] = 1
			}
		}
		return Array{DType: "bool", Shape: []int64{int64(n)}, Data: data}, nil
	default:
		b, ok := value.(bool)
		if !ok {
			return Array{}, &DTypeMismatchError{Declared: "bool", Realized: fmt.Sprintf("%T", value)}
		}
		v := byte(0)
		if b {
			v = 1
		}
		return Array{DType: "bool", Data: []byte{v}}, nil
	}
}
