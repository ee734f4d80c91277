// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import "fmt"

// SchemaMismatchError reports that a record's column set (or a nested
// mapping's key set) disagrees with the schema that should describe it.
type SchemaMismatchError struct {
	Expected []string
	Actual   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: expected columns %v, got %v", e.Expected, e.Actual)
}

// DTypeMismatchError reports that a Tensor's realized dtype differs from
// its declared dtype.
type DTypeMismatchError struct {
	Declared string
	Realized string
}

func (e *DTypeMismatchError) Error() string {
	return fmt.Sprintf("dtype mismatch: declared %q, realized %q", e.Declared, e.Realized)
}

// ShapeMismatchError reports that a Tensor's actual shape is incompatible
// with its declared shape.
type ShapeMismatchError struct {
	Declared Shape
	Actual   Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: declared %s, actual %s", e.Declared, e.Actual)
}

// InvalidValueTypeError reports that a value was of the wrong Go type for
// the schema position it occupies (e.g. a string where a list was
// required).
type InvalidValueTypeError struct {
	Msg string
}

func (e *InvalidValueTypeError) Error() string { return e.Msg }

// InvalidValueError reports an out-of-range or otherwise semantically
// invalid value (a nil record, a reserved field name, a duplicate
// shard index).
type InvalidValueError struct {
	Msg string
}

func (e *InvalidValueError) Error() string { return e.Msg }

// ExtractError reports that a tar member could not be extracted from its
// archive.
type ExtractError struct {
	Member string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract member %q: %v", e.Member, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
