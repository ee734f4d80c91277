// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import "io"

// DTypeValidator reports whether dtype is a recognized numeric type token.
// The core never hard-codes a dtype registry; it consumes one through this
// function type so callers can plug in whatever numeric-array library they
// use. See the tensorcodec subpackage for a default backed by
// github.com/pdevine/tensor.
type DTypeValidator func(dtype string) bool

// Reshaper turns a raw little-endian byte buffer into a live N-dimensional
// array of the given dtype and shape (a -1 entry means "infer this axis").
// Like DTypeValidator, this is an external collaborator: the core never
// allocates array objects itself.
type Reshaper func(data []byte, dtype string, shape []int) (any, error)

// AudioDecoder lazily materializes samples from an encoded audio payload.
// Implementations must keep the underlying bytes alive for the decoder's
// own lifetime; they do not borrow the tar stream, per the streaming-decode
// design note.
type AudioDecoder interface {
	// ReadAll decodes the whole payload. On failure it logs the error and
	// returns (nil, 0, nil) rather than an error, matching the
	// AudioDecodeFailure policy.
	ReadAll() (samples any, sampleRate int, err error)
	// ReadRange decodes only [startSec, endSec). Returns a non-nil error
	// if startSec < 0 or endSec < startSec (the default audiocodec decoder
	// uses its own error type for this, not InvalidValueError); otherwise
	// follows the same failure policy as ReadAll.
	ReadRange(startSec, endSec float64) (samples any, sampleRate int, err error)
}

// AudioDecoderFactory builds an AudioDecoder bound to r, the declared
// dtype/shape of the Audio feature, and its configured sample rate (0 if
// unset). See the audiocodec subpackage for a default backed by
// github.com/go-audio/wav.
type AudioDecoderFactory func(r io.ReadSeeker, dtype string, shape []int, sampleRate int) AudioDecoder
