// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"io"

	"github.com/nlpodyssey/tarpack/audiocodec"
	"github.com/nlpodyssey/tarpack/tensorcodec"
)

// DefaultDTypeValidator is used by Tensor-family features whose Validator
// field is left nil. It accepts the dtype tokens tensorcodec backs with
// github.com/pdevine/tensor.
var DefaultDTypeValidator DTypeValidator = tensorcodec.Valid

// DefaultReshaper is used by Tensor-family features whose Reshape field is
// left nil. It decodes raw bytes into a *tensor.Dense, or into a
// tensorcodec.Float16Array for "float16".
var DefaultReshaper Reshaper = tensorcodec.Reshape

// DefaultAudioDecoderFactory is used by Audio features whose
// DecoderFactory field is left nil. It decodes WAV payloads via
// github.com/go-audio/wav.
var DefaultAudioDecoderFactory AudioDecoderFactory = func(r io.ReadSeeker, dtype string, shape []int, sampleRate int) AudioDecoder {
	return audiocodec.New(r, dtype, shape, sampleRate)
}
