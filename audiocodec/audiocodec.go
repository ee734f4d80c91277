// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package audiocodec is the default implementation of the tarpack
// external "audio decoder factory" collaborator, backed by
// github.com/go-audio/wav.
package audiocodec

import (
	"io"
	"log/slog"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// decoder implements tarpack.AudioDecoder over a WAV payload. Read
// failures are logged and reported as (nil, 0, nil), matching the
// original's AudioDecodeFailure policy of never propagating a decode
// error to the caller of decode_example.
type decoder struct {
	r          io.ReadSeeker
	dtype      string
	shape      []int
	sampleRate int
}

// New builds the default tarpack.AudioDecoderFactory-compatible decoder.
// dtype and shape are accepted for interface symmetry with Tensor but are
// not used to reinterpret samples: go-audio/wav always yields int buffers
// at the file's native bit depth.
func New(r io.ReadSeeker, dtype string, shape []int, sampleRate int) *decoder {
	return &decoder{r: r, dtype: dtype, shape: shape, sampleRate: sampleRate}
}

// ReadAll decodes every frame of the WAV payload.
func (d *decoder) ReadAll() (any, int, error) {
	dec := wav.NewDecoder(d.r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		slog.Error("audiocodec: failed to decode audio payload", "error", err)
		return nil, 0, nil
	}
	return samplesOf(buf), int(dec.SampleRate), nil
}

// ReadRange returns only the frames covering [startSec, endSec); the
// whole payload is decoded first and then sliced.
func (d *decoder) ReadRange(startSec, endSec float64) (any, int, error) {
	if startSec < 0 || endSec < startSec {
		return nil, 0, &rangeError{startSec: startSec, endSec: endSec}
	}
	dec := wav.NewDecoder(d.r)
	dec.ReadInfo()
	if !dec.WasPCMAccessed() && !dec.IsValidFile() {
		slog.Error("audiocodec: payload is not a valid WAV file")
		return nil, 0, nil
	}
	sampleRate := int(dec.SampleRate)

	full, err := dec.FullPCMBuffer()
	if err != nil {
		slog.Error("audiocodec: failed to decode audio range", "error", err)
		return nil, 0, nil
	}
	frames := samplesOf(full)
	numChannels := full.Format.NumChannels
	if numChannels == 0 {
		numChannels = 1
	}
	totalFrames := len(frames) / numChannels
	start := clampFrame(startSec, sampleRate, totalFrames)
	end := clampFrame(endSec, sampleRate, totalFrames)
	if end < start {
		end = start
	}
	return frames[start*numChannels : end*numChannels], sampleRate, nil
}

func clampFrame(sec float64, sampleRate, totalFrames int) int {
	f := int(sec * float64(sampleRate))
	if f < 0 {
		return 0
	}
	if f > totalFrames {
		return totalFrames
	}
	return f
}

func samplesOf(buf *audio.IntBuffer) []int {
	if buf == nil {
		return nil
	}
	return buf.Data
}

type rangeError struct {
	startSec, endSec float64
}

func (e *rangeError) Error() string {
	return "audiocodec: invalid range"
}
