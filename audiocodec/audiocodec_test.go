// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package audiocodec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, samples []int, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   samples,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

func openFixture(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestDecoderReadAll(t *testing.T) {
	samples := []int{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	path := writeFixture(t, samples, 8000)
	f := openFixture(t, path)

	d := New(f, "int16", []int{len(samples)}, 8000)
	data, sampleRate, err := d.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 8000, sampleRate)
	assert.Equal(t, samples, data)
}

func TestDecoderReadRange(t *testing.T) {
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = i
	}
	path := writeFixture(t, samples, 100)
	f := openFixture(t, path)

	d := New(f, "int16", []int{len(samples)}, 100)
	data, sampleRate, err := d.ReadRange(0.2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 100, sampleRate)
	assert.Equal(t, samples[20:50], data)
}

func TestDecoderReadRangeRejectsInvertedRange(t *testing.T) {
	path := writeFixture(t, []int{1, 2, 3}, 8000)
	f := openFixture(t, path)

	d := New(f, "int16", []int{3}, 8000)
	_, _, err := d.ReadRange(0.5, 0.1)
	assert.Error(t, err)
}

func TestDecoderReadAllLogsAndReturnsNilOnGarbageInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))
	f := openFixture(t, path)

	d := New(f, "int16", nil, 0)
	data, sampleRate, err := d.ReadAll()
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, 0, sampleRate)
}
