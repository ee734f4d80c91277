// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"archive/tar"
	"fmt"
	"io"
)

// TarWriter writes records into one tar archive, each under a directory
// named by its index (also for single-field schemas).
type TarWriter struct {
	tw         *tar.Writer
	closer     io.Closer
	features   Features
	writtenIdx map[string]struct{}
}

// NewTarWriter opens a TarWriter over w, an already-open destination
// (typically an *os.File); w is closed when the TarWriter is closed.
func NewTarWriter(w io.WriteCloser, features Features) *TarWriter {
	return &TarWriter{
		tw:         tar.NewWriter(w),
		closer:     w,
		features:   features,
		writtenIdx: make(map[string]struct{}),
	}
}

// Write encodes record against the TarWriter's schema and appends it under
// idx, returning the number of payload bytes written. idx must be unique
// within this archive and record's key set must exactly match the schema.
func (w *TarWriter) Write(idx string, record map[string]any) (int64, error) {
	if err := w.features.assertColumnSet(keysOf(record)); err != nil {
		return 0, err
	}
	if _, dup := w.writtenIdx[idx]; dup {
		return 0, &InvalidValueError{Msg: fmt.Sprintf("index %q already written", idx)}
	}
	encoded, err := w.features.EncodeExample(record)
	if err != nil {
		return 0, err
	}
	size, err := packTree(w.tw, idx, encoded)
	if err != nil {
		return 0, err
	}
	w.writtenIdx[idx] = struct{}{}
	return size, nil
}

// Close flushes and closes the tar stream and its underlying writer.
func (w *TarWriter) Close() error {
	if err := w.tw.Close(); err != nil {
		return err
	}
	return w.closer.Close()
}
