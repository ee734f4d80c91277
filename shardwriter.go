// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	units "github.com/docker/go-units"
)

// ShardWriter splits a stream of records across multiple tar shards,
// rolling over to a new shard once either MaxCount records or MaxSize
// bytes have been written to the current one, and writes the resulting
// Manifest to disk on Close.
type ShardWriter struct {
	dir      string
	pattern  string
	manifest Manifest
	maxCount int
	maxSize  int64

	writer     *TarWriter
	shard      int
	count      int
	size       int64
	totalCount int
	totalSize  int64
	fname      string
}

// NewShardWriter creates dir (if needed) and prepares to write shards
// named by pattern (an fmt verb such as "%05d", combined with dir and a
// ".tar" suffix). maxCount and maxSize bound each shard; a non-positive
// value selects the default bound (1000 records, 3,000,000,000 bytes).
func NewShardWriter(dir string, manifest Manifest, pattern string, maxCount int, maxSize int64) (*ShardWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "%05d"
	}
	if maxCount <= 0 {
		maxCount = 1000
	}
	if maxSize <= 0 {
		maxSize = 3_000_000_000
	}
	sw := &ShardWriter{
		dir:      dir,
		pattern:  pattern,
		manifest: manifest,
		maxCount: maxCount,
		maxSize:  maxSize,
	}
	if err := sw.nextShard(); err != nil {
		return nil, err
	}
	return sw, nil
}

func (w *ShardWriter) nextShard() error {
	if err := w.finishCurrent(); err != nil {
		return err
	}
	w.fname = fmt.Sprintf(w.pattern+".tar", w.shard)
	w.shard++
	f, err := os.Create(filepath.Join(w.dir, w.fname))
	if err != nil {
		return err
	}
	w.writer = NewTarWriter(f, w.manifest.Features)
	w.count = 0
	w.size = 0
	return nil
}

// Write encodes and appends record, rolling to a new shard first if the
// current one has hit either bound.
func (w *ShardWriter) Write(record map[string]any) error {
	if w.writer == nil || w.count >= w.maxCount || w.size > w.maxSize {
		if err := w.nextShard(); err != nil {
			return err
		}
	}
	size, err := w.writer.Write(fmt.Sprintf("%d", w.count), record)
	if err != nil {
		return err
	}
	w.count++
	w.size += size
	w.totalCount++
	w.totalSize += size
	return nil
}

func (w *ShardWriter) finishCurrent() error {
	if w.writer == nil {
		return nil
	}
	if err := w.writer.Close(); err != nil {
		return err
	}
	w.manifest.FileList = append(w.manifest.FileList, w.fname)
	w.writer = nil
	return nil
}

// Close finishes the current shard, logs a summary line, and writes the
// Manifest as pretty-printed JSON alongside the shards.
func (w *ShardWriter) Close() error {
	slog.Info("tarpack: shards written",
		"examples", w.totalCount,
		"shards", w.shard,
		"bytes", units.HumanSize(float64(w.totalSize)))
	if err := w.finishCurrent(); err != nil {
		return err
	}
	return w.manifest.WriteToJSON(filepath.Join(w.dir, ManifestFilename), true)
}
