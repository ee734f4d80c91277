// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TarReader reads records back out of a sequence of shard tar files,
// produced in order by a ShardWriter/TarWriter pair. Shards are opened one
// at a time, but each shard's entries are read fully into memory before
// its first record is returned.
type TarReader struct {
	shardPaths []string
	features   Features

	shardIdx  int
	shard     *Handle
	tr        *tar.Reader
	pending   []pendingRecord
	openShard func(path string) (*Handle, io.Reader, error)
}

type pendingRecord struct {
	index string
	value any
}

// NewTarReader builds a TarReader over shardPaths, decoding every record
// against features.
func NewTarReader(shardPaths []string, features Features) *TarReader {
	paths := make([]string, len(shardPaths))
	copy(paths, shardPaths)
	return &TarReader{shardPaths: paths, features: features}
}

// TarReaderFromManifest builds a TarReader from a Manifest previously
// written by a ShardWriter: shard paths are manifest.FileList resolved
// relative to dir (the directory containing dataset_info.json).
func TarReaderFromManifest(dir string, manifest Manifest) *TarReader {
	paths := make([]string, len(manifest.FileList))
	for i, f := range manifest.FileList {
		paths[i] = filepath.Join(dir, f)
	}
	return NewTarReader(paths, manifest.Features)
}

// Next returns the next (shardPath, index, decoded record) triple, or
// io.EOF once every shard has been exhausted.
func (r *TarReader) Next() (string, string, map[string]any, error) {
	for {
		if len(r.pending) > 0 {
			rec := r.pending[0]
			r.pending = r.pending[1:]
			decoded, err := r.decode(rec.value)
			if err != nil {
				return "", "", nil, err
			}
			return r.shardPaths[r.shardIdx-1], rec.index, decoded, nil
		}
		if err := r.advanceShard(); err != nil {
			return "", "", nil, err
		}
		if err := r.fillFromShard(); err != nil {
			return "", "", nil, err
		}
	}
}

func (r *TarReader) decode(value any) (map[string]any, error) {
	// A single-field record may be stored as one file named by its index.
	if h, ok := value.(*Handle); ok && r.features.Len() == 1 {
		value = map[string]any{r.features.Names()[0]: h}
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &InvalidValueTypeError{Msg: fmt.Sprintf("expected a record map, got %T", value)}
	}
	return r.features.DecodeExample(m)
}

// advanceShard closes the current shard (if any) and opens the next one,
// returning io.EOF once shardPaths is exhausted.
func (r *TarReader) advanceShard() error {
	if r.shard != nil {
		r.shard.Autoclose()
		r.shard = nil
		r.tr = nil
	}
	if r.shardIdx >= len(r.shardPaths) {
		return io.EOF
	}
	path := r.shardPaths[r.shardIdx]
	r.shardIdx++

	if r.openShard != nil {
		shard, reader, err := r.openShard(path)
		if err != nil {
			return err
		}
		r.shard = shard
		r.tr = tar.NewReader(reader)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	br := bufio.NewReader(f)
	reader, err := openMaybeGzip(br)
	if err != nil {
		f.Close()
		return err
	}
	r.shard = NewHandle(f, nil, path)
	r.tr = tar.NewReader(reader)
	return nil
}

// fillFromShard drains the current shard into r.pending, grouped by
// record index; an empty shard just falls through to the next advance.
func (r *TarReader) fillFromShard() error {
	var pending []pendingRecord
	err := groupByIndex(r.shard, r.tr, func(index string, value any) error {
		pending = append(pending, pendingRecord{index: index, value: value})
		return nil
	})
	if err != nil {
		return err
	}
	r.pending = pending
	return nil
}

// openMaybeGzip sniffs br for the gzip magic number and transparently
// wraps it in a gzip.Reader when present, since shards may optionally be
// gzip-compressed on disk.
func openMaybeGzip(br *bufio.Reader) (io.Reader, error) {
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}
