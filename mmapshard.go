// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"bytes"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// mmappedShard is a read-only memory-mapped shard file. It is the fastest
// way to read an uncompressed shard repeatedly (e.g. random-access
// workloads over a local SSD), at the cost of address space for the
// mapping.
type mmappedShard struct {
	f io.Closer
	m mmap.MMap
}

// openMmappedShard memory-maps path read-only and returns a Handle that
// owns the mapping (its Close unmaps and closes the file) together with a
// reader over the mapped region.
func openMmappedShard(path string) (*Handle, io.Reader, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	s := &mmappedShard{f: f, m: m}
	return NewHandle(s, nil, path), bytes.NewReader(m), nil
}

func (s *mmappedShard) Read(p []byte) (int, error) {
	// mmappedShard itself is never read from directly: the *Handle wraps it
	// purely for lifetime management, while tar parsing reads from the
	// bytes.Reader returned alongside it by openMmappedShard.
	return 0, io.EOF
}

func (s *mmappedShard) Close() error {
	err := s.m.Unmap()
	if err2 := s.f.Close(); err == nil {
		err = err2
	}
	return err
}

// NewTarReaderMmap builds a TarReader like NewTarReader, but opens each
// shard via a memory-mapped file instead of buffered I/O. Shards must be
// uncompressed: gzip sniffing only applies to the buffered path.
func NewTarReaderMmap(shardPaths []string, features Features) *TarReader {
	r := NewTarReader(shardPaths, features)
	r.openShard = func(path string) (*Handle, io.Reader, error) {
		return openMmappedShard(path)
	}
	return r
}
