// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"archive/tar"
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
)

// tarEntry pairs a tar header with a Handle over its (possibly zero-length)
// content, scoped to the shard Handle that produced it. Directory entries
// carry no Handle.
type tarEntry struct {
	header *tar.Header
	handle *Handle
}

func tarIndex(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}

// groupByIndex consumes tr, grouping successive entries that share the
// same leading path component (the record index) and invoking yield once
// per group with that index and its composed value tree. Iteration stops
// at the first yield that returns a non-nil error, or when tr is
// exhausted.
func groupByIndex(shard *Handle, tr *tar.Reader, yield func(index string, value any) error) error {
	var group []tarEntry
	var groupIndex string

	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		value, err := composeFeature(group)
		if err != nil {
			return err
		}
		idx := groupIndex
		group = nil
		return yield(idx, value)
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return flush()
		}
		if err != nil {
			return err
		}

		idx := tarIndex(hdr.Name)
		if len(group) > 0 && idx != groupIndex {
			if err := flush(); err != nil {
				return err
			}
		}
		groupIndex = idx

		name := hdr.Name
		h := hdr
		if h.Typeflag == tar.TypeDir {
			group = append(group, tarEntry{header: h})
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return err
		}
		inner := NewHandle(io.NopCloser(bytes.NewReader(data)), shard, shard.Name()+"/"+name)
		group = append(group, tarEntry{header: h, handle: inner})
	}
}

// composeFeature builds the value tree for one record's tar entries: a
// single file yields its Handle directly; multiple entries are nested by
// path component and all-digit-keyed levels are rewritten into ordered
// slices, mirroring the writer's directory layout.
func composeFeature(group []tarEntry) (any, error) {
	if len(group) == 1 && group[0].header.Typeflag != tar.TypeDir {
		return group[0].handle, nil
	}

	nested := map[string]any{}
	for _, entry := range group {
		if entry.header.Typeflag == tar.TypeDir {
			continue
		}
		parts := strings.Split(entry.header.Name, "/")[1:]
		cur := nested
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[part] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = entry.handle
	}
	return transformDict(nested), nil
}

// transformDict rewrites any map whose keys are all-digit strings into an
// ordered slice, recursively, matching the writer's list-to-directory
// convention in reverse.
func transformDict(m map[string]any) any {
	result := make(map[string]any, len(m))
	for key, value := range m {
		if sub, ok := value.(map[string]any); ok {
			value = transformDict(sub)
		}
		result[key] = value
	}
	if len(result) == 0 {
		return result
	}
	allDigits := true
	for key := range result {
		if !isAllDigits(key) {
			allDigits = false
			break
		}
	}
	if !allDigits {
		return result
	}
	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	out := make([]any, len(keys))
	for i, key := range keys {
		out[i] = result[key]
	}
	return out
}
