// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestFilename is the name a ShardWriter writes its Manifest under,
// alongside the shards it produced.
const ManifestFilename = "dataset_info.json"

// Manifest describes a packed dataset: its schema, the shard files that
// hold its records, and free-form bookkeeping.
type Manifest struct {
	Description string
	FileList    []string
	Features    Features
	SizeInBytes *int64
	Metadata    map[string]any
}

type manifestJSON struct {
	Description string          `json:"description"`
	FileList    []string        `json:"file_list"`
	Features    json.RawMessage `json:"features,omitempty"`
	SizeInBytes *int64          `json:"size_in_bytes,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// MarshalJSON serializes Manifest with its Features schema as the
// "_type"-discriminated tree ToDict produces, rather than Go's default
// struct-field encoding.
func (m Manifest) MarshalJSON() ([]byte, error) {
	mj := manifestJSON{
		Description: m.Description,
		FileList:    m.FileList,
		SizeInBytes: m.SizeInBytes,
		Metadata:    m.Metadata,
	}
	if m.Features.Len() > 0 {
		dict, err := m.Features.ToDict()
		if err != nil {
			return nil, err
		}
		mj.Features = dict
	}
	return json.Marshal(mj)
}

// UnmarshalJSON is MarshalJSON's inverse.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var mj manifestJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	m.Description = mj.Description
	m.FileList = mj.FileList
	m.SizeInBytes = mj.SizeInBytes
	m.Metadata = mj.Metadata
	if len(mj.Features) > 0 {
		features, err := FeaturesFromDict(mj.Features)
		if err != nil {
			return fmt.Errorf("manifest: decoding features: %w", err)
		}
		m.Features = features
	}
	return nil
}

// WriteToJSON writes m to path, optionally pretty-printed with a 4-space
// indent.
func (m Manifest) WriteToJSON(path string, prettyPrint bool) error {
	var data []byte
	var err error
	if prettyPrint {
		data, err = json.MarshalIndent(m, "", "    ")
	} else {
		data, err = json.Marshal(m)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ManifestFromJSON reads and parses a Manifest written by WriteToJSON.
func ManifestFromJSON(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Update merges other into m: every non-nil/non-empty field of other
// overwrites m's, unless ignoreNil is false, in which case every field of
// other is copied unconditionally (the original's `ignore_none` flag).
func (m *Manifest) Update(other Manifest, ignoreNil bool) {
	if other.Description != "" || !ignoreNil {
		m.Description = other.Description
	}
	if other.FileList != nil || !ignoreNil {
		m.FileList = other.FileList
	}
	if other.Features.Len() > 0 || !ignoreNil {
		m.Features = other.Features
	}
	if other.SizeInBytes != nil || !ignoreNil {
		m.SizeInBytes = other.SizeInBytes
	}
	if other.Metadata != nil || !ignoreNil {
		m.Metadata = other.Metadata
	}
}

// Copy returns an independent shallow copy of m (Features is an
// immutable value type; FileList and Metadata are copied element-wise).
func (m Manifest) Copy() Manifest {
	out := m
	out.FileList = append([]string(nil), m.FileList...)
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Features = m.Features.Copy()
	return out
}
