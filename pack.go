// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"archive/tar"
	"fmt"
	"strconv"
)

// packTree writes the encoded value tree produced by Features.EncodeExample
// under prefix (the record's index), recursing into maps and slices as tar
// directories and writing leaves ([]byte or nil) as tar regular files. It
// returns the total number of payload bytes written.
func packTree(tw *tar.Writer, prefix string, tree any) (int64, error) {
	switch v := tree.(type) {
	case map[string]any:
		if err := addDir(tw, prefix); err != nil {
			return 0, err
		}
		var size int64
		for key, value := range v {
			if isAllDigits(key) {
				return 0, &InvalidValueError{Msg: fmt.Sprintf("field name %q cannot be all-digit, those names are reserved for list indexing", key)}
			}
			n, err := packTree(tw, prefix+"/"+key, value)
			if err != nil {
				return 0, err
			}
			size += n
		}
		return size, nil

	case []any:
		if err := addDir(tw, prefix); err != nil {
			return 0, err
		}
		var size int64
		for i, value := range v {
			n, err := packTree(tw, prefix+"/"+strconv.Itoa(i), value)
			if err != nil {
				return 0, err
			}
			size += n
		}
		return size, nil

	case nil:
		return 0, tw.WriteHeader(&tar.Header{Name: prefix, Typeflag: tar.TypeReg})

	case []byte:
		hdr := &tar.Header{Name: prefix, Typeflag: tar.TypeReg, Size: int64(len(v)), Mode: 0644}
		if err := tw.WriteHeader(hdr); err != nil {
			return 0, err
		}
		if _, err := tw.Write(v); err != nil {
			return 0, err
		}
		return int64(len(v)), nil

	default:
		return 0, &InvalidValueTypeError{Msg: fmt.Sprintf("encoded leaf value must be []byte or nil, got %T", tree)}
	}
}

func addDir(tw *tar.Writer, name string) error {
	return tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeDir, Mode: 0755})
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
