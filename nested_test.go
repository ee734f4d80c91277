// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNestedMapping(t *testing.T) {
	schema := NewMapping([]string{"name", "bio"}, map[string]FeatureType{
		"name": Text{},
		"bio":  Text{},
	})
	encoded, err := encodeNested(schema, map[string]any{"name": "ada", "bio": "mathematician"}, 0)
	require.NoError(t, err)
	m := encoded.(map[string]any)
	assert.Equal(t, []byte("ada"), m["name"])
	assert.Equal(t, []byte("mathematician"), m["bio"])
}

func TestEncodeNestedMappingRootNilIsError(t *testing.T) {
	schema := NewMapping([]string{"name"}, map[string]FeatureType{"name": Text{}})
	_, err := encodeNested(schema, nil, 0)
	assert.Error(t, err)
}

func TestEncodeDecodeOrderedList(t *testing.T) {
	schema := OrderedList{Element: Text{}}
	encoded, err := encodeNested(schema, []any{"a", "b", "c"}, 0)
	require.NoError(t, err)

	decoded, err := decodeNested(schema, encoded)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, decoded)
}

func TestEncodeDecodeSequenceOfLeaf(t *testing.T) {
	schema := Sequence{Feature: Text{}, Length: -1}
	encoded, err := encodeNested(schema, []any{"x", "y"}, 0)
	require.NoError(t, err)

	decoded, err := decodeNested(schema, encoded)
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, decoded)
}

func TestEncodeSequenceOfMappingAcceptsListOfDict(t *testing.T) {
	mapping := NewMapping([]string{"id", "tag"}, map[string]FeatureType{
		"id":  Text{},
		"tag": Text{},
	})
	schema := Sequence{Feature: mapping, Length: -1}

	records := []any{
		map[string]any{"id": "1", "tag": "a"},
		map[string]any{"id": "2", "tag": "b"},
	}
	encoded, err := encodeNested(schema, records, 0)
	require.NoError(t, err)

	encMap := encoded.(map[string]any)
	assert.Equal(t, []any{[]byte("1"), []byte("2")}, encMap["id"])
	assert.Equal(t, []any{[]byte("a"), []byte("b")}, encMap["tag"])
}

func TestEncodeSequenceOfMappingAcceptsDictOfLists(t *testing.T) {
	mapping := NewMapping([]string{"id"}, map[string]FeatureType{"id": Text{}})
	schema := Sequence{Feature: mapping, Length: -1}

	encoded, err := encodeNested(schema, map[string]any{"id": []any{"1", "2"}}, 0)
	require.NoError(t, err)
	encMap := encoded.(map[string]any)
	assert.Equal(t, []any{[]byte("1"), []byte("2")}, encMap["id"])
}

func TestDecodeSequenceOfMappingRoundTrip(t *testing.T) {
	mapping := NewMapping([]string{"id"}, map[string]FeatureType{"id": Text{}})
	schema := Sequence{Feature: mapping, Length: -1}

	stored := map[string]any{"id": []any{[]byte("1"), []byte("2")}}
	decoded, err := decodeNested(schema, stored)
	require.NoError(t, err)
	decMap := decoded.(map[string]any)
	assert.Equal(t, []any{"1", "2"}, decMap["id"])
}

func TestEncodeSequenceRejectsString(t *testing.T) {
	schema := Sequence{Feature: Text{}, Length: -1}
	_, err := encodeNested(schema, "not a list", 0)
	assert.Error(t, err)
}

func TestEncodeNestedEmptyListStaysEmpty(t *testing.T) {
	schema := OrderedList{Element: Text{}}
	encoded, err := encodeNested(schema, []any{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{}, encoded)
}
