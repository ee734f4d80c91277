// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesToDictFromDictRoundTrip(t *testing.T) {
	tensorFeature, err := NewTensor(NewShape(3, -1), "float32")
	require.NoError(t, err)
	scalarFeature, err := NewScalar("int64")
	require.NoError(t, err)

	original := NewFeatures([]string{"embedding", "label", "caption", "tags"}, map[string]FeatureType{
		"embedding": tensorFeature,
		"label":     scalarFeature,
		"caption":   Text{},
		"tags":      OrderedList{Element: Text{}},
	})

	dict, err := original.ToDict()
	require.NoError(t, err)

	restored, err := FeaturesFromDict(dict)
	require.NoError(t, err)

	assert.Equal(t, original.Names(), restored.Names())
	assert.True(t, original.Equal(restored))
}

func TestSequenceSchemaRoundTrip(t *testing.T) {
	original := NewFeatures([]string{"scores"}, map[string]FeatureType{
		"scores": Sequence{Feature: Text{}, Length: 5},
	})
	dict, err := original.ToDict()
	require.NoError(t, err)

	restored, err := FeaturesFromDict(dict)
	require.NoError(t, err)
	seq := mustGet(t, restored, "scores").(Sequence)
	assert.Equal(t, 5, seq.Length)
}

func mustGet(t *testing.T, f Features, name string) FeatureType {
	t.Helper()
	ft, ok := f.Get(name)
	require.True(t, ok)
	return ft
}

func TestUnknownFeatureTypeIsRejected(t *testing.T) {
	_, err := featureFromJSON([]byte(`{"_type":"NotAThing"}`))
	assert.Error(t, err)
}
