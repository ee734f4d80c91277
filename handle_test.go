// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	io.Reader
	closed *int
}

func (c countingCloser) Close() error {
	*c.closed++
	return nil
}

func newCountingHandle(s string, parent *Handle, closed *int) *Handle {
	return NewHandle(countingCloser{Reader: strings.NewReader(s), closed: closed}, parent, "")
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	var closed int
	h := newCountingHandle("payload", nil, &closed)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, closed)
	assert.True(t, h.Closed())
}

func TestHandleAutocloseCascadesFromLastChild(t *testing.T) {
	var parentClosed, childClosed int
	parent := newCountingHandle("parent", nil, &parentClosed)
	child1 := newCountingHandle("c1", parent, &childClosed)
	child2 := newCountingHandle("c2", parent, &childClosed)

	parent.Autoclose()
	assert.Equal(t, 0, parentClosed, "parent must stay open while children remain")

	require.NoError(t, child1.Close())
	assert.Equal(t, 0, parentClosed, "parent must stay open with one child left")

	require.NoError(t, child2.Close())
	assert.Equal(t, 1, parentClosed, "parent closes once its last child does")
}

func TestHandleAutocloseWithNoChildrenClosesImmediately(t *testing.T) {
	var closed int
	h := newCountingHandle("payload", nil, &closed)
	h.Autoclose()
	assert.Equal(t, 1, closed)
}

func TestReadAllAndClose(t *testing.T) {
	var closed int
	h := newCountingHandle("hello", nil, &closed)
	data, err := ReadAllAndClose(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, 1, closed)

	var closedEmpty int
	empty := newCountingHandle("", nil, &closedEmpty)
	data, err = ReadAllAndClose(empty)
	require.NoError(t, err)
	assert.Nil(t, data, "zero-length reads must surface as nil, not []byte{}")
}

func TestHandleDebugRegistry(t *testing.T) {
	EnableHandleDebugRegistry()
	var closed int
	h := newCountingHandle("x", nil, &closed)
	assert.Contains(t, LiveHandles(), h)
	require.NoError(t, h.Close())
	assert.NotContains(t, LiveHandles(), h)
}
