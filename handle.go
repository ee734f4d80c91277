// Copyright 2024 The Tarpack Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tarpack

import (
	"fmt"
	"io"
	"sync"
)

// Handle wraps an underlying readable resource and propagates lifetime to
// a parent: closing the last child of an autoclosing parent closes the
// parent too. This is what lets a shard's file descriptor be released
// once every record lazily drawn from it has been consumed, even though
// records are handed to the caller one at a time.
type Handle struct {
	inner  io.ReadCloser
	name   string
	parent *Handle

	mu        sync.Mutex
	children  int
	autoclose bool
	closed    bool
}

// NewHandle wraps inner. If parent is non-nil, parent's child counter is
// incremented; closing this Handle will decrement it back.
func NewHandle(inner io.ReadCloser, parent *Handle, name string) *Handle {
	h := &Handle{inner: inner, parent: parent, name: name}
	if parent != nil {
		parent.mu.Lock()
		parent.children++
		parent.mu.Unlock()
	}
	if debugRegistry.enabled() {
		debugRegistry.add(h)
	}
	return h
}

// Read delegates to the underlying resource.
func (h *Handle) Read(p []byte) (int, error) { return h.inner.Read(p) }

// Name returns the display name this handle was constructed with.
func (h *Handle) Name() string { return h.name }

// Closed reports whether Close has already run.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Autoclose marks h to close itself once its last open child closes (or
// immediately, if it currently has none).
func (h *Handle) Autoclose() {
	h.mu.Lock()
	h.autoclose = true
	shouldClose := h.children == 0 && !h.closed
	h.mu.Unlock()
	if shouldClose {
		h.Close()
	}
}

// Close is idempotent. On first call it decrements the parent's child
// counter and, if the parent is autoclosing and has reached zero
// children, closes the parent too.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	if debugRegistry.enabled() {
		debugRegistry.remove(h)
	}

	var parentToClose *Handle
	if h.parent != nil {
		h.parent.mu.Lock()
		h.parent.children--
		if h.parent.children <= 0 && h.parent.autoclose && !h.parent.closed {
			parentToClose = h.parent
		}
		h.parent.mu.Unlock()
	}

	err := h.inner.Close()
	if parentToClose != nil {
		if perr := parentToClose.Close(); err == nil {
			err = perr
		}
	}
	return err
}

func (h *Handle) String() string {
	if h.name == "" {
		return fmt.Sprintf("Handle<%p>", h.inner)
	}
	return fmt.Sprintf("Handle<%s>", h.name)
}

// ReadAllAndClose fully reads h, closes it, and returns nil (not an empty
// slice) if the stream yielded zero bytes — the signal leaf codecs use to
// propagate a missing/null value.
func ReadAllAndClose(h *Handle) ([]byte, error) {
	defer h.Close()
	data, err := io.ReadAll(h)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// handleDebugRegistry is the opt-in, process-wide set of live Handles used
// to diagnose leaked handles. It is never consulted on the hot path;
// tracking only happens once EnableHandleDebugRegistry has been called.
type handleDebugRegistry struct {
	mu   sync.Mutex
	on   bool
	live map[*Handle]struct{}
}

var debugRegistry = &handleDebugRegistry{live: make(map[*Handle]struct{})}

func (r *handleDebugRegistry) enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.on
}

func (r *handleDebugRegistry) add(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[h] = struct{}{}
}

func (r *handleDebugRegistry) remove(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, h)
}

// EnableHandleDebugRegistry turns on process-wide tracking of live
// Handles, for diagnosing leaks in development. Disabled by default.
func EnableHandleDebugRegistry() {
	debugRegistry.mu.Lock()
	debugRegistry.on = true
	debugRegistry.mu.Unlock()
}

// LiveHandles returns the Handles currently tracked as open. Only
// meaningful after EnableHandleDebugRegistry has been called.
func LiveHandles() []*Handle {
	debugRegistry.mu.Lock()
	defer debugRegistry.mu.Unlock()
	out := make([]*Handle, 0, len(debugRegistry.live))
	for h := range debugRegistry.live {
		out = append(out, h)
	}
	return out
}
