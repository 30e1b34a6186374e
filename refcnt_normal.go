// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build !tracing

package ostree

import "sync/atomic"

// refcnt provides an atomic reference count. This version is used when the
// "tracing" build tag is not enabled. See refcnt_tracing.go for the "tracing"
// enabled version.
type refcnt int32

// initialize the reference count to the specified value.
func (v *refcnt) init(val int32) {
	*v = refcnt(val)
}

func (v *refcnt) refs() int32 {
	return atomic.LoadInt32((*int32)(v))
}

// acquire increments the count unless it is zero or has reached limit. It
// returns the count observed before the increment; the increment happened iff
// 0 < prev < limit.
func (v *refcnt) acquire(limit int32) (prev int32) {
	for {
		prev = atomic.LoadInt32((*int32)(v))
		if prev <= 0 || prev >= limit {
			return prev
		}
		if atomic.CompareAndSwapInt32((*int32)(v), prev, prev+1) {
			return prev
		}
	}
}

// release decrements the count and returns the new value.
func (v *refcnt) release() int32 {
	return atomic.AddInt32((*int32)(v), -1)
}

func (v *refcnt) trace(msg string) {
}

func (v *refcnt) traces() string {
	return ""
}

// Silence unused warning.
var _ = (*refcnt)(nil).trace
