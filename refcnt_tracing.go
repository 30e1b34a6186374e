// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build tracing

package ostree

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
)

// refcnt provides an atomic reference count, along with a tracing facility for
// debugging logic errors in manipulating the reference count. This version is
// used when the "tracing" build tag is enabled.
type refcnt struct {
	val int32
	sync.Mutex
	msgs []string
}

func (v *refcnt) init(val int32) {
	v.val = val
	v.trace("init")
}

func (v *refcnt) refs() int32 {
	return atomic.LoadInt32(&v.val)
}

func (v *refcnt) acquire(limit int32) (prev int32) {
	for {
		prev = atomic.LoadInt32(&v.val)
		if prev <= 0 || prev >= limit {
			v.trace("acquire (refused)")
			return prev
		}
		if atomic.CompareAndSwapInt32(&v.val, prev, prev+1) {
			v.trace("acquire")
			return prev
		}
	}
}

func (v *refcnt) release() int32 {
	n := atomic.AddInt32(&v.val, -1)
	v.trace("release")
	return n
}

func (v *refcnt) trace(msg string) {
	s := fmt.Sprintf("%s: refs=%d\n%s", msg, v.refs(), debug.Stack())
	v.Lock()
	v.msgs = append(v.msgs, s)
	v.Unlock()
}

func (v *refcnt) traces() string {
	v.Lock()
	s := strings.Join(v.msgs, "\n")
	v.Unlock()
	return s
}
