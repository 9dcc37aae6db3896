// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk356x

import (
	"fmt"
	"testing"
)

type op struct {
	address uint32
	data    uint32
}

func (o op) String() string {
	return fmt.Sprintf("{write @ %08x = %08x}", o.address, o.data)
}

// fakeMem checks that writes arrive exactly in the scripted order.
type fakeMem struct {
	t   *testing.T
	ops []op
}

func (m *fakeMem) Write32(a uint32, d uint32) error {
	m.t.Helper()
	if len(m.ops) == 0 {
		m.t.Errorf("Unexpected 32 bit write of %08x on %08x", d, a)
		return nil
	}
	o := m.ops[0]
	m.ops = m.ops[1:]
	if o.address != a || o.data != d {
		m.t.Errorf("Expected %s, got 32 bit write of %08x on %08x", o, d, a)
	}
	return nil
}

func (m *fakeMem) ExpectWrite32(a uint32, d uint32) {
	m.ops = append(m.ops, op{a, d})
}

func (m *fakeMem) Done() {
	m.t.Helper()
	for _, o := range m.ops {
		m.t.Errorf("Expected %s, never happened", o)
	}
}

func fakeMemory(t *testing.T) *fakeMem {
	return &fakeMem{t, make([]op, 0)}
}
