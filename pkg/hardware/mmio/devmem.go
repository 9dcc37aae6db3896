// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmio

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

var errClosed = errors.New("mmio: closed")

// DevMem accesses physical memory through a /dev/mem style character
// device. Pages are mapped on first use and stay mapped until Close.
type DevMem struct {
	f     *os.File
	psize uint32
	pages map[uint32][]byte
}

// Open opens path (usually /dev/mem) for register access.
func Open(path string) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("mmio: could not open %q: %w", path, err)
	}
	return &DevMem{
		f:     f,
		psize: uint32(unix.Getpagesize()),
		pages: make(map[uint32][]byte),
	}, nil
}

func (m *DevMem) word(addr uint32, prot int) (*uint32, error) {
	if m.pages == nil {
		return nil, errClosed
	}
	if addr%4 != 0 {
		return nil, fmt.Errorf("mmio: unaligned access at %#08x", addr)
	}
	page := addr &^ (m.psize - 1)
	mem, ok := m.pages[page]
	if !ok {
		var err error
		mem, err = unix.Mmap(int(m.f.Fd()), int64(page), int(m.psize), prot, unix.MAP_SHARED)
		if err != nil {
			return nil, fmt.Errorf("mmio: could not map page %#08x: %w", page, err)
		}
		m.pages[page] = mem
	}
	return (*uint32)(unsafe.Pointer(&mem[addr-page])), nil
}

// Read32 loads the register at addr.
func (m *DevMem) Read32(addr uint32) (uint32, error) {
	p, err := m.word(addr, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

// Write32 stores v to the register at addr as one 32-bit access.
func (m *DevMem) Write32(addr uint32, v uint32) error {
	p, err := m.word(addr, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, v)
	return nil
}

// Close unmaps every page and closes the device.
func (m *DevMem) Close() error {
	if m.pages == nil {
		return nil
	}
	var first error
	for page, mem := range m.pages {
		if err := unix.Munmap(mem); err != nil && first == nil {
			first = fmt.Errorf("mmio: could not unmap page %#08x: %w", page, err)
		}
	}
	m.pages = nil
	if err := m.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

var _ ReadWriter = (*DevMem)(nil)
