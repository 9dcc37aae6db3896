// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2c

import (
	"fmt"

	"github.com/go-daq/smbus"
)

// SMBus is a Bus backed by a Linux /dev/i2c-N adapter.
type SMBus struct {
	name string
	conn *smbus.Conn
}

// OpenSMBus opens adapter bus and selects dev as the initial slave.
func OpenSMBus(bus int, dev uint8) (*SMBus, error) {
	name := fmt.Sprintf("i2c-%d", bus)
	conn, err := smbus.Open(bus, dev)
	if err != nil {
		return nil, Wrap(name, "open", dev, 0, err)
	}
	return &SMBus{name: name, conn: conn}, nil
}

func (b *SMBus) ReadReg(dev, reg uint8) (uint8, error) {
	v, err := b.conn.ReadReg(dev, reg)
	if err != nil {
		return 0, Wrap(b.name, "read", dev, reg, err)
	}
	return v, nil
}

func (b *SMBus) WriteReg(dev, reg, v uint8) error {
	return Wrap(b.name, "write", dev, reg, b.conn.WriteReg(dev, reg, v))
}

func (b *SMBus) Close() error {
	return b.conn.Close()
}

var _ Bus = (*SMBus)(nil)
