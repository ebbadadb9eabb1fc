// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mfd provides register access to the Nordic nPM1300/nPM1304 power
// management IC over I²C.
//
// The PMIC is a multi-function device. Its register space is addressed with
// two bytes, a block base address followed by an offset within the block,
// and is shared by the charger, regulator, GPIO and ADC functions. Function
// drivers such as the charger package perform all of their bus traffic
// through a single *Dev.
//
// # Datasheet
//
// https://docs.nordicsemi.com/bundle/ps_npm1300/page/keyfeatures_html5.html
package mfd

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the fixed I²C address of the nPM13xx.
const DefaultAddress uint16 = 0x6B

// Dev is a handle to the PMIC's register space.
//
// Dev performs no locking; either serialize calls per device, or rely on the
// mutual exclusion the underlying i2c.Bus already provides per transaction.
type Dev struct {
	c *i2c.Dev
}

// New returns a handle to an nPM13xx on the supplied bus. addr is normally
// DefaultAddress.
func New(b i2c.Bus, addr uint16) (*Dev, error) {
	if b == nil {
		return nil, fmt.Errorf("mfd: nil bus")
	}
	return &Dev{c: &i2c.Dev{Bus: b, Addr: addr}}, nil
}

// ReadReg reads a single register.
func (d *Dev) ReadReg(base, offset uint8) (byte, error) {
	r := make([]byte, 1)
	if err := d.c.Tx([]byte{base, offset}, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

// ReadBurst reads len(buf) consecutive registers starting at offset.
func (d *Dev) ReadBurst(base, offset uint8, buf []byte) error {
	return d.c.Tx([]byte{base, offset}, buf)
}

// WriteReg writes a single register.
func (d *Dev) WriteReg(base, offset uint8, val byte) error {
	return d.c.Tx([]byte{base, offset, val}, nil)
}

// WriteReg2 writes two consecutive registers in one transaction. The device
// auto-increments the offset, so first lands at offset and second at
// offset+1.
func (d *Dev) WriteReg2(base, offset uint8, first, second byte) error {
	return d.c.Tx([]byte{base, offset, first, second}, nil)
}

func (d *Dev) String() string {
	return fmt.Sprintf("npm13xx: %s", d.c.String())
}
