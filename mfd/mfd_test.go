// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mfd

import (
	"bytes"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestRegisterAccess(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// ReadReg: block base, offset, one byte back.
			{Addr: DefaultAddress, W: []byte{0x03, 0x34}, R: []byte{0xA5}},
			// WriteReg.
			{Addr: DefaultAddress, W: []byte{0x03, 0x04, 0x01}},
			// WriteReg2: offset auto-increments on the device.
			{Addr: DefaultAddress, W: []byte{0x05, 0x01, 0x01, 0x01}},
			// ReadBurst.
			{Addr: DefaultAddress, W: []byte{0x05, 0x10}, R: []byte{1, 2, 3, 4}},
		},
		DontPanic: true,
	}
	d, err := New(pb, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}

	v, err := d.ReadReg(0x03, 0x34)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xA5 {
		t.Errorf("ReadReg = %#x, want 0xA5", v)
	}
	if err := d.WriteReg(0x03, 0x04, 1); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteReg2(0x05, 0x01, 1, 1); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if err := d.ReadBurst(0x05, 0x10, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4}) {
		t.Errorf("ReadBurst = %v", buf)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadError(t *testing.T) {
	// An exhausted playback fails the transaction; the error must surface
	// unchanged.
	pb := &i2ctest.Playback{DontPanic: true}
	d, err := New(pb, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadReg(0x03, 0x34); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNewNilBus(t *testing.T) {
	if _, err := New(nil, DefaultAddress); err == nil {
		t.Fatal("expected error for nil bus")
	}
}
