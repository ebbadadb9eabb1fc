// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charger

import "errors"

var (
	// ErrNotSupported is returned for requests the configured device cannot
	// serve, such as reading the battery temperature with no thermistor
	// fitted. It is recoverable; transport failures are returned as-is
	// instead.
	ErrNotSupported = errors.New("charger: not supported")

	// ErrQuantization is returned when a requested physical value has no
	// valid register code. Values are never silently clamped.
	ErrQuantization = errors.New("charger: value not representable")

	// ErrNotReady is returned when an operation is attempted before the
	// device initialized successfully.
	ErrNotReady = errors.New("charger: device not ready")
)
