// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charger controls the battery charger block of the Nordic nPM1300
// and nPM1304 power management ICs.
//
// The driver programs termination voltages, charge current, thermal
// thresholds and the VBUS input current limit at construction time, then
// exposes the charger's ADC measurements (battery voltage, current, NTC and
// die temperature) and status registers. Measurements are cached by Fetch();
// the getters convert the cached codes to physic units without touching the
// bus.
//
// The device pipelines conversions: each Fetch reads the results of the
// previously triggered conversion and triggers the next one, so readings lag
// one Fetch behind.
//
// The driver performs no internal locking. Serialize Fetch/getter/setter
// calls per device.
//
// # Datasheet
//
// https://docs.nordicsemi.com/bundle/ps_npm1300/page/chapters/charger/doc/charger.html
package charger
