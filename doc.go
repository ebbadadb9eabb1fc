// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package npm13xx is a container for the Nordic nPM1300/nPM1304 PMIC driver
// packages.
//
// The mfd package provides register access to the PMIC over I²C. The charger
// package drives the battery charger block through it. The linearrange
// package holds the code/value quantization helper shared by the charger's
// threshold programming.
package npm13xx
