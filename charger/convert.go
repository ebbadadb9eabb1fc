// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charger

import (
	"math"

	"periph.io/x/conn/v3/physic"
)

// Die temperature transfer function, T[m°C] = dieTempOffsetMC -
// code*dieTempFactorMul/dieTempFactorDiv. One code step is 792.6 m°C.
const (
	dieTempOffsetMC  = 394670
	dieTempFactorMul = 3963000
	dieTempFactorDiv = 5000
)

// t0Kelvin is the thermistor reference temperature, 25°C.
const t0Kelvin = 298.15

// batteryVoltageFromCode converts a raw 10-bit VBAT code. Full scale is 5V.
func batteryVoltageFromCode(code uint16) physic.ElectricPotential {
	mv := int64(code) * 5000 / 1024
	return physic.ElectricPotential(mv) * physic.MilliVolt
}

// systemVoltageFromCode converts a raw 10-bit VSYS code. Full scale is
// 6.375V.
func systemVoltageFromCode(code uint16) physic.ElectricPotential {
	mv := int64(code) * 6375 / 1024
	return physic.ElectricPotential(mv) * physic.MilliVolt
}

// vbusVoltageFromCode converts a raw 10-bit VBUS code. Full scale is 7.5V.
func vbusVoltageFromCode(code uint16) physic.ElectricPotential {
	mv := int64(code) * 7500 / 1024
	return physic.ElectricPotential(mv) * physic.MilliVolt
}

// ntcTemperature converts a raw NTC code to the battery temperature using
// the Beta equation: 1/T = 1/T0 - ln(1024/code - 1)/Beta. This is the exact
// inverse of ntcCode up to rounding.
func (c *config) ntcTemperature(code uint16) physic.Temperature {
	logRes := math.Log(1024/float64(code) - 1)
	invTempK := 1/t0Kelvin - logRes/float64(c.thermistorBeta)
	tempC := 1/invTempK - 273.15
	return physic.ZeroCelsius + physic.Temperature(tempC*float64(physic.Kelvin))
}

// ntcResistance returns the thermistor resistance at the given temperature,
// R = R0 * exp(Beta * (1/T - 1/T0)).
func (c *config) ntcResistance(tempMC int32) uint32 {
	invTempK := 1 / (float64(tempMC)/1000 + 273.15)
	return uint32(float64(c.thermistorOhms) * math.Exp(float64(c.thermistorBeta)*(invTempK-1/t0Kelvin)))
}

// ntcCode returns the threshold code for a temperature: the device compares
// the NTC ADC result against 1024*R/(R+R0).
func (c *config) ntcCode(tempMC int32) uint16 {
	res := uint64(c.ntcResistance(tempMC))
	return uint16(1024 * res / (res + uint64(c.thermistorOhms)))
}

// dieTemperature converts a raw die temperature code.
func dieTemperature(code uint16) physic.Temperature {
	mc := dieTempOffsetMC - int64(code)*dieTempFactorMul/dieTempFactorDiv
	return physic.ZeroCelsius + physic.Temperature(mc)*physic.MilliKelvin
}

// dieTempCode returns the threshold code for a die temperature, rounded to
// the nearest code.
func dieTempCode(tempMC int32) uint16 {
	numerator := int64(dieTempOffsetMC-tempMC) * dieTempFactorDiv
	return uint16(divRoundClosest(numerator, dieTempFactorMul))
}

// batteryCurrent converts a raw IBAT code. The full-scale current depends on
// what the charger was doing during the conversion: the scaled discharge
// limit when discharging (negative), the scaled charge current in any
// charging state, zero otherwise.
//
// Worst cases stay well inside int64: code <= 1023 and |full scale| <=
// 1.12A * 1023 in µA.
func (c *config) batteryCurrent(ibatStat byte, code uint16) physic.ElectricCurrent {
	var fullScaleUA int64
	switch ibatStat {
	case ibatStatDischarge:
		fullScaleUA = -c.dischgLimitUA * c.fullScaleDischarge[0] / c.fullScaleDischarge[1]
	case ibatStatChargeTrickle, ibatStatChargeCool, ibatStatChargeNormal:
		fullScaleUA = c.currentUA * fullScaleCharge[0] / fullScaleCharge[1]
	}

	ua := int64(code) * fullScaleUA / 1023
	return physic.ElectricCurrent(ua) * physic.MicroAmpere
}

// divRoundClosest divides rounding to the nearest integer, ties away from
// zero.
func divRoundClosest(n, d int64) int64 {
	if (n < 0) != (d < 0) {
		return (n - d/2) / d
	}
	return (n + d/2) / d
}
