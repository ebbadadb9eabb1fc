// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charger

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/npm13xx/linearrange"
)

// Variant selects the PMIC part. The two parts share the register map but
// differ in range tables and in how the charge current and discharge limit
// registers are laid out.
type Variant int

const (
	NPM1300 Variant = iota
	NPM1304
)

func (v Variant) String() string {
	switch v {
	case NPM1300:
		return "nPM1300"
	case NPM1304:
		return "nPM1304"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Opts holds the static charger configuration. It is applied once by New;
// there is no runtime reprogramming beyond SetCharging and
// SetVBUSCurrentLimit.
type Opts struct {
	// Variant of the PMIC, NPM1300 or NPM1304.
	Variant Variant

	// TerminationVoltage is the battery termination voltage. It must fall
	// exactly on a supported 50mV step (3.5-3.65V or 4.0-4.45V on the
	// nPM1300, 3.6-3.65V or 4.0-4.65V on the nPM1304).
	TerminationVoltage physic.ElectricPotential
	// WarmTerminationVoltage is the termination voltage used in the warm
	// temperature region. Leave zero to reuse TerminationVoltage.
	WarmTerminationVoltage physic.ElectricPotential

	// ChargeCurrent is the desired charge current. It is rounded down to the
	// nearest supported step (2mA from 32mA on the nPM1300, 0.5mA from 4mA
	// on the nPM1304).
	ChargeCurrent physic.ElectricCurrent
	// DischargeCurrentLimit selects the battery discharge limit. The nPM1300
	// supports 200mA and 1A (default 1A). The nPM1304 limit is fixed at
	// 125mA by hardware; leave zero or set 125mA.
	DischargeCurrentLimit physic.ElectricCurrent

	// VBUSCurrentLimit is the input current limit applied at startup, 100mA
	// to 1.5A in 100mA steps. Defaults to 500mA.
	VBUSCurrentLimit physic.ElectricCurrent

	// Thermistor is the nominal (25°C) resistance of the battery NTC
	// thermistor: 10kΩ, 47kΩ or 100kΩ. Leave zero when no thermistor is
	// fitted; battery temperature readings are then unsupported.
	Thermistor physic.ElectricResistance
	// ThermistorBeta is the thermistor Beta coefficient in Kelvin. Required
	// when Thermistor is set.
	ThermistorBeta uint16

	// NTC temperature thresholds delimiting the cold/cool/warm/hot charging
	// regions. The zero value leaves a threshold unprogrammed.
	ColdThreshold physic.Temperature
	CoolThreshold physic.Temperature
	WarmThreshold physic.Temperature
	HotThreshold  physic.Temperature

	// Die temperature thresholds pausing and resuming charging. The zero
	// value leaves a threshold unprogrammed.
	DieStopThreshold   physic.Temperature
	DieResumeThreshold physic.Temperature

	// TrickleVoltage is the trickle charging threshold, 2.9V (default) or
	// 2.5V.
	TrickleVoltage physic.ElectricPotential
	// TerminationCurrentPercent is the charge termination current as a
	// percentage of ChargeCurrent, 10 (default) or 20.
	TerminationCurrentPercent int

	// ChargingEnable enables charging as the last initialization step.
	ChargingEnable bool
	// VBatLowChargeEnable allows charging to start at low battery voltage.
	VBatLowChargeEnable bool
	// DisableRecharge disables automatic recharging once charging completed.
	DisableRecharge bool
}

// thresholdUnset marks an unprogrammed temperature threshold, in
// millidegrees Celsius.
const thresholdUnset = math.MaxInt32

// config is the validated, immutable form of Opts. Voltages are µV,
// currents µA, temperatures millidegrees Celsius.
type config struct {
	variant Variant

	termUV         int64
	termWarmUV     int64
	termVoltRanges []linearrange.Range

	currentUA    int64
	currentRange linearrange.Range

	fullScaleDischarge [2]int64

	dischgLimitUA  int64
	dischgLimitIdx int // -1: no discharge limit register (nPM1304)

	vbusLimitUA int64

	tempThresholdsMC    [4]int32
	dietempThresholdsMC [2]int32

	thermistorOhms uint32
	thermistorBeta uint16
	thermistorIdx  uint8

	trickleSel uint8
	itermSel   uint8

	chargingEnable      bool
	vbatLowChargeEnable bool
	disableRecharge     bool
}

// Termination voltage ranges. The gap between 3.65V and 4.0V is real; codes
// jump across it.
var npm1300VoltRanges = []linearrange.Range{
	{Base: 3500000, Step: 50000, Min: 0, Max: 3},
	{Base: 4000000, Step: 50000, Min: 4, Max: 13},
}

var npm1304VoltRanges = []linearrange.Range{
	{Base: 3600000, Step: 50000, Min: 0, Max: 1},
	{Base: 4000000, Step: 50000, Min: 2, Max: 15},
}

// Charge current ranges.
var npm1300CurrentRange = linearrange.Range{Base: 32000, Step: 2000, Min: 16, Max: 400}
var npm1304CurrentRange = linearrange.Range{Base: 4000, Step: 500, Min: 8, Max: 200}

// Full-scale factors applied to the discharge limit when converting raw
// current codes while discharging.
var npm1300FullScaleDischarge = [2]int64{112, 100}
var npm1304FullScaleDischarge = [2]int64{415, 400}

// Full-scale factor applied to the charge current while charging.
var fullScaleCharge = [2]int64{125, 100}

// Register codes for the two nPM1300 discharge limits, indexed by
// dischgLimitIdx.
var npm1300DischargeLimits = []uint16{84, 415}

// VBUS input current limit, 100mA to 1.5A.
var vbusCurrentRange = linearrange.Range{Base: 100000, Step: 100000, Min: 1, Max: 15}

// milliCelsius converts a threshold to millidegrees, mapping the zero value
// (absolute zero, never a valid threshold) to thresholdUnset.
func milliCelsius(t physic.Temperature) int32 {
	if t == 0 {
		return thresholdUnset
	}
	return int32(int64(t-physic.ZeroCelsius) / int64(physic.MilliKelvin))
}

// makeConfig validates opts and resolves defaults, variant tables and
// register selector codes. Range checks that depend on quantization happen
// later, during the initialization sequence.
func makeConfig(o *Opts) (*config, error) {
	c := &config{
		variant:             o.Variant,
		chargingEnable:      o.ChargingEnable,
		vbatLowChargeEnable: o.VBatLowChargeEnable,
		disableRecharge:     o.DisableRecharge,
	}

	switch o.Variant {
	case NPM1300:
		c.termVoltRanges = npm1300VoltRanges
		c.currentRange = npm1300CurrentRange
		c.fullScaleDischarge = npm1300FullScaleDischarge
	case NPM1304:
		c.termVoltRanges = npm1304VoltRanges
		c.currentRange = npm1304CurrentRange
		c.fullScaleDischarge = npm1304FullScaleDischarge
	default:
		return nil, fmt.Errorf("charger: unknown variant %d", int(o.Variant))
	}

	if o.TerminationVoltage <= 0 {
		return nil, fmt.Errorf("charger: termination voltage is required")
	}
	c.termUV = int64(o.TerminationVoltage / physic.MicroVolt)
	c.termWarmUV = c.termUV
	if o.WarmTerminationVoltage != 0 {
		c.termWarmUV = int64(o.WarmTerminationVoltage / physic.MicroVolt)
	}

	if o.ChargeCurrent <= 0 {
		return nil, fmt.Errorf("charger: charge current is required")
	}
	c.currentUA = int64(o.ChargeCurrent / physic.MicroAmpere)

	limitUA := int64(o.DischargeCurrentLimit / physic.MicroAmpere)
	switch o.Variant {
	case NPM1300:
		switch limitUA {
		case 0, 1000000:
			c.dischgLimitUA = 1000000
			c.dischgLimitIdx = 1
		case 200000:
			c.dischgLimitUA = 200000
			c.dischgLimitIdx = 0
		default:
			return nil, fmt.Errorf("charger: discharge limit %s not supported, want 200mA or 1A", o.DischargeCurrentLimit)
		}
	case NPM1304:
		// Fixed by hardware; there is no register to program.
		if limitUA != 0 && limitUA != 125000 {
			return nil, fmt.Errorf("charger: discharge limit %s not supported, the nPM1304 is fixed at 125mA", o.DischargeCurrentLimit)
		}
		c.dischgLimitUA = 125000
		c.dischgLimitIdx = -1
	}

	c.vbusLimitUA = int64(o.VBUSCurrentLimit / physic.MicroAmpere)
	if c.vbusLimitUA == 0 {
		c.vbusLimitUA = 500000
	}

	switch o.Thermistor {
	case 0:
		c.thermistorIdx = 0
	case 10000 * physic.Ohm:
		c.thermistorIdx = 1
	case 47000 * physic.Ohm:
		c.thermistorIdx = 2
	case 100000 * physic.Ohm:
		c.thermistorIdx = 3
	default:
		return nil, fmt.Errorf("charger: thermistor %s not supported, want 10kΩ, 47kΩ or 100kΩ", o.Thermistor)
	}
	c.thermistorOhms = uint32(o.Thermistor / physic.Ohm)
	c.thermistorBeta = o.ThermistorBeta
	if c.thermistorIdx != 0 && c.thermistorBeta == 0 {
		return nil, fmt.Errorf("charger: thermistor beta is required")
	}

	c.tempThresholdsMC = [4]int32{
		milliCelsius(o.ColdThreshold),
		milliCelsius(o.CoolThreshold),
		milliCelsius(o.WarmThreshold),
		milliCelsius(o.HotThreshold),
	}
	if c.thermistorIdx == 0 {
		// The threshold codes are NTC ratios; without a thermistor there is
		// nothing to encode against.
		for _, mc := range c.tempThresholdsMC {
			if mc != thresholdUnset {
				return nil, fmt.Errorf("charger: temperature thresholds require a thermistor")
			}
		}
	}
	c.dietempThresholdsMC = [2]int32{
		milliCelsius(o.DieStopThreshold),
		milliCelsius(o.DieResumeThreshold),
	}

	switch o.TrickleVoltage {
	case 0, 2900 * physic.MilliVolt:
		c.trickleSel = 0
	case 2500 * physic.MilliVolt:
		c.trickleSel = 1
	default:
		return nil, fmt.Errorf("charger: trickle voltage %s not supported, want 2.9V or 2.5V", o.TrickleVoltage)
	}

	switch o.TerminationCurrentPercent {
	case 0, 10:
		c.itermSel = 0
	case 20:
		c.itermSel = 1
	default:
		return nil, fmt.Errorf("charger: termination current %d%% not supported, want 10 or 20", o.TerminationCurrentPercent)
	}

	return c, nil
}
