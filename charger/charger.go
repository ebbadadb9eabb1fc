// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charger

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/npm13xx/linearrange"
)

// RegisterAccess is the register bus the charger drives, normally an
// *mfd.Dev. Errors are propagated unchanged; retries, if any, belong to the
// implementation.
type RegisterAccess interface {
	ReadReg(base, offset uint8) (byte, error)
	ReadBurst(base, offset uint8, buf []byte) error
	WriteReg(base, offset uint8, val byte) error
	WriteReg2(base, offset uint8, first, second byte) error
}

// ChargeStatus is the raw BCHGCHARGESTATUS register.
type ChargeStatus uint8

const (
	StatusBatteryDetected ChargeStatus = 1 << 0
	StatusCompleted       ChargeStatus = 1 << 1
	StatusTrickleCharge   ChargeStatus = 1 << 2
	StatusConstantCurrent ChargeStatus = 1 << 3
	StatusConstantVoltage ChargeStatus = 1 << 4
	StatusRecharge        ChargeStatus = 1 << 5
	StatusDieTempPaused   ChargeStatus = 1 << 6
	StatusSupplementMode  ChargeStatus = 1 << 7
)

// ChargeError is the raw BCHGERRREASON register. Zero means no error.
type ChargeError uint8

// VBUSStatus is the raw VBUSINSTATUS register.
type VBUSStatus uint8

// Present reports whether VBUS input power is connected.
func (s VBUSStatus) Present() bool { return s&0x01 != 0 }

// CurrentLimited reports whether the input current limit is active.
func (s VBUSStatus) CurrentLimited() bool { return s&0x02 != 0 }

// Overvoltage reports whether overvoltage protection is active.
func (s VBUSStatus) Overvoltage() bool { return s&0x04 != 0 }

// Undervoltage reports whether VBUS is below the undervoltage threshold.
func (s VBUSStatus) Undervoltage() bool { return s&0x08 != 0 }

// Suspended reports whether the VBUS input is suspended.
func (s VBUSStatus) Suspended() bool { return s&0x10 != 0 }

// BusOut reports whether VBUS is supplied by the device itself.
func (s VBUSStatus) BusOut() bool { return s&0x20 != 0 }

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateFailed
)

// measurements holds the most recently fetched raw codes and status bytes.
// Fetch replaces it wholesale so getters never see a partial update.
type measurements struct {
	voltage  uint16
	temp     uint16
	dietemp  uint16
	current  uint16
	vsys     uint16
	vbus     uint16
	ibatStat byte
	status   byte
	errcode  byte
	vbusStat byte
}

// Dev is a handle to the charger block of one nPM13xx.
//
// Dev performs no locking; the host must serialize calls per device.
type Dev struct {
	m     RegisterAccess
	cfg   *config
	state state
	meas  measurements
}

// New validates opts, programs the charger and returns the device handle.
// Initialization runs a fixed register sequence; it stops at the first bus
// or quantization error without rolling back registers already written, and
// the returned device then refuses all operations with ErrNotReady. The host
// may retry by constructing a new device.
func New(m RegisterAccess, opts *Opts) (*Dev, error) {
	if m == nil {
		return nil, fmt.Errorf("charger: nil register access")
	}
	if opts == nil {
		return nil, fmt.Errorf("charger: nil opts")
	}
	cfg, err := makeConfig(opts)
	if err != nil {
		return nil, err
	}
	d := &Dev{m: m, cfg: cfg}
	return d, d.init()
}

func (d *Dev) init() error {
	d.state = stateInitializing
	if err := d.program(); err != nil {
		d.state = stateFailed
		return err
	}
	d.state = stateReady
	return nil
}

// quantize maps a value window to a register code, folding range misses into
// ErrQuantization uniformly.
func quantize(ranges []linearrange.Range, low, high int64, what string) (uint16, error) {
	code, err := linearrange.FindCode(ranges, low, high)
	if err != nil {
		return 0, fmt.Errorf("charger: %s: %w", what, ErrQuantization)
	}
	return code, nil
}

// program runs the device-validated initialization order: thermistor
// selection, NTC and die temperature thresholds, termination voltages,
// charge current and discharge limit, VBUS startup limit, trickle and
// termination selectors, measurement enables, disable bits, charge enable.
func (d *Dev) program() error {
	cfg := d.cfg

	if err := d.m.WriteReg(baseADC, adcNTCRSel, cfg.thermistorIdx); err != nil {
		return err
	}

	for i, mc := range cfg.tempThresholdsMC {
		if mc == thresholdUnset {
			continue
		}
		code := cfg.ntcCode(mc)
		err := d.m.WriteReg2(baseCharger, chgNTCTemps+uint8(i*2),
			byte(code>>thresholdMSBShift), byte(code&thresholdLSBMask))
		if err != nil {
			return err
		}
	}

	for i, mc := range cfg.dietempThresholdsMC {
		if mc == thresholdUnset {
			continue
		}
		code := dieTempCode(mc)
		err := d.m.WriteReg2(baseCharger, chgDieTemps+uint8(i*2),
			byte(code>>thresholdMSBShift), byte(code&thresholdLSBMask))
		if err != nil {
			return err
		}
	}

	code, err := quantize(cfg.termVoltRanges, cfg.termUV, cfg.termUV, "termination voltage")
	if err != nil {
		return err
	}
	if err := d.m.WriteReg(baseCharger, chgVTerm, byte(code)); err != nil {
		return err
	}

	code, err = quantize(cfg.termVoltRanges, cfg.termWarmUV, cfg.termWarmUV, "warm termination voltage")
	if err != nil {
		return err
	}
	if err := d.m.WriteReg(baseCharger, chgVTermR, byte(code)); err != nil {
		return err
	}

	// Round the charge current down to the closest supported value.
	code, err = quantize([]linearrange.Range{cfg.currentRange},
		cfg.currentUA-cfg.currentRange.Step+1, cfg.currentUA, "charge current")
	if err != nil {
		return err
	}
	if cfg.dischgLimitIdx < 0 {
		// nPM1304: single charge current register, fixed discharge limit.
		err = d.m.WriteReg(baseCharger, chgISet, byte(code))
	} else {
		// nPM1300: split MSB/LSB pair plus a discharge limit pair.
		if err = d.m.WriteReg2(baseCharger, chgISet, byte(code/2), byte(code&1)); err != nil {
			return err
		}
		lim := npm1300DischargeLimits[cfg.dischgLimitIdx]
		err = d.m.WriteReg2(baseCharger, chgISetDischg, byte(lim/2), byte(lim&1))
	}
	if err != nil {
		return err
	}

	code, err = quantize([]linearrange.Range{vbusCurrentRange},
		cfg.vbusLimitUA, cfg.vbusLimitUA, "vbus current limit")
	if err != nil {
		return err
	}
	if err := d.m.WriteReg(baseVBUS, vbusILimStartup, byte(code)); err != nil {
		return err
	}

	if err := d.m.WriteReg(baseCharger, chgTrickleSel, cfg.trickleSel); err != nil {
		return err
	}
	if err := d.m.WriteReg(baseCharger, chgITermSel, cfg.itermSel); err != nil {
		return err
	}

	// Enable battery current measurement and kick off the first conversions,
	// then let the ADC re-measure temperature automatically while charging.
	if err := d.m.WriteReg(baseADC, adcIBatEn, 1); err != nil {
		return err
	}
	if err := d.m.WriteReg(baseADC, adcTaskVBat, 1); err != nil {
		return err
	}
	if err := d.m.WriteReg2(baseADC, adcTaskTemp, 1, 1); err != nil {
		return err
	}
	if err := d.m.WriteReg(baseADC, adcTaskAuto, 1); err != nil {
		return err
	}

	vbatlow := byte(0)
	if cfg.vbatLowChargeEnable {
		vbatlow = 1
	}
	if err := d.m.WriteReg(baseCharger, chgVBatLowEn, vbatlow); err != nil {
		return err
	}

	disable := byte(0)
	if cfg.disableRecharge {
		disable |= disableRechargeBit
	}
	if cfg.thermistorIdx == 0 {
		disable |= disableNTCBit
	}
	if err := d.m.WriteReg(baseCharger, chgDisSet, disable); err != nil {
		return err
	}

	if cfg.chargingEnable {
		if err := d.m.WriteReg(baseCharger, chgEnSet, 1); err != nil {
			return err
		}
	}
	return nil
}

// Fetch reads the charge status, error reason, ADC results and VBUS status
// into the measurement cache, and triggers the next conversions. Because of
// the trigger-after-read pipelining, readings are one Fetch old.
//
// On any error the cache keeps its previous contents.
func (d *Dev) Fetch() error {
	if d.state != stateReady {
		return ErrNotReady
	}
	var m measurements
	var err error

	if m.status, err = d.m.ReadReg(baseCharger, chgChgStat); err != nil {
		return err
	}
	if m.errcode, err = d.m.ReadReg(baseCharger, chgErrReason); err != nil {
		return err
	}

	buf := make([]byte, adcResultLen)
	if err = d.m.ReadBurst(baseADC, adcResults, buf); err != nil {
		return err
	}
	m.ibatStat = buf[burstIBatStat]
	m.voltage = adcResult(buf[burstMSBVBat], buf[burstLSBA], lsbVBatShift)
	m.temp = adcResult(buf[burstMSBNTC], buf[burstLSBA], lsbNTCShift)
	m.dietemp = adcResult(buf[burstMSBDie], buf[burstLSBA], lsbDieShift)
	m.vsys = adcResult(buf[burstMSBVSys], buf[burstLSBA], lsbVSysShift)
	m.current = adcResult(buf[burstMSBIBat], buf[burstLSBB], lsbIBatShift)
	m.vbus = adcResult(buf[burstMSBVBus], buf[burstLSBB], lsbVBusShift)

	if err = d.m.WriteReg2(baseADC, adcTaskTemp, 1, 1); err != nil {
		return err
	}
	if err = d.m.WriteReg(baseADC, adcTaskVBat, 1); err != nil {
		return err
	}

	if m.vbusStat, err = d.m.ReadReg(baseVBUS, vbusStatus); err != nil {
		return err
	}

	d.meas = m
	return nil
}

// BatteryVoltage returns the battery voltage from the last Fetch.
func (d *Dev) BatteryVoltage() (physic.ElectricPotential, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return batteryVoltageFromCode(d.meas.voltage), nil
}

// SystemVoltage returns the VSYS rail voltage from the last Fetch.
func (d *Dev) SystemVoltage() (physic.ElectricPotential, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return systemVoltageFromCode(d.meas.vsys), nil
}

// VBUSVoltage returns the measured VBUS voltage from the last Fetch.
func (d *Dev) VBUSVoltage() (physic.ElectricPotential, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return vbusVoltageFromCode(d.meas.vbus), nil
}

// BatteryCurrent returns the battery current from the last Fetch, negative
// while discharging.
func (d *Dev) BatteryCurrent() (physic.ElectricCurrent, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return d.cfg.batteryCurrent(d.meas.ibatStat, d.meas.current), nil
}

// BatteryTemperature returns the NTC thermistor temperature from the last
// Fetch. ErrNotSupported is returned when no thermistor is configured.
func (d *Dev) BatteryTemperature() (physic.Temperature, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	if d.cfg.thermistorIdx == 0 {
		return 0, ErrNotSupported
	}
	return d.cfg.ntcTemperature(d.meas.temp), nil
}

// DieTemperature returns the die temperature from the last Fetch.
func (d *Dev) DieTemperature() (physic.Temperature, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return dieTemperature(d.meas.dietemp), nil
}

// ChargeStatus returns the charge status register from the last Fetch.
func (d *Dev) ChargeStatus() (ChargeStatus, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return ChargeStatus(d.meas.status), nil
}

// ChargeError returns the charge error reason from the last Fetch.
func (d *Dev) ChargeError() (ChargeError, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return ChargeError(d.meas.errcode), nil
}

// VBUSStatus returns the VBUS status register from the last Fetch. Use
// ReadVBUSStatus for a fresh value.
func (d *Dev) VBUSStatus() (VBUSStatus, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	return VBUSStatus(d.meas.vbusStat), nil
}

// DesiredChargingCurrent returns the configured charge current target.
func (d *Dev) DesiredChargingCurrent() physic.ElectricCurrent {
	return physic.ElectricCurrent(d.cfg.currentUA) * physic.MicroAmpere
}

// MaxDischargeCurrent returns the configured discharge current limit.
func (d *Dev) MaxDischargeCurrent() physic.ElectricCurrent {
	return physic.ElectricCurrent(d.cfg.dischgLimitUA) * physic.MicroAmpere
}

// ChargingEnabled reads back whether charging is currently enabled.
func (d *Dev) ChargingEnabled() (bool, error) {
	if d.state != stateReady {
		return false, ErrNotReady
	}
	v, err := d.m.ReadReg(baseCharger, chgEnSet)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadVBUSStatus reads the VBUS status register from the device.
func (d *Dev) ReadVBUSStatus() (VBUSStatus, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	v, err := d.m.ReadReg(baseVBUS, vbusStatus)
	if err != nil {
		return 0, err
	}
	return VBUSStatus(v), nil
}

// DetectedVBUSCurrent returns the input current capability advertised by the
// connected supply: 0 when nothing is connected, 1.5A when either CC line
// reports high capability, 500mA otherwise.
func (d *Dev) DetectedVBUSCurrent() (physic.ElectricCurrent, error) {
	if d.state != stateReady {
		return 0, ErrNotReady
	}
	v, err := d.m.ReadReg(baseVBUS, vbusDetect)
	if err != nil {
		return 0, err
	}
	switch {
	case v == 0:
		return 0, nil
	case v&detectHiMask != 0:
		return detectHiCurrent * physic.MicroAmpere, nil
	default:
		return detectLoCurrent * physic.MicroAmpere, nil
	}
}

// SetCharging enables or disables charging. Enabling clears any latched
// charger errors first.
func (d *Dev) SetCharging(enable bool) error {
	if d.state != stateReady {
		return ErrNotReady
	}
	if !enable {
		return d.m.WriteReg(baseCharger, chgEnClr, 1)
	}
	if err := d.m.WriteReg(baseCharger, chgErrClr, 1); err != nil {
		return err
	}
	return d.m.WriteReg(baseCharger, chgEnSet, 1)
}

// SetVBUSCurrentLimit changes the VBUS input current limit and applies it
// immediately. The device reverts to the startup limit when the supply is
// removed. The limit must fall exactly on a 100mA step between 100mA and
// 1.5A.
func (d *Dev) SetVBUSCurrentLimit(limit physic.ElectricCurrent) error {
	if d.state != stateReady {
		return ErrNotReady
	}
	ua := int64(limit / physic.MicroAmpere)
	code, err := quantize([]linearrange.Range{vbusCurrentRange}, ua, ua, "vbus current limit")
	if err != nil {
		return err
	}
	if err := d.m.WriteReg(baseVBUS, vbusILim, byte(code)); err != nil {
		return err
	}
	return d.m.WriteReg(baseVBUS, vbusILimUpdate, 1)
}

// Halt disables charging, leaving the battery safe. Implements
// conn.Resource.
func (d *Dev) Halt() error {
	if d.state != stateReady {
		return nil
	}
	return d.m.WriteReg(baseCharger, chgEnClr, 1)
}

func (d *Dev) String() string {
	if s, ok := d.m.(fmt.Stringer); ok {
		return fmt.Sprintf("%s charger: %s", d.cfg.variant, s)
	}
	return fmt.Sprintf("%s charger", d.cfg.variant)
}

var _ conn.Resource = &Dev{}
