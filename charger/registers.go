// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charger

// Register block base addresses.
const (
	baseVBUS    uint8 = 0x02
	baseCharger uint8 = 0x03
	baseADC     uint8 = 0x05
)

// Charger block register offsets.
const (
	chgErrClr     uint8 = 0x00 // TASKRELEASEERR: clear error flags
	chgEnSet      uint8 = 0x04 // BCHGENABLESET: enable charging
	chgEnClr      uint8 = 0x05 // BCHGENABLECLR: disable charging
	chgDisSet     uint8 = 0x06 // BCHGDISABLESET: recharge/NTC disable bits
	chgISet       uint8 = 0x08 // BCHGISETMSB/LSB: charge current
	chgISetDischg uint8 = 0x0A // BCHGISETDISCHARGEMSB/LSB: discharge limit
	chgVTerm      uint8 = 0x0C // BCHGVTERM: termination voltage
	chgVTermR     uint8 = 0x0D // BCHGVTERMR: warm termination voltage
	chgTrickleSel uint8 = 0x0E // BCHGVTRICKLESEL
	chgITermSel   uint8 = 0x0F // BCHGITERMSEL
	chgNTCTemps   uint8 = 0x10 // NTCCOLD..NTCHOT threshold pairs
	chgDieTemps   uint8 = 0x18 // DIETEMPSTOP/DIETEMPRESUME threshold pairs
	chgChgStat    uint8 = 0x34 // BCHGCHARGESTATUS
	chgErrReason  uint8 = 0x36 // BCHGERRREASON
	chgVBatLowEn  uint8 = 0x50 // BCHGVBATLOWCHARGE
)

// ADC block register offsets.
const (
	adcTaskVBat uint8 = 0x00 // TASKVBATMEASURE: trigger VBAT/IBAT conversion
	adcTaskTemp uint8 = 0x01 // TASKNTCMEASURE/TASKTEMPMEASURE pair
	adcNTCRSel  uint8 = 0x0A // ADCNTCRSEL: thermistor selection
	adcTaskAuto uint8 = 0x0C // TASKAUTOTIMUPDATE: auto measurement while charging
	adcResults  uint8 = 0x10 // ADCIBATMEASSTATUS..ADCGP1RESULTLSB
	adcIBatEn   uint8 = 0x24 // ADCIBATMEASEN
)

// VBUS block register offsets.
const (
	vbusILimUpdate  uint8 = 0x00 // TASKUPDATEILIMSW: apply new current limit
	vbusILim        uint8 = 0x01 // VBUSINILIM0
	vbusILimStartup uint8 = 0x02 // VBUSINILIMSTARTUP
	vbusDetect      uint8 = 0x05 // USBCDETECTSTATUS
	vbusStatus      uint8 = 0x07 // VBUSINSTATUS
)

// Layout of the 11 byte ADC result burst starting at adcResults. Four 10-bit
// results share each LSB byte, two bits per channel.
const (
	adcResultLen = 11

	burstIBatStat = 0  // battery current status nibble
	burstMSBVBat  = 1  // VBAT bits 9..2
	burstMSBNTC   = 2  // NTC bits 9..2
	burstMSBDie   = 3  // die temperature bits 9..2
	burstMSBVSys  = 4  // VSYS bits 9..2
	burstLSBA     = 5  // VBAT/NTC/die/VSYS bits 1..0
	burstMSBIBat  = 8  // IBAT bits 9..2
	burstMSBVBus  = 9  // VBUS bits 9..2
	burstLSBB     = 10 // IBAT/VBUS bits 1..0

	adcMSBShift  = 2
	adcLSBMask   = 0x03
	lsbVBatShift = 0
	lsbNTCShift  = 2
	lsbDieShift  = 4
	lsbVSysShift = 6
	lsbIBatShift = 4
	lsbVBusShift = 6
)

// Battery current status values reported in the first burst byte. Any other
// value means no current is flowing.
const (
	ibatStatDischarge     = 0x04
	ibatStatChargeTrickle = 0x0C
	ibatStatChargeCool    = 0x0D
	ibatStatChargeNormal  = 0x0F
)

// Threshold codes are split the same way as ADC results: MSB byte first,
// two-bit remainder second.
const (
	thresholdMSBShift = 2
	thresholdLSBMask  = 0x03
)

// USBCDETECTSTATUS decode: either CC line reporting 1.5A or 3A capability.
const (
	detectHiMask    = 0x0A
	detectHiCurrent = 1500000 // µA
	detectLoCurrent = 500000  // µA
)

// BCHGDISABLESET bits.
const (
	disableRechargeBit = 1 << 0
	disableNTCBit      = 1 << 1
)

// adcResult assembles a 10-bit code from its MSB byte and its two-bit field
// within a shared LSB byte.
func adcResult(msb, lsb byte, lsbShift uint) uint16 {
	return uint16(msb)<<adcMSBShift | uint16(lsb>>lsbShift)&adcLSBMask
}
