// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// npm13xx-monitor polls an nPM13xx battery charger and prints its
// measurements, coloring the die temperature from green to red.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/maruel/ansi256"
	colorable "github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/npm13xx/charger"
	"github.com/GermanBionicSystems/npm13xx/mfd"
)

var (
	busName  = flag.String("bus", "", "I²C bus to use, empty for the first available")
	variant  = flag.String("variant", "npm1300", "PMIC part: npm1300 or npm1304")
	interval = flag.Duration("interval", time.Second, "poll interval")
	termMV   = flag.Int("term", 4200, "termination voltage in mV")
	chargeMA = flag.Int("current", 150, "charge current in mA")
	ntcOhms  = flag.Int("ntc", 10000, "thermistor nominal resistance in Ω, 0 for none")
	ntcBeta  = flag.Int("beta", 3380, "thermistor Beta coefficient in K")
	enable   = flag.Bool("charge", false, "enable charging")
)

// tempBlock returns a colored block character for a die temperature,
// sweeping from green at 20°C to red at 80°C.
func tempBlock(t physic.Temperature) string {
	frac := (t.Celsius() - 20) / 60
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	c := color.NRGBA{R: uint8(255 * frac), G: uint8(255 * (1 - frac)), B: 0, A: 255}
	return ansi256.Default.Block(c) + "\033[0m"
}

func chargeText(s charger.ChargeStatus) string {
	switch {
	case s&charger.StatusDieTempPaused != 0:
		return "paused"
	case s&charger.StatusCompleted != 0:
		return "done"
	case s&charger.StatusTrickleCharge != 0:
		return "trickle"
	case s&charger.StatusConstantCurrent != 0:
		return "cc"
	case s&charger.StatusConstantVoltage != 0:
		return "cv"
	case s&charger.StatusBatteryDetected != 0:
		return "idle"
	default:
		return "no batt"
	}
}

func mainImpl() error {
	flag.Parse()

	var v charger.Variant
	switch *variant {
	case "npm1300":
		v = charger.NPM1300
	case "npm1304":
		v = charger.NPM1304
	default:
		return fmt.Errorf("unknown variant %q", *variant)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer bus.Close()

	m, err := mfd.New(bus, mfd.DefaultAddress)
	if err != nil {
		return err
	}
	d, err := charger.New(m, &charger.Opts{
		Variant:            v,
		TerminationVoltage: physic.ElectricPotential(*termMV) * physic.MilliVolt,
		ChargeCurrent:      physic.ElectricCurrent(*chargeMA) * physic.MilliAmpere,
		Thermistor:         physic.ElectricResistance(*ntcOhms) * physic.Ohm,
		ThermistorBeta:     uint16(*ntcBeta),
		ChargingEnable:     *enable,
	})
	if err != nil {
		return err
	}
	defer d.Halt()

	out := colorable.NewColorableStdout()
	for range time.Tick(*interval) {
		if err := d.Fetch(); err != nil {
			return err
		}
		vbat, _ := d.BatteryVoltage()
		ibat, _ := d.BatteryCurrent()
		die, _ := d.DieTemperature()
		status, _ := d.ChargeStatus()
		errcode, _ := d.ChargeError()
		vbus, _ := d.VBUSStatus()

		line := fmt.Sprintf("%s %8s %9s die=%-8s %-7s err=%#02x", tempBlock(die), vbat, ibat, die, chargeText(status), uint8(errcode))
		if ntc, err := d.BatteryTemperature(); err == nil {
			line += fmt.Sprintf(" batt=%s", ntc)
		}
		if vbus.Present() {
			avail, _ := d.DetectedVBUSCurrent()
			line += fmt.Sprintf(" vbus=%s", avail)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		log.Fatalf("npm13xx-monitor: %v", err)
	}
}
