// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package charger_test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/npm13xx/charger"
	"github.com/GermanBionicSystems/npm13xx/mfd"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	m, err := mfd.New(b, mfd.DefaultAddress)
	if err != nil {
		log.Fatal(err)
	}

	d, err := charger.New(m, &charger.Opts{
		Variant:            charger.NPM1300,
		TerminationVoltage: 4200 * physic.MilliVolt,
		ChargeCurrent:      150 * physic.MilliAmpere,
		Thermistor:         10000 * physic.Ohm,
		ThermistorBeta:     3380,
		ChargingEnable:     true,
	})
	if err != nil {
		log.Fatalf("failed to initialize charger: %v", err)
	}
	defer d.Halt()

	if err := d.Fetch(); err != nil {
		log.Fatal(err)
	}
	v, _ := d.BatteryVoltage()
	i, _ := d.BatteryCurrent()
	fmt.Printf("%8s %8s\n", v, i)
}
