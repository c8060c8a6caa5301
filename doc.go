// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tm1629 controls a Titan Micro TM1629 LED display and keypad
// controller over its bit-banged serial interface.
//
// The TM1629 drives up to 16 seven-segment digits (8 digits in two banks for
// common-anode wiring) and scans a 24-key matrix (K1-K3 x KS1-KS8). The host
// talks to it over three or four GPIO lines: a strobe (STB) held low around
// each command, a clock (CLK), and either one shared bidirectional data line
// (DIO, "3-wire") or separate DIN/DOUT lines ("4-wire").
//
// # Wiring
//
//	TM1629      Host
//	VDD         5V
//	GND         GND
//	STB         any GPIO output
//	CLK         any GPIO output
//	DIN+DOUT    one GPIO (3-wire), or
//	DIN, DOUT   two GPIOs (4-wire)
//
// # Usage
//
//	if _, err := host.Init(); err != nil {
//		log.Fatal(err)
//	}
//	dev, err := tm1629.New(
//		gpioreg.ByName("GPIO18"), // CLK
//		gpioreg.ByName("GPIO5"),  // STB
//		gpioreg.ByName("GPIO23"), // DIO
//		&tm1629.Opts{Mode: tm1629.CommonCathode})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := dev.ConfigDisplay(4, true); err != nil {
//		log.Fatal(err)
//	}
//	_ = dev.WriteString("HELL0")
//	keys, _ := dev.ScanKeys()
//
// # Datasheet
//
// https://www.crystalfontz.com/controllers/TitanMicro/TM1629/
package tm1629
