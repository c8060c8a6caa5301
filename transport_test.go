// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tm1629

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func newTestLink() (*gpioLink, *fakeBus, *fakePin) {
	bus := &fakeBus{}
	clk := &fakePin{Pin: gpiotest.Pin{N: "CLK"}, bus: bus}
	dio := &fakePin{Pin: gpiotest.Pin{N: "DIO"}, bus: bus}
	return &gpioLink{clk: clk, din: dio, dout: dio, dio: dio}, bus, dio
}

func TestWriteBytesBitOrder(t *testing.T) {
	link, bus, _ := newTestLink()

	if err := link.writeBytes([]byte{0xA5}); err != nil {
		t.Fatal(err)
	}

	// Collect the data level at every rising clock edge: 0xA5 LSB first.
	var bits []gpio.Level
	level := gpio.Low
	clocks := 0
	for _, e := range bus.events {
		switch e.pin {
		case "DIO":
			level = e.l
		case "CLK":
			if e.l == gpio.High {
				bits = append(bits, level)
				clocks++
			}
		}
	}
	if clocks != 8 {
		t.Fatalf("saw %d rising clock edges, want 8", clocks)
	}
	want := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.Low, gpio.High, gpio.Low, gpio.High}
	for i := range want {
		if bits[i] != want[i] {
			t.Errorf("bit %d = %t, want %t", i, bits[i], want[i])
		}
	}
}

func TestReadBytesBitOrder(t *testing.T) {
	link, bus, dio := newTestLink()

	dio.reads = readLevels([4]byte{0x5A, 0x81, 0xFF, 0x00})[:16]
	buf := make([]byte, 2)
	if err := link.readBytes(buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0x5A || buf[1] != 0x81 {
		t.Errorf("readBytes() = %#02x %#02x, want 0x5a 0x81", buf[0], buf[1])
	}

	// The shared line must be released before the chip drives it.
	if len(bus.events) == 0 || bus.events[0].pin != "DIO" || bus.events[0].kind != "in" {
		t.Error("readBytes() did not switch DIO to input first")
	}
	clocks := 0
	for _, e := range bus.events {
		if e.pin == "CLK" && e.l == gpio.High {
			clocks++
		}
	}
	if clocks != 16 {
		t.Errorf("saw %d rising clock edges, want 16", clocks)
	}
}

// errPin fails after a set number of writes, to exercise transfer aborts.
type errPin struct {
	fakePin
	remaining int
}

func (p *errPin) Out(l gpio.Level) error {
	if p.remaining == 0 {
		return errors.New("pin gone")
	}
	p.remaining--
	return p.fakePin.Out(l)
}

func TestWriteBytesAbortsOnPinError(t *testing.T) {
	bus := &fakeBus{}
	clk := &errPin{fakePin: fakePin{Pin: gpiotest.Pin{N: "CLK"}, bus: bus}, remaining: 3}
	dio := &fakePin{Pin: gpiotest.Pin{N: "DIO"}, bus: bus}
	link := &gpioLink{clk: clk, din: dio, dout: dio, dio: dio}

	if err := link.writeBytes([]byte{0xFF, 0xFF}); err == nil {
		t.Fatal("writeBytes() with a failing clock pin expected an error")
	}
	// The transfer stops at the failure instead of clocking out the rest.
	if n := len(bus.events); n > 8 {
		t.Errorf("saw %d events after the pin failure, want the transfer aborted", n)
	}
}

func TestCommandReleasesStrobeOnError(t *testing.T) {
	bus := &fakeBus{}
	clk := &errPin{fakePin: fakePin{Pin: gpiotest.Pin{N: "CLK"}, bus: bus}, remaining: 0}
	stb := &fakePin{Pin: gpiotest.Pin{N: "STB"}, bus: bus}
	dio := &fakePin{Pin: gpiotest.Pin{N: "DIO"}, bus: bus}
	d, err := makeDev(&gpioLink{clk: clk, din: dio, dout: dio, dio: dio}, stb, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.command(cmdData); err == nil {
		t.Fatal("command() with a failing clock pin expected an error")
	}
	last := bus.events[len(bus.events)-1]
	if last.pin != "STB" || last.l != gpio.High {
		t.Errorf("last bus event = %+v, want the strobe released", last)
	}
}
