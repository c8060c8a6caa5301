// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tm1629

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// tick is the base unit of the bit-bang timing. The TM1629 needs >400ns
// between clock edges; 1µs keeps a comfortable margin on fast hosts.
const tick = time.Microsecond

// transport moves raw bytes to and from the chip. Bytes go out LSB first,
// clocked by the transport itself. The command framing (STB bracketing) is
// layered on top by Dev.
type transport interface {
	writeBytes(p []byte) error
	readBytes(p []byte) error
	fmt.Stringer
}

// gpioLink bit-bangs the chip's serial interface over GPIO pins.
//
// In the 3-wire wiring (STB, CLK, DIO) the chip's DIN and DOUT pins share one
// bidirectional host pin; dio is non-nil and its direction is switched to
// output before writes and to input with a pull-up before reads. In the
// 4-wire wiring DIN and DOUT are separate host pins; dio is nil and no
// direction switching happens.
type gpioLink struct {
	clk  gpio.PinOut
	din  gpio.PinOut
	dout gpio.PinIn
	dio  gpio.PinIO
}

func (t *gpioLink) writeBytes(p []byte) error {
	if t.dio != nil {
		// Take over the shared data line.
		if err := t.dio.Out(gpio.Low); err != nil {
			return err
		}
	}
	for _, b := range p {
		for i := 0; i < 8; i++ {
			if err := t.clk.Out(gpio.Low); err != nil {
				return err
			}
			time.Sleep(tick)
			if err := t.din.Out(gpio.Level(b&1 != 0)); err != nil {
				return err
			}
			b >>= 1
			if err := t.clk.Out(gpio.High); err != nil {
				return err
			}
			time.Sleep(tick)
		}
	}
	return nil
}

func (t *gpioLink) readBytes(p []byte) error {
	if t.dio != nil {
		// Release the shared data line; the chip drives it, the pull-up
		// keeps it high between bits.
		if err := t.dio.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return err
		}
	}
	// The chip needs a moment after the read command before key data is
	// valid (Twait in the datasheet).
	time.Sleep(5 * tick)
	for i := range p {
		var b byte
		for bit := 0; bit < 8; bit++ {
			if err := t.clk.Out(gpio.Low); err != nil {
				return err
			}
			time.Sleep(tick)
			if err := t.clk.Out(gpio.High); err != nil {
				return err
			}
			if t.dout.Read() {
				b |= 1 << bit
			}
			time.Sleep(tick)
		}
		p[i] = b
		time.Sleep(2 * tick)
	}
	return nil
}

func (t *gpioLink) String() string {
	if t.dio != nil {
		return fmt.Sprintf("gpio3wire{%s, %s}", t.clk, t.dio)
	}
	return fmt.Sprintf("gpio4wire{%s, %s, %s}", t.clk, t.din, t.dout)
}

// spiLink is the reserved hardware-SPI backend. The TM1629 wants LSB-first
// transfers and a half-duplex turnaround on the data line mid-transaction,
// neither of which spi.Conn can express portably, so for now every transfer
// fails with ErrNotImplemented instead of clocking out garbage.
//
// TODO: implement once periph.io/x/conn exposes LSB-first half-duplex
// transactions.
type spiLink struct {
	c spi.Conn
}

func (t *spiLink) writeBytes(p []byte) error {
	return ErrNotImplemented
}

func (t *spiLink) readBytes(p []byte) error {
	return ErrNotImplemented
}

func (t *spiLink) String() string {
	return fmt.Sprintf("spi{%s}", t.c)
}
