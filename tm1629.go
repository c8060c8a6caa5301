// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tm1629

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Command bytes. The top two bits select the command family, the rest is
// family specific.
const (
	// Data command: transfer direction and addressing mode for the next
	// register access. The driver always uses auto-increment, normal mode.
	cmdData      byte = 0x40
	dataRead     byte = 0x02 // read key scan data instead of writing registers
	dataFixed    byte = 0x04 // fixed address instead of auto-increment
	dataTestMode byte = 0x08 // display test mode

	// Address command: starting display register (0-15) for a payload write.
	cmdAddr byte = 0xC0

	// Display control command: 3-bit pulse width plus the on/off bit.
	cmdDisplay byte = 0x80
	displayOn  byte = 0x08

	// The chip exposes 16 display registers and scans 24 keys (K1-K3 x
	// KS1-KS8), reported in 4 scan registers.
	numRegisters = 16
	numScanRegs  = 4
)

// MaxBrightness is the highest pulse-width code accepted by ConfigDisplay.
const MaxBrightness = 7

var (
	// ErrNotImplemented is returned by every transfer on the reserved SPI
	// backend.
	ErrNotImplemented = errors.New("tm1629: not implemented")
)

// DisplayMode selects how the seven-segment digits are wired to the chip.
type DisplayMode int

const (
	// CommonCathode digits map one display register per digit.
	CommonCathode DisplayMode = iota
	// CommonAnode digits are wired transposed; the driver remaps writes
	// through a 16-byte shadow of the register file.
	CommonAnode
)

func (m DisplayMode) String() string {
	if m == CommonAnode {
		return "common-anode"
	}
	return "common-cathode"
}

// Opts holds the configuration for a TM1629.
type Opts struct {
	// Mode is the display wiring. The default is CommonCathode.
	Mode DisplayMode
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{Mode: CommonCathode}

// Dev is a handle to a TM1629.
//
// A Dev drives one chip and must not be shared between goroutines without
// external locking: a command is a multi-edge exchange under an asserted
// strobe line and interleaved calls would latch corrupt data.
type Dev struct {
	t    transport
	stb  gpio.PinOut
	mode DisplayMode

	// shadow mirrors the chip's register file in CommonAnode mode, where a
	// single digit is scattered across all 16 registers and a write must
	// replay the full image.
	shadow [numRegisters]byte
}

// New returns a Dev driven over the 3-wire GPIO interface, with the chip's
// DIN and DOUT pins tied together on the single bidirectional pin dio.
//
// The pins are configured (CLK and STB driven high, the idle state) but no
// command is sent; call ConfigDisplay to turn the display on.
func New(clk, stb gpio.PinOut, dio gpio.PinIO, opts *Opts) (*Dev, error) {
	if clk == nil {
		return nil, errors.New("tm1629: clk pin is required")
	}
	if dio == nil {
		return nil, errors.New("tm1629: dio pin is required")
	}
	d, err := makeDev(&gpioLink{clk: clk, din: dio, dout: dio, dio: dio}, stb, opts)
	if err != nil {
		return nil, err
	}
	if err := d.idlePins(clk); err != nil {
		return nil, err
	}
	return d, nil
}

// New4Wire returns a Dev driven over the 4-wire GPIO interface, with the
// chip's DIN and DOUT pins on separate host pins. dout is configured as an
// input with a pull-up; no direction switching happens after this.
func New4Wire(clk, stb, din gpio.PinOut, dout gpio.PinIn, opts *Opts) (*Dev, error) {
	if clk == nil {
		return nil, errors.New("tm1629: clk pin is required")
	}
	if din == nil || dout == nil {
		return nil, errors.New("tm1629: din and dout pins are required")
	}
	d, err := makeDev(&gpioLink{clk: clk, din: din, dout: dout}, stb, opts)
	if err != nil {
		return nil, err
	}
	if err := dout.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	if err := d.idlePins(clk); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI returns a Dev on the reserved hardware-SPI backend. The port is
// connected to validate the wiring, but the backend is a placeholder: every
// display or keypad operation fails with ErrNotImplemented.
func NewSPI(p spi.Port, stb gpio.PinOut, opts *Opts) (*Dev, error) {
	c, err := p.Connect(physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("tm1629: %w", err)
	}
	d, err := makeDev(&spiLink{c: c}, stb, opts)
	if err != nil {
		return nil, err
	}
	if err := d.stb.Out(gpio.High); err != nil {
		return nil, err
	}
	return d, nil
}

func makeDev(t transport, stb gpio.PinOut, opts *Opts) (*Dev, error) {
	if stb == nil {
		return nil, errors.New("tm1629: stb pin is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Mode != CommonCathode && opts.Mode != CommonAnode {
		return nil, fmt.Errorf("tm1629: unknown display mode %d", opts.Mode)
	}
	return &Dev{t: t, stb: stb, mode: opts.Mode}, nil
}

// idlePins drives the bus to its idle state: clock high, strobe deasserted.
func (d *Dev) idlePins(clk gpio.PinOut) error {
	if err := clk.Out(gpio.High); err != nil {
		return err
	}
	return d.stb.Out(gpio.High)
}

func (d *Dev) String() string {
	return fmt.Sprintf("TM1629{%s, %s}", d.t, d.mode)
}

// command sends one command byte plus an optional payload inside a single
// strobe bracket. The strobe is always released, even when the transfer
// fails partway.
func (d *Dev) command(cmd byte, payload ...byte) error {
	if err := d.stb.Out(gpio.Low); err != nil {
		return err
	}
	err := d.t.writeBytes(append([]byte{cmd}, payload...))
	if e := d.stb.Out(gpio.High); err == nil {
		err = e
	}
	return err
}

// commandRead sends one command byte and reads len(buf) reply bytes, all
// inside a single strobe bracket.
func (d *Dev) commandRead(cmd byte, buf []byte) error {
	if err := d.stb.Out(gpio.Low); err != nil {
		return err
	}
	err := d.t.writeBytes([]byte{cmd})
	if err == nil {
		err = d.t.readBytes(buf)
	}
	if e := d.stb.Out(gpio.High); err == nil {
		err = e
	}
	return err
}

// writeRegisters pushes data into the display registers starting at addr:
// one bracket to select write/auto-increment, a second with the address and
// the payload.
func (d *Dev) writeRegisters(addr byte, data []byte) error {
	if err := d.command(cmdData); err != nil {
		return err
	}
	return d.command(cmdAddr|addr, data...)
}

// ConfigDisplay sets the brightness (0 to MaxBrightness) and switches the
// display on or off. The chip powers up with the display off, so this must
// be called once after New before anything is visible.
func (d *Dev) ConfigDisplay(brightness int, on bool) error {
	if brightness < 0 || brightness > MaxBrightness {
		return fmt.Errorf("tm1629: brightness %d out of range 0-%d", brightness, MaxBrightness)
	}
	cmd := cmdDisplay | byte(brightness)
	if on {
		cmd |= displayOn
	}
	return d.command(cmd)
}

// SetDigit writes one raw segment byte to digit position pos (0-15). Bits
// 0-6 are segments a-g, bit 7 the decimal point.
func (d *Dev) SetDigit(segments byte, pos int) error {
	return d.SetDigits([]byte{segments}, pos)
}

// SetDigits writes raw segment bytes to consecutive digit positions starting
// at pos. Positions run 0-15; a range that does not fit is rejected, not
// clamped.
//
// In CommonCathode mode the bytes map one to one onto chip registers. In
// CommonAnode mode each digit is scattered bit by bit across the register
// shadow and the full 16-byte image is pushed, so unrelated digits keep
// their last written state.
func (d *Dev) SetDigits(segments []byte, pos int) error {
	if pos < 0 || pos >= numRegisters || pos+len(segments) > numRegisters {
		return fmt.Errorf("tm1629: digits %d-%d out of range 0-%d", pos, pos+len(segments)-1, numRegisters-1)
	}
	if len(segments) == 0 {
		return nil
	}
	if d.mode == CommonAnode {
		d.scatter(segments, pos)
		return d.writeRegisters(0, d.shadow[:])
	}
	return d.writeRegisters(byte(pos), segments)
}

// scatter transposes digit-major segment bytes into the segment-major
// register layout used by common-anode wiring: digit d bit b lands in shadow
// byte 2*b (digits 0-7) or 2*b+1 (digits 8-15), at bit position d%8.
func (d *Dev) scatter(segments []byte, pos int) {
	for i, seg := range segments {
		digit := pos + i
		bank := 0
		if digit >= 8 {
			bank = 1
		}
		mask := byte(1) << (digit % 8)
		for b := 0; b < 8; b++ {
			if seg&(1<<b) != 0 {
				d.shadow[2*b+bank] |= mask
			} else {
				d.shadow[2*b+bank] &^= mask
			}
		}
	}
}

// SetHexDigit displays the hexadecimal value v (0-15) at digit position pos.
// OR DecimalPoint into v to light the dot.
func (d *Dev) SetHexDigit(v byte, pos int) error {
	return d.SetDigit(EncodeHex(v), pos)
}

// SetHexDigits displays hexadecimal values at consecutive digit positions
// starting at pos.
func (d *Dev) SetHexDigits(values []byte, pos int) error {
	segments := make([]byte, len(values))
	for i, v := range values {
		segments[i] = EncodeHex(v)
	}
	return d.SetDigits(segments, pos)
}

// SetChar displays the ASCII character c at digit position pos. OR
// DecimalPoint into c to light the dot. Unsupported characters display
// blank.
func (d *Dev) SetChar(c byte, pos int) error {
	return d.SetDigit(EncodeChar(c), pos)
}

// SetChars displays ASCII characters at consecutive digit positions starting
// at pos.
func (d *Dev) SetChars(chars []byte, pos int) error {
	segments := make([]byte, len(chars))
	for i, c := range chars {
		segments[i] = EncodeChar(c)
	}
	return d.SetDigits(segments, pos)
}

// WriteString displays s starting at digit 0. A '.' folds into the decimal
// point of the preceding digit instead of occupying a position of its own; a
// leading '.' gets its own otherwise blank digit.
func (d *Dev) WriteString(s string) error {
	segments := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '.' && len(segments) > 0 {
			segments[len(segments)-1] |= DecimalPoint
			continue
		}
		segments = append(segments, EncodeChar(s[i]))
	}
	return d.SetDigits(segments, 0)
}

// ClearDisplay blanks all 16 digit positions.
func (d *Dev) ClearDisplay() error {
	d.shadow = [numRegisters]byte{}
	return d.writeRegisters(0, d.shadow[:])
}

// ScanKeys reads the key scan registers and returns the state of the 24 keys
// as a bitmask.
//
// The mask is assembled from the 4 scan registers R0-R3 one key group at a
// time: group Kn (n=1..4) fills output byte n-1, built by walking R3 down to
// R0 and shifting in the group's upper (Kn+4) then lower (Kn) sense bit of
// each register. Key K1/KS1 is bit 0. The chip's matrix only wires groups
// K1-K3, so bits 24-31 read as zero and carry no keys.
func (d *Dev) ScanKeys() (uint32, error) {
	var regs [numScanRegs]byte
	if err := d.commandRead(cmdData|dataRead, regs[:]); err != nil {
		return 0, err
	}
	return decodeKeys(regs), nil
}

func decodeKeys(regs [numScanRegs]byte) uint32 {
	var keys uint32
	for g := 0; g < 4; g++ {
		kn := byte(1) << g
		var group byte
		for i := numScanRegs - 1; i >= 0; i-- {
			group <<= 1
			if regs[i]&(kn<<4) != 0 {
				group |= 1
			}
			group <<= 1
			if regs[i]&kn != 0 {
				group |= 1
			}
		}
		keys |= uint32(group) << (8 * g)
	}
	return keys
}

// Halt blanks the display and turns it off.
func (d *Dev) Halt() error {
	if err := d.ClearDisplay(); err != nil {
		return err
	}
	return d.ConfigDisplay(0, false)
}

var _ conn.Resource = &Dev{}
