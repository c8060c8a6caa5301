// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tm1629

// DecimalPoint is the segment bit for the decimal point. OR it into a value
// passed to EncodeHex, EncodeChar or the hex/char display methods to light
// the dot next to that digit.
const DecimalPoint byte = 0x80

// sevenSegment maps glyph indexes to segment patterns. Bits 0-6 are segments
// a-g, bit 7 is the decimal point and is never set here. The first 16 entries
// double as the hexadecimal font.
var sevenSegment = [40]byte{
	0x3F, // 0
	0x06, // 1
	0x5B, // 2
	0x4F, // 3
	0x66, // 4
	0x6D, // 5
	0x7D, // 6
	0x07, // 7
	0x7F, // 8
	0x6F, // 9
	0x77, // A
	0x7C, // b
	0x39, // C
	0x5E, // d
	0x79, // E
	0x71, // F
	0x6F, // g
	0x3D, // G
	0x74, // h
	0x76, // H
	0x04, // i
	0x06, // I
	0x0E, // j
	0x06, // l
	0x38, // L
	0x54, // n
	0x37, // N
	0x5C, // o
	0x3F, // O
	0x73, // P
	0x67, // q
	0x50, // r
	0x6D, // S
	0x78, // t
	0x1C, // u
	0x3E, // U
	0x6E, // y
	0x08, // _
	0x40, // -
	0x01, // overscore
}

// EncodeHex converts a hexadecimal value 0-15 to its segment pattern. Bit 7
// of b is treated as the decimal point flag and carried into the result.
// Values above 15 encode as a blank digit.
func EncodeHex(b byte) byte {
	dp := b & DecimalPoint
	b &= 0x7F
	if b > 0x0F {
		return dp
	}
	return sevenSegment[b] | dp
}

// EncodeChar converts an ASCII character to its segment pattern. Bit 7 of c
// is treated as the decimal point flag and carried into the result.
//
// Digits '0'-'9' and the letters A b C d E F g G h H i I j l L n N o O P q r
// S t u U y are supported, plus '_', '-' and '~' (rendered as an overscore).
// Letters that have only one drawable form accept either case; g/G, h/H, i/I,
// l/L, n/N, o/O and u/U are distinct glyphs selected by case. Unsupported
// characters encode as a blank digit rather than failing, so a bad character
// never aborts a display write.
func EncodeChar(c byte) byte {
	dp := c & DecimalPoint
	c &= 0x7F
	if c >= '0' && c <= '9' {
		return sevenSegment[c-'0'] | dp
	}
	var i int
	switch c {
	case 'A', 'a':
		i = 10
	case 'b', 'B':
		i = 11
	case 'C', 'c':
		i = 12
	case 'd', 'D':
		i = 13
	case 'E', 'e':
		i = 14
	case 'F', 'f':
		i = 15
	case 'g':
		i = 16
	case 'G':
		i = 17
	case 'h':
		i = 18
	case 'H':
		i = 19
	case 'i':
		i = 20
	case 'I':
		i = 21
	case 'j', 'J':
		i = 22
	case 'l':
		i = 23
	case 'L':
		i = 24
	case 'n':
		i = 25
	case 'N':
		i = 26
	case 'o':
		i = 27
	case 'O':
		i = 28
	case 'P', 'p':
		i = 29
	case 'q', 'Q':
		i = 30
	case 'r', 'R':
		i = 31
	case 'S', 's':
		i = 32
	case 't', 'T':
		i = 33
	case 'u':
		i = 34
	case 'U':
		i = 35
	case 'y', 'Y':
		i = 36
	case '_':
		i = 37
	case '-':
		i = 38
	case '~':
		i = 39
	default:
		return dp
	}
	return sevenSegment[i] | dp
}
