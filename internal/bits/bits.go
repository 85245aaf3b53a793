// Package bits provides helpers for the LSB-first bit streams used between
// the LoRa deinterleaver and the byte-oriented payload layers.
package bits

import (
	"bytes"

	"github.com/icza/bitio"
)

// PackLSBFirst packs a stream of 0/1 values into bytes, LSB-first within
// each byte. A trailing partial byte is padded with zeros in its high bits.
func PackLSBFirst(bits []uint8) []byte {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	whole := len(bits) / 8 * 8
	for base := 0; base < whole; base += 8 {
		// bitio writes MSB-first, so emit each byte's bits in reverse.
		for j := 7; j >= 0; j-- {
			_ = w.WriteBool(bits[base+j] == 1)
		}
	}
	if rem := len(bits) - whole; rem > 0 {
		for j := 0; j < 8-rem; j++ {
			_ = w.WriteBool(false)
		}
		for j := rem - 1; j >= 0; j-- {
			_ = w.WriteBool(bits[whole+j] == 1)
		}
	}
	_ = w.Close()
	return buf.Bytes()
}

// Uint8LE assembles up to eight bits into an integer, bit i of the input
// becoming bit i of the result.
func Uint8LE(bits []uint8) uint8 {
	var v uint8
	for i, b := range bits {
		v |= (b & 1) << uint(i)
	}
	return v
}

// FromUintMSB expands the low bitCount bits of value MSB-first into dst,
// which must have room for bitCount entries.
func FromUintMSB(value uint32, bitCount int, dst []uint8) {
	for i := 0; i < bitCount; i++ {
		dst[i] = uint8(value>>uint(bitCount-1-i)) & 1
	}
}
