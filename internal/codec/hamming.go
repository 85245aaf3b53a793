package codec

// CodeRate identifies a LoRa Hamming code strength, named by codeword
// length: 4/5 through 4/8.
type CodeRate int

// Supported code rates. CR45..CR47 are shortened forms of the (8,4) code;
// only CR48 decoding corrects single-bit errors, the shortened rates accept
// exact codewords only.
const (
	CR45 CodeRate = 5
	CR46 CodeRate = 6
	CR47 CodeRate = 7
	CR48 CodeRate = 8
)

// Codeword length in bits.
func (cr CodeRate) Len() int {
	return int(cr)
}

// hammingParity returns the four parity bits of the (8,4) code for a data
// nibble stored LSB-first (bit 0 = d0):
//
//	p0 = d0 ^ d1 ^ d2
//	p1 = d1 ^ d2 ^ d3
//	p2 = d0 ^ d1 ^ d3
//	p3 = d0 ^ d2 ^ d3
func hammingParity(nibble uint8) uint8 {
	d0 := nibble & 1
	d1 := (nibble >> 1) & 1
	d2 := (nibble >> 2) & 1
	d3 := (nibble >> 3) & 1
	p0 := d0 ^ d1 ^ d2
	p1 := d1 ^ d2 ^ d3
	p2 := d0 ^ d1 ^ d3
	p3 := d0 ^ d2 ^ d3
	return p0 | p1<<1 | p2<<2 | p3<<3
}

// HammingEncode encodes a 4-bit nibble into a codeword of cr.Len() bits.
// Bit i of the result is data bit i for i < 4; the following bits are the
// parity bits p0.. in order, truncated to the codeword length.
func HammingEncode(nibble uint8, cr CodeRate) uint8 {
	nibble &= 0xF
	cw := nibble | hammingParity(nibble)<<4
	return cw & uint8(1<<uint(cr.Len())-1)
}

// hammingDecodeTables maps, per code rate, a received codeword to its
// decoded nibble, or to 0xFF when the word is uncorrectable. Built once at
// package init from the encoder: exact matches decode directly, and for the
// distance-4 (8,4) code every single-bit corruption of a valid codeword is
// additionally mapped back to its nibble.
var hammingDecodeTables = buildHammingDecodeTables()

func buildHammingDecodeTables() map[CodeRate][]uint8 {
	tables := make(map[CodeRate][]uint8, 4)
	for _, cr := range []CodeRate{CR45, CR46, CR47, CR48} {
		table := make([]uint8, 1<<uint(cr.Len()))
		for i := range table {
			table[i] = 0xFF
		}
		for nibble := uint8(0); nibble < 16; nibble++ {
			cw := HammingEncode(nibble, cr)
			table[cw] = nibble
			if cr == CR48 {
				for bit := 0; bit < 8; bit++ {
					flipped := cw ^ 1<<uint(bit)
					table[flipped] = nibble
				}
			}
		}
		tables[cr] = table
	}
	return tables
}

// HammingDecode decodes a received codeword of cr.Len() bits. For CR48 a
// single flipped bit is corrected; the shortened rates accept exact
// codewords only. The second return value reports whether decoding
// succeeded.
func HammingDecode(code uint8, cr CodeRate) (nibble uint8, ok bool) {
	table := hammingDecodeTables[cr]
	masked := code & uint8(1<<uint(cr.Len())-1)
	nibble = table[masked]
	return nibble & 0xF, nibble != 0xFF
}
