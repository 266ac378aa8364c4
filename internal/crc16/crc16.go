// Package crc16 implements CRC-16/CCITT-FALSE: polynomial 0x1021, initial
// value 0xFFFF, no reflection and no final XOR.
package crc16

import "fmt"

const (
	// Poly is the generator polynomial.
	Poly uint16 = 0x1021
	// Init is the initial register value.
	Init uint16 = 0xFFFF
)

var table = makeTable(Poly)

func makeTable(poly uint16) [256]uint16 {
	var t [256]uint16
	for i := range t {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// update continues a checksum over data.
func update(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc = crc<<8 ^ table[byte(crc>>8)^b]
	}
	return crc
}

// Checksum returns the CRC of data.
func Checksum(data []byte) uint16 {
	return update(Init, data)
}

// Hex formats sum as four uppercase hexadecimal digits.
func Hex(sum uint16) string {
	return fmt.Sprintf("%04X", sum)
}

// String returns the formatted CRC of s.
func String(s string) string {
	return Hex(Checksum([]byte(s)))
}
